// Package security keeps the Snowflake password out of the config file by
// storing it in the operating system keyring.
package security

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"featuredrop/pkg/errors"
	"featuredrop/pkg/models"

	"github.com/zalando/go-keyring"
)

// Keyring service name
const keyringService = "featuredrop"

// Credential is the value stored in the keyring for one Snowflake login
type Credential struct {
	Account  string `json:"account"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialManager reads and writes Snowflake credentials in the keyring
type CredentialManager struct {
	service string
}

// NewCredentialManager creates a manager using the default keyring service
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{service: keyringService}
}

// key identifies one login; account identifiers are case-insensitive
func key(account, username string) string {
	return strings.ToLower(account) + "/" + username
}

// StorePassword saves the password for account/username, replacing any
// previous entry
func (cm *CredentialManager) StorePassword(account, username, password string) error {
	if account == "" || username == "" {
		return errors.New(errors.ErrCodeCredentials, "account and username are required to store a password")
	}

	data, err := json.Marshal(Credential{Account: account, Username: username, Password: password})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCredentials, "failed to marshal credential")
	}

	if err := keyring.Set(cm.service, key(account, username), string(data)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCredentials, "failed to store in keyring").
			WithSuggestions("Set snowflake.password in the config file or FEATUREDROP_SNOWFLAKE_PASSWORD instead")
	}
	return nil
}

// GetPassword returns the stored password for account/username
func (cm *CredentialManager) GetPassword(account, username string) (string, error) {
	data, err := keyring.Get(cm.service, key(account, username))
	if err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return "", errors.New(errors.ErrCodeCredentials,
				fmt.Sprintf("No password stored in keyring for %s@%s", username, account)).
				WithSuggestions("Run 'featuredrop setup' and choose to store the password in the keyring")
		}
		return "", errors.Wrap(err, errors.ErrCodeCredentials, "failed to get from keyring")
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeCredentials, "failed to unmarshal credential")
	}
	return cred.Password, nil
}

// DeletePassword removes the stored password. Deleting a missing entry is
// not an error.
func (cm *CredentialManager) DeletePassword(account, username string) error {
	err := keyring.Delete(cm.service, key(account, username))
	if err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, errors.ErrCodeCredentials, "failed to delete from keyring")
	}
	return nil
}

// ResolvePassword fills cfg.Password from the keyring when it is empty and
// use_keyring is set. An explicit password always wins.
func (cm *CredentialManager) ResolvePassword(cfg *models.Snowflake) error {
	if cfg.Password != "" || !cfg.UseKeyring {
		return nil
	}

	password, err := cm.GetPassword(cfg.Account, cfg.Username)
	if err != nil {
		return err
	}
	cfg.Password = password
	return nil
}
