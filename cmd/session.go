package cmd

import (
	"context"

	"featuredrop/internal/security"
	"featuredrop/internal/snowflake"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/errors"
	"featuredrop/pkg/models"
)

// session is a warehouse session owned by a command
type session interface {
	warehouse.Session
	Close() error
}

// newSession connects to Snowflake. Replaced in tests.
var newSession = func(ctx context.Context, sf models.Snowflake) (session, error) {
	if err := security.NewCredentialManager().ResolvePassword(&sf); err != nil {
		return nil, err
	}

	cfg := snowflake.ConfigFromModel(sf)
	if err := snowflake.ValidateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigMissing, "Snowflake connection is not configured").
			WithSuggestions("Run 'featuredrop setup' or set FEATUREDROP_SNOWFLAKE_* variables")
	}

	svc := snowflake.NewService(cfg)
	if err := svc.Connect(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// withSession opens a session, runs fn and always closes the session
func withSession(ctx context.Context, fn func(warehouse.Session) error) error {
	sess, err := newSession(ctx, appConfig.Snowflake)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.WithError(cerr).Warn("failed to close Snowflake session")
		}
	}()
	return fn(sess)
}
