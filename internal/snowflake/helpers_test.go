package snowflake

import (
	"testing"

	"featuredrop/internal/warehouse"

	"github.com/stretchr/testify/require"
)

func mustName(t *testing.T, name string) warehouse.Name {
	t.Helper()
	n, err := warehouse.ParseName(name)
	require.NoError(t, err)
	return n
}
