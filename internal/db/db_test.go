package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsUnknownDriver(t *testing.T) {
	_, err := Init("mysql", "root@/pairtrack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestMigrationsUpDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pairtrack.db")
	conn, err := Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)

	require.NoError(t, RunMigrations(conn.DB, "sqlite"))
	latest, err := Version(conn.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest)

	require.NoError(t, MigrateDown(conn.DB, "sqlite"))
	version, err := Version(conn.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, latest-1, version)
}
