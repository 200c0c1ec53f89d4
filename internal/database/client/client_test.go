package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/CuratAI/internal/logger"
)

func TestParseDSN(t *testing.T) {
	driver, source, err := parseDSN("sqlite3:///tmp/s.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", driver)
	assert.Equal(t, "/tmp/s.db", source)

	driver, source, err = parseDSN("postgres://u:p@localhost:5432/db?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", source)

	_, _, err = parseDSN("mysql://x")
	assert.Error(t, err)
	_, _, err = parseDSN("sqlite3://")
	assert.Error(t, err)
}

func TestNewClient_SQLiteMigratesTwice(t *testing.T) {
	dsn := "sqlite3://" + filepath.Join(t.TempDir(), "nested", "session.db")

	c, err := NewClient(dsn, logger.Discard())
	require.NoError(t, err)

	var count int
	require.NoError(t, c.DB.Get(&count, `SELECT COUNT(*) FROM local_storage`))
	assert.Zero(t, count)
	require.NoError(t, c.Close())

	c, err = NewClient(dsn, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
