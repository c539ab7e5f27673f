package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	// 1. Initialize schema
	require.NoError(t, EnsureSchema(db))

	// 2. Insert a record
	_, err = db.Exec(`INSERT INTO locations (name, latitude, longitude) VALUES ('Test Spot', 0.0, 0.0)`)
	require.NoError(t, err)

	// 3. Initialize schema again (should not drop table)
	require.NoError(t, EnsureSchema(db))

	// 4. Verify record exists
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM locations WHERE name = 'Test Spot'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "data was likely lost due to table drop")
}

func TestEnsureSchema_UniqueName(t *testing.T) {
	db, err := Open(DefaultDSN)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO locations (name, latitude, longitude) VALUES ('A', 0, 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO locations (name, latitude, longitude) VALUES ('A', 1, 1)`)
	assert.Error(t, err)
}
