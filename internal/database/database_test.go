package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_DefaultsToMemory(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='locations'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_MemoryIsSharedAcrossQueries(t *testing.T) {
	db, err := Open(DefaultDSN)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO locations (name, latitude, longitude) VALUES ('113 Bridge', 43.139, -89.387)`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM locations").Scan(&count))
	assert.Equal(t, 1, count)
}
