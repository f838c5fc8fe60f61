package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesEntriesTable(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='time_entries'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "time_entries", name)
}

func TestMigrate_RejectsNegativeMinutes(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO time_entries (date, project, branch, minutes, created_at, updated_at)
		VALUES ('2024-01-01', 'p', 'main', -1, 'x', 'x')`)
	assert.Error(t, err)
}

func TestMigrate_BackfillsEmptyBranches(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO time_entries (date, project, branch, minutes, created_at, updated_at) VALUES (?, ?, ?, ?, 'x', 'x')`
	_, err := db.Exec(insert, "2024-01-01", "Alpha", "", 10.0)
	require.NoError(t, err)
	_, err = db.Exec(insert, "2024-01-02", "Alpha", "", 4.0)
	require.NoError(t, err)
	_, err = db.Exec(insert, "2024-01-02", "Alpha", "unknown", 1.5)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	rows, err := db.Query(`SELECT date, branch, minutes FROM time_entries ORDER BY date`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		date, branch string
		minutes      float64
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.date, &r.branch, &r.minutes))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []row{
		{"2024-01-01", "unknown", 10.0},
		{"2024-01-02", "unknown", 5.5},
	}, got)
}
