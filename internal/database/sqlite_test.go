package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSQLiteDB_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grievances.db")

	db, err := NewSQLiteDB(ctx, Config{Path: path, AutoMigrate: true}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.Get(&tables,
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'grievances'`))
	assert.Equal(t, 1, tables)

	var recorded int
	require.NoError(t, db.Get(&recorded, `SELECT COUNT(1) FROM schema_migrations`))
	assert.Equal(t, 1, recorded)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grievances.db")

	db, err := NewSQLiteDB(ctx, Config{Path: path, AutoMigrate: true}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, zap.NewNop()))

	var recorded int
	require.NoError(t, db.Get(&recorded, `SELECT COUNT(1) FROM schema_migrations`))
	assert.Equal(t, 1, recorded)
}

func TestNewSQLiteDB_RequiresPath(t *testing.T) {
	_, err := NewSQLiteDB(context.Background(), Config{Path: "  "}, zap.NewNop())
	require.Error(t, err)
}

func TestSchema_RejectsInvalidEnums(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLiteDB(ctx, Config{Path: filepath.Join(t.TempDir(), "g.db"), AutoMigrate: true}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO grievances (grievance_type, priority, description, submitted_by, date_submitted)
		VALUES ('Chores', 'Urgent', 'dishes', 'Wifey', 1)`)
	assert.Error(t, err, "priority outside the enumerated set must be rejected")

	_, err = db.Exec(`INSERT INTO grievances (grievance_type, priority, description, submitted_by, date_submitted, status)
		VALUES ('Chores', 'Low', 'dishes', 'Wifey', 1, 'Resolved')`)
	assert.Error(t, err, "resolved rows need a resolution date")
}
