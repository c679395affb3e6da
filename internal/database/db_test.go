package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shastra-reservations/internal/config"
)

func TestDSN_MySQL(t *testing.T) {
	dsn, err := DSN(config.Config{
		DBDriver: config.DriverMySQL, DBUser: "shastra", DBPass: "secret",
		DBHost: "db", DBPort: "3306", DBName: "reservations",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "shastra:secret@tcp(db:3306)/reservations")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestMigrate_SQLiteIsIdempotent(t *testing.T) {
	db, err := Open(config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for i := 0; i < 2; i++ {
		require.NoError(t, Migrate(context.Background(), db), "migrate run %d", i+1)
	}

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM reservations"))
	assert.Zero(t, count)
}

func TestIsDuplicateKey(t *testing.T) {
	db, err := Open(config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "dup.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))

	insert := `INSERT INTO accounts (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`
	_, err = db.Exec(insert, "a1", "Arjun", "arjun@x.com", "9000000000")
	require.NoError(t, err)
	_, err = db.Exec(insert, "a2", "Arjun", "arjun@x.com", "9000000000")
	require.Error(t, err)

	assert.True(t, IsDuplicateKey(err))
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsDuplicateKey(&pq.Error{Code: "23505"}))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
	assert.False(t, IsDuplicateKey(nil))
}
