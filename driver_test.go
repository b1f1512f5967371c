package sqlbuild_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/coregx/sqlbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // SQLite driver
)

func openSQLite(t *testing.T, driver string) *sql.DB {
	t.Helper()
	db, err := sql.Open(driver, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(context.Background(), `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE,
			age INTEGER,
			deleted_at TEXT
		)
	`)
	require.NoError(t, err)
	return db
}

// runSQLiteRoundTrip executes built statements with both named and
// positional arguments against a real SQLite database.
func runSQLiteRoundTrip(t *testing.T, driver string) {
	ctx := context.Background()
	db := openSQLite(t, driver)
	b := sqlbuild.NewForDriver(driver)
	require.Equal(t, sqlbuild.SQLite, b.Dialect())

	t.Run("Insert with named args", func(t *testing.T) {
		stmt, err := b.Insert("users").
			Rows(
				map[string]interface{}{"name": "alice", "email": "alice@example.com", "age": 31},
				map[string]interface{}{"name": "bob", "email": "bob@example.com", "age": 17},
				map[string]interface{}{"name": "carol", "email": "carol@example.com", "age": 45},
			).
			Build()
		require.NoError(t, err)

		res, err := db.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		require.NoError(t, err)
		n, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("Insert ignore skips duplicates", func(t *testing.T) {
		stmt, err := b.Insert("users").
			Values(map[string]interface{}{"name": "alice2", "email": "alice@example.com"}).
			Ignore().
			Build()
		require.NoError(t, err)

		res, err := db.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		require.NoError(t, err)
		n, _ := res.RowsAffected()
		assert.Equal(t, int64(0), n)
	})

	t.Run("Insert returning", func(t *testing.T) {
		stmt, err := b.Insert("users").
			Values(map[string]interface{}{"name": "dave", "email": "dave@example.com", "age": 22}).
			Returning("id", "name").
			Build()
		require.NoError(t, err)

		var id int64
		var name string
		require.NoError(t, db.QueryRowContext(ctx, stmt.SQL, stmt.Args()...).Scan(&id, &name))
		assert.Positive(t, id)
		assert.Equal(t, "dave", name)
	})

	t.Run("Select with positional args", func(t *testing.T) {
		stmt, err := b.Select("name").
			From("users").
			Where(sqlbuild.And(
				sqlbuild.C("age", "between", 18, 50),
				sqlbuild.C("name", "not in", []string{"dave"}),
				sqlbuild.C("deleted_at", "=", nil),
			)).
			OrderByDir("age", "desc").
			Limit(5).
			Build()
		require.NoError(t, err)

		query, args := stmt.Positional()
		rows, err := db.QueryContext(ctx, query, args...)
		require.NoError(t, err)
		defer rows.Close()

		var names []string
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			names = append(names, name)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"carol", "alice"}, names)
	})

	t.Run("Update", func(t *testing.T) {
		stmt, err := b.Update("users").
			Set(map[string]interface{}{"age": 18}).
			Where(sqlbuild.C("age", "<", 18)).
			Build()
		require.NoError(t, err)

		res, err := db.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		require.NoError(t, err)
		n, _ := res.RowsAffected()
		assert.Equal(t, int64(1), n)
	})

	t.Run("Delete", func(t *testing.T) {
		stmt, err := b.Delete("users").
			Where(sqlbuild.C("name", "like", "d%")).
			Limit(10).
			Build()
		require.NoError(t, err)

		res, err := db.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		require.NoError(t, err)
		n, _ := res.RowsAffected()
		assert.Equal(t, int64(1), n)

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
		assert.Equal(t, 3, count)
	})
}

func TestSQLite_RoundTrip(t *testing.T) {
	runSQLiteRoundTrip(t, "sqlite")
}
