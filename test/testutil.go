//go:build integration
// +build integration

package test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite"

	"github.com/coregx/sqlbuild"
)

// Backend describes a database the scenarios run against. A DSN from EnvDSN
// wins over starting a container; Start is nil for embedded databases.
type Backend struct {
	Name       string
	Driver     string
	EnvDSN     string
	DSN        string
	Start      func(ctx context.Context) (testcontainers.Container, string, error)
	UsersTable string
}

// Backends lists every database exercised by the integration suite.
var Backends = []Backend{
	{
		Name:   "PostgreSQL",
		Driver: "postgres",
		EnvDSN: "POSTGRES_TEST_DSN",
		Start: func(ctx context.Context) (testcontainers.Container, string, error) {
			c, err := postgres.Run(ctx, "postgres:15-alpine",
				postgres.WithDatabase("sqlbuild"),
				postgres.WithUsername("sqlbuild"),
				postgres.WithPassword("sqlbuild"),
				testcontainers.WithWaitStrategy(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(30*time.Second)),
			)
			if err != nil {
				return nil, "", err
			}
			dsn, err := c.ConnectionString(ctx, "sslmode=disable")
			return c, dsn, err
		},
		UsersTable: `CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			age INTEGER,
			status VARCHAR(50) DEFAULT 'active')`,
	},
	{
		Name:   "MySQL",
		Driver: "mysql",
		EnvDSN: "MYSQL_TEST_DSN",
		Start: func(ctx context.Context) (testcontainers.Container, string, error) {
			c, err := mysql.Run(ctx, "mysql:8.0",
				mysql.WithDatabase("sqlbuild"),
				mysql.WithUsername("sqlbuild"),
				mysql.WithPassword("sqlbuild"),
				testcontainers.WithWaitStrategy(
					wait.ForLog("port: 3306  MySQL Community Server").
						WithStartupTimeout(60*time.Second)),
			)
			if err != nil {
				return nil, "", err
			}
			dsn, err := c.ConnectionString(ctx)
			return c, dsn, err
		},
		UsersTable: `CREATE TABLE users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			age INT,
			status VARCHAR(50) DEFAULT 'active')`,
	},
	{
		Name:   "SQLite",
		Driver: "sqlite",
		DSN:    ":memory:",
		UsersTable: `CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			age INTEGER,
			status VARCHAR(50) DEFAULT 'active')`,
	},
}

// Env is an open database with a strict builder for its dialect and a
// fresh users table. Resources are released by t.Cleanup.
type Env struct {
	DB      *sql.DB
	Builder *sqlbuild.Builder
}

// Open connects to backend, skipping the test when no DSN is configured and
// Docker is unavailable.
func Open(t *testing.T, backend Backend) *Env {
	t.Helper()
	ctx := context.Background()

	dsn := backend.DSN
	if env := os.Getenv(backend.EnvDSN); backend.EnvDSN != "" && env != "" {
		dsn = env
	} else if backend.Start != nil {
		container, containerDSN, err := backend.Start(ctx)
		if err != nil {
			t.Skipf("%s container unavailable: %v", backend.Name, err)
		}
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })
		dsn = containerDSN
	}

	db, err := sql.Open(backend.Driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	if backend.Start == nil {
		db.SetMaxOpenConns(1)
	}
	require.NoError(t, db.PingContext(ctx))

	_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS users")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, backend.UsersTable)
	require.NoError(t, err)

	return &Env{
		DB:      db,
		Builder: sqlbuild.NewForDriver(backend.Driver, sqlbuild.WithStrict(true)),
	}
}

// Exec runs stmt in positional form and returns the affected row count.
func (e *Env) Exec(t *testing.T, stmt *sqlbuild.Statement) int64 {
	t.Helper()
	query, args := stmt.Positional()
	res, err := e.DB.ExecContext(context.Background(), query, args...)
	require.NoError(t, err, query)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	return n
}

// Strings runs a single-column stmt and collects the values.
func (e *Env) Strings(t *testing.T, stmt *sqlbuild.Statement) []string {
	t.Helper()
	query, args := stmt.Positional()
	rows, err := e.DB.QueryContext(context.Background(), query, args...)
	require.NoError(t, err, query)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}
