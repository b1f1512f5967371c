package sqlbuild_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coregx/sqlbuild"
	"github.com/stretchr/testify/require"
)

// TestArgs_ReachDriverByName checks that named arguments pass through
// database/sql unchanged, in placeholder order.
func TestArgs_ReachDriverByName(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmt, err := sqlbuild.New(sqlbuild.PostgreSQL).
		Update("users").
		Set(map[string]interface{}{"status": "banned"}).
		Where(sqlbuild.Or(sqlbuild.C("status", "=", "spam"), sqlbuild.C("reports", ">", 10))).
		Build()
	require.NoError(t, err)
	require.Equal(t, "UPDATE users SET status = :status WHERE (status = :status2) OR (reports > :reports);", stmt.SQL)

	mock.ExpectExec(stmt.SQL).
		WithArgs(
			sql.Named("status", "banned"),
			sql.Named("status2", "spam"),
			sql.Named("reports", 10),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	res, err := db.ExecContext(context.Background(), stmt.SQL, stmt.Args()...)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestPositional_ReachDriverInOrder checks the positional rewrite against a
// driver that only understands "$n".
func TestPositional_ReachDriverInOrder(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmt, err := sqlbuild.New(sqlbuild.PostgreSQL).
		Select("id", "name").
		From("users").
		Where(sqlbuild.C("id", "in", []int{1, 2, 3})).
		Build()
	require.NoError(t, err)

	query, args := stmt.Positional()
	require.Equal(t, "SELECT id, name FROM users WHERE (id IN($1, $2, $3));", query)

	mock.ExpectQuery(query).
		WithArgs(1, 2, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "a").AddRow(3, "c"))

	rows, err := db.QueryContext(context.Background(), query, args...)
	require.NoError(t, err)
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	require.NoError(t, rows.Err())
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
