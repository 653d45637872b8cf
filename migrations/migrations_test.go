package migrations

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrateCreatesTablesInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, s := range schema {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + s.table + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, AutoMigrate(0, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateRetriesThenFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS admins").WillReturnError(errors.New("server is starting"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS admins").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS waiters").WillReturnError(errors.New("access denied"))

	err = AutoMigrate(1, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to migrate waiters table")
}
