package state

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebindPlaceholders(t *testing.T) {
	pg := &DB{dialect: "postgres"}
	lite := &DB{dialect: "sqlite"}

	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND coins >= $2",
		pg.q("SELECT * FROM users WHERE id = ? AND coins >= ?"))
	assert.Equal(t, "SELECT * FROM users WHERE id = ? AND coins >= ?",
		lite.q("SELECT * FROM users WHERE id = ? AND coins >= ?"))
}

func TestPostgresQueriesUseNumberedPlaceholders(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db := NewWithDB(mockDB, "postgres")
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "hashed_password", "full_name", "coins", "created_at"}).
		AddRow("u1", "a@b.c", "hash", "Ana", 10, now)
	mock.ExpectQuery(`SELECT id, email, hashed_password, full_name, coins, created_at FROM users WHERE id = $1`).
		WithArgs("u1").
		WillReturnRows(rows)

	u, err := db.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSpendCoinsGuard(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db := NewWithDB(mockDB, "postgres")
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET coins = coins - $1 WHERE id = $2 AND coins >= $3`).
		WithArgs(5, "u1", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "hashed_password", "full_name", "coins", "created_at"}).
		AddRow("u1", "a@b.c", "hash", "Ana", 5, now)
	mock.ExpectQuery(`SELECT id, email, hashed_password, full_name, coins, created_at FROM users WHERE id = $1`).
		WithArgs("u1").
		WillReturnRows(rows)

	u, err := db.SpendCoins("u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, u.Coins)
	assert.NoError(t, mock.ExpectationsWereMet())
}
