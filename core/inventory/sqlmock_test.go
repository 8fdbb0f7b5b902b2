package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestInTransactionRollsBackOnQueryError(t *testing.T) {
	db, mock := mockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `proxies`").WillReturnError(errors.New("table gone"))
	mock.ExpectRollback()

	err := store.InTransaction(context.Background(), func(tx Tx) error {
		_, err := tx.ProxiesByProvider("ipr")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table gone")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTransactionCommitsOnSuccess(t *testing.T) {
	db, mock := mockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `proxies`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider"}).AddRow("dev-1", "ipr"))
	mock.ExpectCommit()

	err := store.InTransaction(context.Background(), func(tx Tx) error {
		proxies, err := tx.ProxiesByProvider("ipr")
		if err != nil {
			return err
		}
		assert.Len(t, proxies, 1)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionHistoryQueryError(t *testing.T) {
	db, mock := mockDB(t)
	store := NewStore(db)

	mock.ExpectQuery("SELECT (.+) FROM `change_records`").WillReturnError(errors.New("db down"))

	_, _, err := store.ConnectionHistory(context.Background(), "conn-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
