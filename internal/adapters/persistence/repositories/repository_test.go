package repositories

import (
	"context"
	"testing"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestCustomerRepository_DeductPoints(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("UPDATE `customers` SET `points_balance`=points_balance - \\? WHERE .*id = \\? AND points_balance >= \\?").
		WithArgs(int64(30), uint(7), int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT `points_balance` FROM `customers` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"points_balance"}).AddRow(70))

	balance, err := repo.DeductPoints(context.Background(), 7, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_DeductPointsInsufficient(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("UPDATE `customers` SET `points_balance`=points_balance - \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.DeductPoints(context.Background(), 7, 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_AddPoints(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("UPDATE `customers` SET `lifetime_points`=lifetime_points \\+ \\?,`points_balance`=points_balance \\+ \\?").
		WithArgs(int64(12), int64(12), uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT `points_balance` FROM `customers`").
		WillReturnRows(sqlmock.NewRows([]string{"points_balance"}).AddRow(112))

	balance, err := repo.AddPoints(context.Background(), 3, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(112), balance)

	mock.ExpectExec("UPDATE `customers`").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = repo.AddPoints(context.Background(), 404, 12)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `customers` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("INSERT INTO `customers`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'user_id'"})

	err := repo.Create(context.Background(), &models.Customer{UserID: 1, Name: "Ada"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoucherRepository_MarkUsedTwice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoucherRepository(db)

	mock.ExpectExec("UPDATE `vouchers` SET .* WHERE .*id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkUsed(context.Background(), 5, time.Now(), nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoucherRepository_ExpireBefore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoucherRepository(db)
	now := time.Now()

	mock.ExpectExec("UPDATE `vouchers` SET `status`=\\?,`updated_at`=\\? WHERE .*status = \\? AND expires_at <= \\?").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ExpireBefore(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `point_transactions`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.WithinTx(context.Background(), func(tx Store) error {
		require.NoError(t, tx.Ledger().Append(context.Background(), &models.PointTransaction{
			CustomerID:   1,
			Type:         string(domain.TxEarn),
			Points:       10,
			BalanceAfter: 10,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `customers` SET `tier`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx Store) error {
		return tx.Customers().UpdateTier(context.Background(), 1, string(domain.TierSilver))
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_MaxNumberByCafe(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(CAST\\(SUBSTRING_INDEX\\(order_number, '-', -1\\) AS UNSIGNED\\)\\), 0\\) FROM `orders` WHERE cafe_id = \\?").
		WithArgs(uint(4)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(17))

	n, err := repo.MaxNumberByCafe(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeRepository_GetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCafeRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `cafes` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Bean There"))
	mock.ExpectQuery("SELECT \\* FROM `cafes` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cafe, err := repo.GetForUpdate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Bean There", cafe.Name)

	_, err = repo.GetForUpdate(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrCafeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
