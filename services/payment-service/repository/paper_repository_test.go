package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/scholarpress/journal-backend/services/payment-service/models"
	"github.com/scholarpress/journal-backend/services/payment-service/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestUpdatePaymentStatus_Paid(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaperRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "papers" SET "payment_status"=$1 WHERE id = $2`)).
		WithArgs(models.PaymentStatusPaid, "paper-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePaymentStatus(context.Background(), "paper-1", models.PaymentStatusPaid)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatus_PaidTwiceIsNoError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaperRepo(gormDB)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "papers" SET "payment_status"=$1 WHERE id = $2`)).
			WithArgs(models.PaymentStatusPaid, "paper-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	assert.NoError(t, repo.UpdatePaymentStatus(context.Background(), "paper-1", models.PaymentStatusPaid))
	assert.NoError(t, repo.UpdatePaymentStatus(context.Background(), "paper-1", models.PaymentStatusPaid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatus_UnpaidNeverDowngrades(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaperRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "papers" SET "payment_status"=$1 WHERE id = $2 AND payment_status <> $3`)).
		WithArgs(models.PaymentStatusUnpaid, "paper-1", models.PaymentStatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdatePaymentStatus(context.Background(), "paper-1", models.PaymentStatusUnpaid)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatus_MissingPaper(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaperRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "papers"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdatePaymentStatus(context.Background(), "ghost", models.PaymentStatusPaid)
	assert.ErrorIs(t, err, repository.ErrPaperNotFound)
}

func TestUpdatePaymentStatus_DBError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaperRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "papers"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.UpdatePaymentStatus(context.Background(), "paper-1", models.PaymentStatusPaid)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrPaperNotFound)
}
