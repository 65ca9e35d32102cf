package repository

import (
	"context"
	"errors"

	"github.com/scholarpress/journal-backend/services/payment-service/models"
	"gorm.io/gorm"
)

// ErrPaperNotFound is returned when a paid write matched no row.
var ErrPaperNotFound = errors.New("paper not found")

type PaperRepository interface {
	// UpdatePaymentStatus sets payment_status for the paper. Writing paid
	// is idempotent. Any other status leaves an already paid row untouched.
	UpdatePaymentStatus(ctx context.Context, paperID string, status models.PaymentStatus) error
}

type gormPaperRepo struct {
	db *gorm.DB
}

func NewGormPaperRepo(db *gorm.DB) PaperRepository {
	return &gormPaperRepo{db: db}
}

func (r *gormPaperRepo) UpdatePaymentStatus(ctx context.Context, paperID string, status models.PaymentStatus) error {
	q := r.db.WithContext(ctx).Model(&models.Paper{}).Where("id = ?", paperID)
	if status != models.PaymentStatusPaid {
		q = q.Where("payment_status <> ?", models.PaymentStatusPaid)
	}

	res := q.Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 && status == models.PaymentStatusPaid {
		return ErrPaperNotFound
	}
	return nil
}
