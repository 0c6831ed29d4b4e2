package repository

import (
	"time"

	"vendora/internal/domain"
	"vendora/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByReference matches either our transaction reference or the gateway's
// own reference; webhook and redirect callbacks may carry either.
func (r *PaymentRepository) GetByReference(ref string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("transaction_reference = ? OR payment_gateway_reference = ?", ref, ref).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindActiveByIdempotencyKey returns the pending or successful payment for
// key, if one exists. Failed records are invisible here: they are purged
// before a retry.
func (r *PaymentRepository) FindActiveByIdempotencyKey(key string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("idempotency_key = ? AND status IN ?", key,
		[]string{domain.PaymentPending, domain.PaymentSuccess}).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteFailedByIdempotencyKey clears stale failed attempts so a fresh
// payment can reuse the key.
func (r *PaymentRepository) DeleteFailedByIdempotencyKey(key string) error {
	return r.db.Unscoped().
		Where("idempotency_key = ? AND status = ?", key, domain.PaymentFailed).
		Delete(&models.Payment{}).Error
}

// TransitionFromPending applies status (and paidAt, for success) only if the
// record still reads pending. The conditional UPDATE is what serializes the
// webhook/redirect/poll race: exactly one caller observes RowsAffected == 1
// and owns the transition's side effects.
func (r *PaymentRepository) TransitionFromPending(id uint, status string, paidAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": status}
	if paidAt != nil {
		updates["paid_at"] = paidAt
	}
	res := r.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, domain.PaymentPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListStalePending returns pending payments created before cutoff, for the
// background reconciliation sweep.
func (r *PaymentRepository) ListStalePending(cutoff time.Time) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.Where("status = ? AND created_at <= ?", domain.PaymentPending, cutoff).Find(&out).Error
	return out, err
}

// HasSuccessfulPayment is the entitlement check gating downloads. Any lookup
// error denies.
func (r *PaymentRepository) HasSuccessfulPayment(userID, fileID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("buyer_id = ? AND file_id = ? AND status = ?", userID, fileID, domain.PaymentSuccess).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByBuyer returns the buyer's payments, optionally filtered to one status.
func (r *PaymentRepository) ListByBuyer(buyerID uint, status string, limit, offset int) ([]models.Payment, int64, error) {
	q := r.db.Model(&models.Payment{}).Where("buyer_id = ?", buyerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Payment
	err := q.Preload("File").Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

// CreatorSalesStats aggregates successful sales for a creator's dashboard.
func (r *PaymentRepository) CreatorSalesStats(creatorID uint) (count int64, revenueCents int64, err error) {
	row := r.db.Model(&models.Payment{}).
		Select("COUNT(*), COALESCE(SUM(amount_cents), 0)").
		Where("creator_id = ? AND status = ?", creatorID, domain.PaymentSuccess).
		Row()
	err = row.Scan(&count, &revenueCents)
	return count, revenueCents, err
}
