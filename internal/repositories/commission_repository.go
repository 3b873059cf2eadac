package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// RevenueFilter narrows a revenue rollup to a date range and optional
// currency / provider.
type RevenueFilter struct {
	Currency   *models.Currency
	ProviderID *uuid.UUID
	Start      time.Time
	End        time.Time
}

// RevenueSummary is the aggregate of completed commissions over a period.
type RevenueSummary struct {
	TotalRevenue      int64 `json:"total_revenue"`
	TransactionCount  int64 `json:"transaction_count"`
	AverageCommission int64 `json:"average_commission"`
}

// CommissionRepository is the persistence boundary for the commission ledger.
type CommissionRepository interface {
	Create(ctx context.Context, commission *models.CommissionTransaction) error
	FindByID(ctx context.Context, commissionID uuid.UUID) (*models.CommissionTransaction, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.CommissionTransaction, error)
	// MarkRefunded transitions the entry to REFUNDED. It reports whether the
	// row actually changed, so a retried refund is a no-op instead of a
	// duplicate event.
	MarkRefunded(ctx context.Context, commissionID uuid.UUID) (bool, error)
	// MarkSettled flips the settled flag and stamps the settlement date.
	// Already-settled rows are left untouched.
	MarkSettled(ctx context.Context, commissionID uuid.UUID, settledAt time.Time) (bool, error)
	FindUnsettledByProvider(ctx context.Context, providerID uuid.UUID) ([]models.CommissionTransaction, error)
	RevenueSummary(ctx context.Context, filter RevenueFilter) (*RevenueSummary, error)
}

type commissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates a GORM-backed ledger repository.
func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) Create(ctx context.Context, commission *models.CommissionTransaction) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

func (r *commissionRepository) FindByID(ctx context.Context, commissionID uuid.UUID) (*models.CommissionTransaction, error) {
	var commission models.CommissionTransaction
	if err := r.db.WithContext(ctx).First(&commission, "commission_id = ?", commissionID).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.CommissionTransaction, error) {
	var commission models.CommissionTransaction
	if err := r.db.WithContext(ctx).First(&commission, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepository) MarkRefunded(ctx context.Context, commissionID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionTransaction{}).
		Where("commission_id = ? AND status <> ?", commissionID, models.CommissionRefunded).
		Update("status", models.CommissionRefunded)
	return res.RowsAffected > 0, res.Error
}

func (r *commissionRepository) MarkSettled(ctx context.Context, commissionID uuid.UUID, settledAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionTransaction{}).
		Where("commission_id = ? AND settled = ?", commissionID, false).
		Updates(map[string]interface{}{
			"settled":         true,
			"settlement_date": settledAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *commissionRepository) FindUnsettledByProvider(ctx context.Context, providerID uuid.UUID) ([]models.CommissionTransaction, error) {
	var commissions []models.CommissionTransaction
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND settled = ?", providerID, false).
		Order("created_at ASC").
		Find(&commissions).Error
	if err != nil {
		return nil, err
	}
	return commissions, nil
}

func (r *commissionRepository) RevenueSummary(ctx context.Context, filter RevenueFilter) (*RevenueSummary, error) {
	q := r.db.WithContext(ctx).
		Model(&models.CommissionTransaction{}).
		Where("status = ?", models.CommissionCompleted).
		Where("created_at BETWEEN ? AND ?", filter.Start, filter.End)

	if filter.Currency != nil {
		q = q.Where("currency = ?", *filter.Currency)
	}
	if filter.ProviderID != nil {
		q = q.Where("provider_id = ?", *filter.ProviderID)
	}

	var row struct {
		Total int64
		Count int64
	}
	err := q.Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary := &RevenueSummary{
		TotalRevenue:     row.Total,
		TransactionCount: row.Count,
	}
	if row.Count > 0 {
		summary.AverageCommission = row.Total / row.Count
	}
	return summary, nil
}
