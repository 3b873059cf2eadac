package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// RuleRepository is the persistence boundary for commission rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *models.CommissionRule) error
	Save(ctx context.Context, rule *models.CommissionRule) error
	FindByID(ctx context.Context, ruleID uuid.UUID) (*models.CommissionRule, error)
	// FindActiveByScope returns every active rule for the scope regardless of
	// its effective window; effectiveness is evaluated in memory at selection
	// time so the cached list stays valid across window boundaries.
	FindActiveByScope(ctx context.Context, currency models.Currency, transferType models.TransferType) ([]models.CommissionRule, error)
	FindByCurrency(ctx context.Context, currency models.Currency, limit, offset int) ([]models.CommissionRule, int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]models.CommissionRule, int64, error)
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a GORM-backed rule repository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.CommissionRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepository) Save(ctx context.Context, rule *models.CommissionRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepository) FindByID(ctx context.Context, ruleID uuid.UUID) (*models.CommissionRule, error) {
	var rule models.CommissionRule
	if err := r.db.WithContext(ctx).First(&rule, "rule_id = ?", ruleID).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) FindActiveByScope(ctx context.Context, currency models.Currency, transferType models.TransferType) ([]models.CommissionRule, error) {
	var rules []models.CommissionRule
	err := r.db.WithContext(ctx).
		Where("currency = ? AND transfer_type = ? AND is_active = ?", currency, transferType, true).
		Order("priority DESC, effective_from ASC, rule_id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) FindByCurrency(ctx context.Context, currency models.Currency, limit, offset int) ([]models.CommissionRule, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CommissionRule{}).Where("currency = ?", currency)
	return r.paginate(q, limit, offset)
}

func (r *ruleRepository) FindAll(ctx context.Context, limit, offset int) ([]models.CommissionRule, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CommissionRule{})
	return r.paginate(q, limit, offset)
}

func (r *ruleRepository) paginate(q *gorm.DB, limit, offset int) ([]models.CommissionRule, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rules []models.CommissionRule
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rules).Error
	if err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}
