package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRule is a priced fee policy scoped to a currency and transfer
// type. Rules are time-versioned (effective window), prioritized, and carry
// optional eligibility bounds on the transaction amount and the user's KYC
// tier. The ledger references rules by id only, so editing a rule never
// rewrites fees that were already recorded.
type CommissionRule struct {
	RuleID       uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	Currency     Currency     `gorm:"type:varchar(3);not null;index:idx_rules_scope" json:"currency"`
	TransferType TransferType `gorm:"type:varchar(20);not null;index:idx_rules_scope" json:"transfer_type"`

	// Eligibility bounds (inclusive), nil means unbounded.
	MinTransaction *int64   `json:"min_transaction,omitempty"`
	MaxTransaction *int64   `json:"max_transaction,omitempty"`
	KYCLevel       KYCLevel `gorm:"type:varchar(20);not null;default:'ANY'" json:"kyc_level"`

	// Formula parameters, amounts in minor units.
	Percentage  decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"percentage"`
	FixedAmount int64           `gorm:"not null;default:0" json:"fixed_amount"`
	MinAmount   int64           `gorm:"not null;default:0" json:"min_amount"`
	MaxAmount   *int64          `json:"max_amount,omitempty"`

	// Lifecycle.
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	Priority      int        `gorm:"not null;default:0" json:"priority"`
	EffectiveFrom time.Time  `gorm:"not null" json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`

	// Audit.
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsEffectiveAt reports whether the rule is active and its effective window
// contains t. The upper bound is exclusive.
func (r *CommissionRule) IsEffectiveAt(t time.Time) bool {
	if !r.IsActive || t.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || t.Before(*r.EffectiveTo)
}

// AdmitsAmount reports whether amount falls within the rule's transaction
// bounds.
func (r *CommissionRule) AdmitsAmount(amount int64) bool {
	if r.MinTransaction != nil && amount < *r.MinTransaction {
		return false
	}
	if r.MaxTransaction != nil && amount > *r.MaxTransaction {
		return false
	}
	return true
}

// Matches reports whether the rule governs a transaction with the given
// amount and user KYC tier at time t.
func (r *CommissionRule) Matches(amount int64, kyc KYCLevel, t time.Time) bool {
	if !r.IsEffectiveAt(t) {
		return false
	}
	if !r.AdmitsAmount(amount) {
		return false
	}
	return r.KYCLevel == KYCAny || r.KYCLevel == kyc
}
