package rules

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// CreateRuleRequest carries the fields of a new commission rule. Amounts are
// in minor units of the rule currency.
type CreateRuleRequest struct {
	Currency       string          `json:"currency"`
	TransferType   string          `json:"transfer_type"`
	MinTransaction *int64          `json:"min_transaction"`
	MaxTransaction *int64          `json:"max_transaction"`
	KYCLevel       string          `json:"kyc_level"`
	Percentage     decimal.Decimal `json:"percentage"`
	FixedAmount    *int64          `json:"fixed_amount"`
	MinAmount      *int64          `json:"min_amount"`
	MaxAmount      *int64          `json:"max_amount"`
	Priority       *int            `json:"priority"`
	EffectiveFrom  *time.Time      `json:"effective_from"`
	EffectiveTo    *time.Time      `json:"effective_to"`
	Description    string          `json:"description"`
	Notes          string          `json:"notes"`
}

// UpdateRuleRequest carries partial edits to an existing rule. The scope
// (currency, transfer type) of a rule is immutable; create a new rule
// instead of repurposing an old one.
type UpdateRuleRequest struct {
	MinTransaction *int64           `json:"min_transaction"`
	MaxTransaction *int64           `json:"max_transaction"`
	KYCLevel       *string          `json:"kyc_level"`
	Percentage     *decimal.Decimal `json:"percentage"`
	FixedAmount    *int64           `json:"fixed_amount"`
	MinAmount      *int64           `json:"min_amount"`
	MaxAmount      *int64           `json:"max_amount"`
	Priority       *int             `json:"priority"`
	EffectiveTo    *time.Time       `json:"effective_to"`
	Description    *string          `json:"description"`
	Notes          *string          `json:"notes"`
}

// RuleCacheInvalidator drops cached pricing for a rule scope. Satisfied by
// cache.RuleCache.
type RuleCacheInvalidator interface {
	Invalidate(ctx context.Context, currency models.Currency, transferType models.TransferType) error
	InvalidateAll(ctx context.Context) error
}
