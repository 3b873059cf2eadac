package commission

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// CalculateFeeRequest prices a transaction against an explicitly chosen
// rule. This path never falls back to the default tariff.
type CalculateFeeRequest struct {
	RuleID   uuid.UUID
	Amount   int64
	Currency models.Currency
}

// QuoteFeeRequest prices a transaction by its attributes; the best matching
// rule is selected, or the default tariff applies.
type QuoteFeeRequest struct {
	Amount       int64
	Currency     models.Currency
	TransferType models.TransferType
	KYCLevel     models.KYCLevel
	AsOf         time.Time // zero value means now
}

// RecordCommissionRequest appends a charged fee to the ledger.
type RecordCommissionRequest struct {
	TransactionID    uuid.UUID
	RuleID           *uuid.UUID // nil when the default tariff was applied
	ProviderID       uuid.UUID
	Amount           int64 // the fee, minor units
	Currency         models.Currency
	CalculationBasis models.JSON
}

// FeeCalculation is the outcome of pricing a transaction. The basis is the
// audit snapshot persisted alongside the ledger entry.
type FeeCalculation struct {
	Amount   int64           `json:"amount"`
	Currency models.Currency `json:"currency"`
	Fee      int64           `json:"commission_amount"`
	RuleID   *uuid.UUID      `json:"rule_id,omitempty"`
	Basis    models.JSON     `json:"calculation_details"`
}

// RuleCache is the read-through cache consumed by the service. Satisfied by
// cache.RuleCache.
type RuleCache interface {
	GetRules(ctx context.Context, currency models.Currency, transferType models.TransferType) ([]models.CommissionRule, bool, error)
	SetRules(ctx context.Context, currency models.Currency, transferType models.TransferType, rules []models.CommissionRule) error
}
