package models

import (
	"time"

	"github.com/google/uuid"
)

// CommissionTransaction is one ledger entry per fee actually charged. Rows
// are append-only: refunds and settlement mutate status fields, never delete.
// The calculation basis snapshots the inputs and outputs of the fee
// computation so a dispute can be resolved without recomputing anything.
type CommissionTransaction struct {
	CommissionID  uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"commission_id"`
	TransactionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	RuleID        *uuid.UUID `gorm:"type:uuid" json:"rule_id,omitempty"` // nil: default tariff applied
	ProviderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`

	Currency Currency `gorm:"type:varchar(3);not null" json:"currency"`
	Amount   int64    `gorm:"not null" json:"amount"` // fee charged, minor units

	CalculationBasis JSON `gorm:"type:jsonb" json:"calculation_basis"`

	Status         CommissionStatus `gorm:"type:varchar(20);not null;default:'COMPLETED'" json:"status"`
	Settled        bool             `gorm:"not null;default:false" json:"settled"`
	SettlementDate *time.Time       `json:"settlement_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
