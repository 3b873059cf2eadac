// Package events publishes commission lifecycle notifications to Kafka.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// Event types carried on the commission-events topic.
const (
	EventCommissionCollected = "COMMISSION_COLLECTED"
	EventCommissionRefunded  = "COMMISSION_REFUNDED"
	EventCommissionSettled   = "COMMISSION_SETTLED"
)

// CommissionEvent is the wire payload for all three notifications. Events
// are notifications only: the ledger row is the source of truth and is
// already committed before any event is produced.
type CommissionEvent struct {
	Type             string      `json:"type"`
	CommissionID     uuid.UUID   `json:"commission_id"`
	TransactionID    uuid.UUID   `json:"transaction_id"`
	ProviderID       uuid.UUID   `json:"provider_id"`
	Amount           int64       `json:"amount"`
	Currency         string      `json:"currency"`
	CalculationBasis models.JSON `json:"calculation_basis,omitempty"`
	SettlementDate   *time.Time  `json:"settlement_date,omitempty"`
	Timestamp        time.Time   `json:"timestamp"`
}

func newEvent(eventType string, c *models.CommissionTransaction) CommissionEvent {
	return CommissionEvent{
		Type:          eventType,
		CommissionID:  c.CommissionID,
		TransactionID: c.TransactionID,
		ProviderID:    c.ProviderID,
		Amount:        c.Amount,
		Currency:      string(c.Currency),
		Timestamp:     time.Now().UTC(),
	}
}
