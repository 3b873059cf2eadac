// Package consumer ingests transaction lifecycle events and drives
// commission recording and refunds.
package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/commission"
)

// Inbound event types on the transaction-events topic.
const (
	EventTransactionCompleted = "TRANSACTION_COMPLETED"
	EventTransactionReversed  = "TRANSACTION_REVERSED"
)

// TransactionEvent is the inbound payload from the transaction service.
type TransactionEvent struct {
	Type          string    `json:"type"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	TransferType  string    `json:"transfer_type"`
	KYCLevel      string    `json:"kyc_level"`
}

// Config holds the consumer's Kafka settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads transaction events and prices them. Delivery is
// at-least-once: handlers are idempotent, so duplicates are commits, not
// failures.
type Consumer struct {
	reader      *kafka.Reader
	commissions commission.Service
	log         *logrus.Logger
}

func New(cfg Config, commissions commission.Service, log *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})

	return &Consumer{
		reader:      reader,
		commissions: commissions,
		log:         log,
	}
}

// Run consumes until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.WithFields(logrus.Fields{
		"topic":    c.reader.Config().Topic,
		"group_id": c.reader.Config().GroupID,
	}).Info("starting transaction event consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer shutting down")
				return c.reader.Close()
			}
			c.log.WithError(err).Error("failed to fetch message")
			continue
		}

		if err := c.handle(ctx, msg.Value); err != nil {
			// Leave the offset uncommitted so the message is redelivered.
			c.log.WithError(err).Error("failed to handle transaction event")
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.WithError(err).Error("failed to commit offset")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) error {
	var event TransactionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// Malformed payloads can never succeed; drop with a log.
		c.log.WithError(err).Warn("dropping malformed transaction event")
		return nil
	}

	switch event.Type {
	case EventTransactionCompleted:
		return c.handleCompleted(ctx, event)
	case EventTransactionReversed:
		return c.commissions.RefundCommission(ctx, event.TransactionID)
	default:
		c.log.WithField("type", event.Type).Debug("ignoring transaction event")
		return nil
	}
}

func (c *Consumer) handleCompleted(ctx context.Context, event TransactionEvent) error {
	currency, err := models.ParseCurrency(event.Currency)
	if err != nil {
		c.log.WithError(err).WithField("transaction_id", event.TransactionID).
			Warn("dropping transaction event with unsupported currency")
		return nil
	}
	transferType, err := models.ParseTransferType(event.TransferType)
	if err != nil {
		c.log.WithError(err).WithField("transaction_id", event.TransactionID).
			Warn("dropping transaction event with unsupported transfer type")
		return nil
	}
	kycLevel, err := models.ParseKYCLevel(event.KYCLevel)
	if err != nil {
		kycLevel = models.KYCAny
	}

	quote, err := c.commissions.QuoteFee(ctx, commission.QuoteFeeRequest{
		Amount:       event.Amount,
		Currency:     currency,
		TransferType: transferType,
		KYCLevel:     kycLevel,
	})
	if err != nil {
		return err
	}

	_, err = c.commissions.RecordCommission(ctx, commission.RecordCommissionRequest{
		TransactionID:    event.TransactionID,
		RuleID:           quote.RuleID,
		ProviderID:       event.ProviderID,
		Amount:           quote.Fee,
		Currency:         currency,
		CalculationBasis: quote.Basis,
	})
	if errors.Is(err, commission.ErrDuplicateCommission) {
		// Redelivered event; the fee is already on the ledger.
		c.log.WithField("transaction_id", event.TransactionID).
			Info("commission already recorded, skipping")
		return nil
	}
	return err
}
