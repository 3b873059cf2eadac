package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// Publisher emits commission lifecycle events. Implementations must never
// make publish failures visible to callers beyond logging; the commission
// was genuinely charged once the ledger write committed.
type Publisher interface {
	CommissionCollected(ctx context.Context, commission *models.CommissionTransaction)
	CommissionRefunded(ctx context.Context, commission *models.CommissionTransaction)
	CommissionSettled(ctx context.Context, commission *models.CommissionTransaction)
	Close() error
}

// KafkaPublisher writes commission events to a single Kafka topic, keyed by
// commission id so events for one commission stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, log *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
}

func (p *KafkaPublisher) CommissionCollected(ctx context.Context, commission *models.CommissionTransaction) {
	event := newEvent(EventCommissionCollected, commission)
	event.CalculationBasis = commission.CalculationBasis
	p.publish(ctx, event)
}

func (p *KafkaPublisher) CommissionRefunded(ctx context.Context, commission *models.CommissionTransaction) {
	p.publish(ctx, newEvent(EventCommissionRefunded, commission))
}

func (p *KafkaPublisher) CommissionSettled(ctx context.Context, commission *models.CommissionTransaction) {
	event := newEvent(EventCommissionSettled, commission)
	event.SettlementDate = commission.SettlementDate
	p.publish(ctx, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, event CommissionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).WithField("type", event.Type).Error("failed to marshal commission event")
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CommissionID.String()),
		Value: payload,
	})
	if err != nil {
		// Logged and swallowed: the ledger write already committed.
		p.log.WithError(err).WithFields(logrus.Fields{
			"type":          event.Type,
			"commission_id": event.CommissionID,
		}).Error("failed to publish commission event")
		return
	}

	p.log.WithFields(logrus.Fields{
		"type":          event.Type,
		"commission_id": event.CommissionID,
	}).Info("published commission event")
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards all events. Used in tests and when Kafka is not
// configured.
type NoopPublisher struct{}

func (NoopPublisher) CommissionCollected(context.Context, *models.CommissionTransaction) {}
func (NoopPublisher) CommissionRefunded(context.Context, *models.CommissionTransaction)  {}
func (NoopPublisher) CommissionSettled(context.Context, *models.CommissionTransaction)   {}
func (NoopPublisher) Close() error                                                       { return nil }
