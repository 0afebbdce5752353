package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/paylane/gateway/config"
	"github.com/paylane/gateway/services/remote"
)

// BalanceEvent records a trader balance adjustment for downstream consumers.
type BalanceEvent struct {
	TraderID   string    `json:"trader_id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Balance    float64   `json:"balance"`
	AdjustedBy string    `json:"adjusted_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Producer publishes balance events. Publishing is fire-and-forget: delivery
// failures are logged and never fail the request that produced the event.
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewProducer creates a balance-event producer for the configured topic.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

// PublishBalanceChange writes the event keyed by trader, so per-trader
// ordering holds within a partition.
func (p *Producer) PublishBalanceChange(ctx context.Context, event BalanceEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("balance event marshal failed", zap.Error(err))
		return
	}

	_, err = remote.Do(ctx, p.logger, remote.DefaultPolicy, func(error) bool { return true }, func(attemptCtx context.Context) (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(attemptCtx, kafka.Message{
			Key:   []byte(event.TraderID),
			Value: payload,
		})
	})
	if err != nil {
		p.logger.Error("balance event publish failed",
			zap.String("trader_id", event.TraderID),
			zap.Error(err))
	}
}

// Close flushes and releases the underlying writer.
func (p *Producer) Close() error {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
