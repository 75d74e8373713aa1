package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PublisherConfig struct {
	Topic        string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Publisher sends JSON records to one topic, keyed by record id, retrying a
// failed send up to MaxAttempts times.
type Publisher struct {
	producer Producer
	config   PublisherConfig
	logger   *zap.Logger
}

func NewPublisher(producer Producer, config PublisherConfig, logger *zap.Logger) *Publisher {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	return &Publisher{
		producer: producer,
		config:   config,
		logger:   logger.With(zap.String("topic", config.Topic)),
	}
}

func (p *Publisher) Publish(ctx context.Context, id uuid.UUID, record interface{}) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}

	key := []byte(id.String())
	for attempt := 1; ; attempt++ {
		err = p.producer.SendMessage(ctx, p.config.Topic, key, payload)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= p.config.MaxAttempts {
			p.logger.Error("record reached max attempts",
				zap.Stringer("id", id),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return fmt.Errorf("failed to publish record %s after %d attempts: %w", id, attempt, err)
		}

		p.logger.Warn("failed to publish record, retrying", zap.Stringer("id", id), zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-time.After(p.config.RetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}
