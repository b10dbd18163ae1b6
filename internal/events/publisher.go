// Package events publishes emitted observations to a Redis stream so
// downstream consumers (alerting, aggregation) see new prices without
// polling the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/priceduck/pricewatch/internal/models"
)

const (
	EventTypePriceObserved = "PRICE_OBSERVED"

	DefaultStream = "stream:price_observations"
)

// RedisClient is the slice of the redis API the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// Publisher writes one stream entry per emitted ScrapeResult. It satisfies
// sink.Sink so the orchestrator can fan out to it like any other sink.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) Emit(ctx context.Context, result *models.ScrapeResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}

	entry, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_id":   uuid.New().String(),
			"event_type": EventTypePriceObserved,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"payload":    string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	p.logger.Debug("observation published",
		"stream", p.stream,
		"entry", entry,
		"product", result.ProductID,
		"region", result.RegionCode,
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
