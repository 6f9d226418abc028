package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// PostingEventProducer publishes posted line groups to the postings topic.
// Messages are keyed by reference so all events for one document land on the
// same partition in order.
type PostingEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewPostingEventProducer creates a producer and ensures the topic exists
func NewPostingEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*PostingEventProducer, error) {
	if cfg.PostingsTopic == "" {
		return nil, fmt.Errorf("kafka postings topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for posting event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.PostingsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure postings topic %s exists: %w", cfg.PostingsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.PostingsTopic,
		Balancer:     &kafka.Hash{}, // Key by reference, keep per-document ordering
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &PostingEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.PostingsTopic,
	}, nil
}

func (p *PostingEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal posting event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish posting event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish posting event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published posting event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *PostingEventProducer) Close() error {
	p.logger.Info("Closing posting event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
