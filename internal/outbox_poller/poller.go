// Package outbox_poller drains the transactional outbox: pending posting
// events are fetched in batches and published to the postings topic, with
// per-message retry accounting.
package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bizdesk-posting-ledger/internal/config"
	"github.com/bizdesk-posting-ledger/internal/domain/outbox"
	"github.com/bizdesk-posting-ledger/internal/platform/messaging/producers"
	"github.com/panjf2000/ants/v2"
)

// Poller processes pending outbox messages. Within one batch, messages are
// published concurrently through a bounded worker pool; batches themselves
// run strictly one at a time.
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        producers.MessagePublisher
	pool             *ants.Pool
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	publisherCfg *config.PublisherConfig,
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	logger *slog.Logger,
) (*Poller, error) {
	pool, err := ants.NewPool(publisherCfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher pool: %w", err)
	}

	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		pool:             pool,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}, nil
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	defer p.pool.Release()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Outbox Poller tick: processing pending messages")
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	var wg sync.WaitGroup
	for _, msg := range messages {
		wg.Add(1)
		m := msg
		if submitErr := p.pool.Submit(func() {
			defer wg.Done()
			p.processMessage(ctx, m)
		}); submitErr != nil {
			wg.Done()
			p.logger.Error("Failed to submit outbox message to publisher pool", "outbox_id", m.ID, "error", submitErr)
		}
	}
	wg.Wait()

	return nil
}

func (p *Poller) processMessage(ctx context.Context, msg *outbox.Message) {
	key := msg.ReferenceType + "/" + msg.ReferenceID

	event, err := msg.Event()
	if err != nil {
		// Undecodable payloads can never succeed; park them immediately.
		p.logger.Error("Outbox message payload is not a posting event, marking as FAILED_TO_PUBLISH",
			"outbox_id", msg.ID, "reference", key, "error", err,
		)
		if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); errUpdate != nil {
			p.logger.Error("Failed to update outbox status for undecodable message", "outbox_id", msg.ID, "error", errUpdate)
		}
		return
	}

	if err := p.publisher.Publish(ctx, key, event); err != nil {
		p.logger.Error("Failed to publish posting event",
			"outbox_id", msg.ID, "reference", key, "current_attempts", msg.Attempts, "error", err,
		)

		if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
			p.logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
			return
		}

		if msg.Attempts+1 >= p.maxRetryAttempts {
			p.logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
				"outbox_id", msg.ID, "reference", key, "attempts_made", msg.Attempts+1,
			)
			if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); errUpdate != nil {
				p.logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "outbox_id", msg.ID, "error", errUpdate)
			}
		}
		return
	}

	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Failed to mark outbox message as processed", "outbox_id", msg.ID, "error", err)
		return
	}

	p.logger.Info("Published posting event from outbox", "outbox_id", msg.ID, "reference", key)
}
