package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
)

// OutboxRelay publishes persisted claim events to the bus. Rows are marked
// published only after the publish succeeds; the first failure stops the
// batch so the next cycle reprocesses it.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("claim outbox list failed",
			"event", "claim_outbox_list_failed",
			"module", "token-distribution/claim-verification",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event events.Envelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("claim outbox decode failed",
				"event", "claim_outbox_decode_failed",
				"module", "token-distribution/claim-verification",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("claim outbox publish failed",
				"event", "claim_outbox_publish_failed",
				"module", "token-distribution/claim-verification",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}

	logger.Info("claim outbox relay cycle completed",
		"event", "claim_outbox_relay_completed",
		"module", "token-distribution/claim-verification",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
