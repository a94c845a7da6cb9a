package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/adapters/memory"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
)

type fakePublisher struct {
	published []events.Envelope
	topics    []string
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, event events.Envelope) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.published = append(f.published, event)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, eventIDs ...string) {
	t.Helper()
	for _, id := range eventIDs {
		err := store.AppendOutbox(context.Background(), events.Envelope{
			EventID:   id,
			EventType: events.TypeTradeInAccepted,
		})
		if err != nil {
			t.Fatalf("AppendOutbox: %v", err)
		}
	}
}

func TestRunOncePublishesAndMarksPending(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2")
	publisher := &fakePublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	for _, topic := range publisher.topics {
		if topic != events.TypeTradeInAccepted {
			t.Fatalf("unexpected topic %q", topic)
		}
	}

	// A second cycle has nothing left to publish.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published rows must not be replayed, got %d events", len(publisher.published))
	}
}

func TestRunOnceKeepsRowsPendingOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1")
	publishErr := errors.New("bus unavailable")
	relay := OutboxRelay{Outbox: store, Publisher: &fakePublisher{err: publishErr}, Clock: store}

	if err := relay.RunOnce(context.Background()); !errors.Is(err, publishErr) {
		t.Fatalf("expected publish error, got %v", err)
	}

	// The row stays pending and is retried on the next cycle.
	publisher := &fakePublisher{}
	relay.Publisher = publisher
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry RunOnce: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0].EventID != "evt-1" {
		t.Fatalf("expected evt-1 republished, got %+v", publisher.published)
	}
}
