package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/service/outbox"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

// stubPublisher считает публикации и может отказывать заданное число раз.
type stubPublisher struct {
	mu        sync.Mutex
	published []domain.OutboxMessage
	failCount int
}

func (p *stubPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failCount > 0 {
		p.failCount--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestWorker_ProcessOnce(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher, outbox.WithRetryBaseDelay(0))

	if _, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "order-1", EventType: "order.created"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	worker.ProcessOnce(context.Background())

	if publisher.count() != 1 {
		t.Fatalf("expected 1 published message, got %d", publisher.count())
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages after publish, got %d", len(pending))
	}
}

func TestWorker_RetriesTransientFailure(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failCount: 2}
	worker := outbox.NewWorker(repo, publisher,
		outbox.WithMaxAttempts(3),
		outbox.WithRetryBaseDelay(time.Millisecond),
	)

	if _, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "order-1", EventType: "order.created"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	worker.ProcessOnce(context.Background())

	if publisher.count() != 1 {
		t.Fatalf("expected message published after retries, got %d", publisher.count())
	}
}

func TestWorker_ExhaustedRetriesGoToDLQ(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failCount: 100}
	dlq := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher,
		outbox.WithMaxAttempts(2),
		outbox.WithRetryBaseDelay(0),
		outbox.WithDLQPublisher(dlq),
	)

	msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "order-1", EventType: "order.created", Payload: []byte(`{}`)})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	worker.ProcessOnce(context.Background())

	if publisher.count() != 0 {
		t.Fatalf("expected no successful publishes, got %d", publisher.count())
	}
	if dlq.count() != 1 {
		t.Fatalf("expected 1 DLQ message, got %d", dlq.count())
	}

	dlq.mu.Lock()
	dlqMsg := dlq.published[0]
	dlq.mu.Unlock()
	if dlqMsg.ID != msg.ID {
		t.Fatalf("expected DLQ message for %s, got %s", msg.ID, dlqMsg.ID)
	}

	// Сообщение помечено failed и не возвращается как pending.
	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages, got %d", len(pending))
	}
}

func TestWorker_ProcessOnceRespectsContext(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher)

	if _, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", EventType: "order.created"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worker.ProcessOnce(ctx)

	if publisher.count() != 0 {
		t.Fatalf("expected no publishes with canceled context, got %d", publisher.count())
	}
}
