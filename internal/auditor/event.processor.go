package auditor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/queue"
	"github.com/rezamoss/expense-ledger/pkg/logger"
	"github.com/rezamoss/expense-ledger/pkg/prom"
)

type AuditEventRepository interface {
	Create(ctx context.Context, ev *model.AuditEvent) (*model.AuditEvent, error)
}

// AuditEventProcessor persists settlement stream events as audit rows,
// exactly once per event id.
type AuditEventProcessor struct {
	events      AuditEventRepository
	idempotency *IdempotencyService
}

func NewAuditEventProcessor(events AuditEventRepository, idempotency *IdempotencyService) *AuditEventProcessor {
	return &AuditEventProcessor{
		events:      events,
		idempotency: idempotency,
	}
}

func (p *AuditEventProcessor) GetType() string {
	return "audit_event"
}

// Process persists one stream entry. A nil return acks the message; an
// error leaves it pending for retry.
func (p *AuditEventProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var event model.AuditEvent
	if err := json.Unmarshal(queueMessage.Data, &event); err != nil {
		logger.Error("failed to unmarshal audit event", "message_id", queueMessage.ID, "error", err)
		prom.IncAuditEventProcessed("unknown", "malformed")
		return err // malformed payload, let retries exhaust into the DLQ
	}
	if event.EventID == "" {
		logger.Error("audit event without event id", "message_id", queueMessage.ID)
		prom.IncAuditEventProcessed(event.Action, "malformed")
		return errors.New("audit event without event id")
	}

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, event.EventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			prom.IncAuditEventProcessed(event.Action, "duplicate")
			return nil
		case errors.Is(err, ErrMaxRetriesExceeded):
			prom.IncAuditEventProcessed(event.Action, "exhausted")
			return nil // ack so the queue dead-letters it
		case errors.Is(err, ErrLockAcquireFailed):
			return errors.New("lock held by another consumer")
		default:
			return err
		}
	}
	defer p.idempotency.ReleaseLock(ctx, procCtx)

	if _, err := p.events.Create(ctx, &event); err != nil {
		logger.Error("failed to persist audit event",
			"event_id", event.EventID, "expense_id", event.ExpenseID, "error", err)
		p.idempotency.MarkFailure(ctx, procCtx, err)
		prom.IncAuditEventProcessed(event.Action, "error")
		return err
	}

	if err := p.idempotency.MarkSuccess(ctx, procCtx); err != nil {
		// The row is committed; a missing marker only risks a duplicate
		// insert attempt, which the unique event id rejects.
		logger.Error("failed to mark event processed", "event_id", event.EventID, "error", err)
	}

	prom.IncAuditEventProcessed(event.Action, "ok")
	logger.Debug("audit event persisted",
		"event_id", event.EventID,
		"action", event.Action,
		"expense_id", event.ExpenseID,
		"retry_count", procCtx.RetryCount)
	return nil
}
