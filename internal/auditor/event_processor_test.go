package auditor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuditEventRepository struct {
	mock.Mock
}

func (m *mockAuditEventRepository) Create(ctx context.Context, ev *model.AuditEvent) (*model.AuditEvent, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditEvent), args.Error(1)
}

func auditMessage(t *testing.T, ev model.AuditEvent) *queue.Message {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Data: data, Timestamp: time.Now()}
}

func testEvent(id string) model.AuditEvent {
	return model.AuditEvent{
		EventID:    id,
		Entity:     "payment",
		EntityID:   7,
		ExpenseID:  3,
		Action:     model.AuditPaymentRecorded,
		Actor:      "tester",
		PaidAmount: 4000,
		OccurredAt: time.Now().UTC(),
	}
}

func TestAuditEventProcessor_PersistsEvent(t *testing.T) {
	repo := new(mockAuditEventRepository)
	svc, _ := newTestIdempotency()
	processor := NewAuditEventProcessor(repo, svc)
	ctx := context.Background()

	ev := testEvent("evt-1")
	repo.On("Create", mock.Anything, mock.MatchedBy(func(got *model.AuditEvent) bool {
		return got.EventID == "evt-1" && got.Action == model.AuditPaymentRecorded
	})).Return(&ev, nil).Once()

	err := processor.Process(ctx, auditMessage(t, ev))
	require.NoError(t, err)
	repo.AssertExpectations(t)

	processed, err := svc.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestAuditEventProcessor_DuplicateIsAcked(t *testing.T) {
	repo := new(mockAuditEventRepository)
	svc, _ := newTestIdempotency()
	processor := NewAuditEventProcessor(repo, svc)
	ctx := context.Background()

	ev := testEvent("evt-1")
	repo.On("Create", mock.Anything, mock.Anything).Return(&ev, nil).Once()

	require.NoError(t, processor.Process(ctx, auditMessage(t, ev)))

	// Redelivery: no second insert, no error.
	require.NoError(t, processor.Process(ctx, auditMessage(t, ev)))
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAuditEventProcessor_MalformedPayload(t *testing.T) {
	repo := new(mockAuditEventRepository)
	svc, _ := newTestIdempotency()
	processor := NewAuditEventProcessor(repo, svc)

	err := processor.Process(context.Background(), &queue.Message{ID: "1-0", Data: []byte("not json")})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestAuditEventProcessor_MissingEventID(t *testing.T) {
	repo := new(mockAuditEventRepository)
	svc, _ := newTestIdempotency()
	processor := NewAuditEventProcessor(repo, svc)

	ev := testEvent("")
	err := processor.Process(context.Background(), auditMessage(t, ev))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestAuditEventProcessor_RepositoryFailureRetries(t *testing.T) {
	repo := new(mockAuditEventRepository)
	svc, _ := newTestIdempotency()
	processor := NewAuditEventProcessor(repo, svc)
	ctx := context.Background()

	ev := testEvent("evt-1")
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(&ev, nil).Once()

	err := processor.Process(ctx, auditMessage(t, ev))
	assert.Error(t, err)

	count, err := svc.GetRetryCount(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The retry succeeds and clears the counter.
	require.NoError(t, processor.Process(ctx, auditMessage(t, ev)))
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestAuditEventProcessor_ExhaustedEventIsAcked(t *testing.T) {
	repo := new(mockAuditEventRepository)
	svc, _ := newTestIdempotency()
	processor := NewAuditEventProcessor(repo, svc)
	ctx := context.Background()

	ev := testEvent("evt-1")
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	for i := 0; i < svc.config.MaxRetries; i++ {
		assert.Error(t, processor.Process(ctx, auditMessage(t, ev)))
	}

	// Retries are spent; the processor acks so the queue dead-letters it.
	require.NoError(t, processor.Process(ctx, auditMessage(t, ev)))
	repo.AssertNumberOfCalls(t, "Create", svc.config.MaxRetries)
}
