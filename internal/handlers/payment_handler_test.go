package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordPayment(ctx context.Context, req model.PaymentCreateRequest) (*model.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockLedgerService) AmendPayment(ctx context.Context, paymentID int64, req model.PaymentAmendment) (*model.Payment, error) {
	args := m.Called(ctx, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockLedgerService) RetractPayment(ctx context.Context, paymentID int64, actor string) error {
	args := m.Called(ctx, paymentID, actor)
	return args.Error(0)
}

func (m *MockLedgerService) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockLedgerService) ListPayments(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Payment), args.Get(1).(int64), args.Error(2)
}

func setupTestContext(method, uri string, body []byte) *xhttp.RequestCtx {
	ctx := &xhttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.Set(actorHeader, "tester")
	if body != nil {
		ctx.Request.SetBody(body)
		ctx.Request.Header.SetContentType("application/json")
	}
	return ctx
}

func samplePayment() *model.Payment {
	return &model.Payment{
		ID:          7,
		ExpenseID:   3,
		PaymentDate: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		Amount:      4000,
		Type:        model.PaymentTypeTransfer,
		Active:      true,
		CreatedBy:   "tester",
		UpdatedBy:   "tester",
	}
}

func TestPaymentHandler_RecordPayment(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewPaymentHandler(svc)

		svc.On("RecordPayment", mock.Anything, mock.MatchedBy(func(req model.PaymentCreateRequest) bool {
			return req.ExpenseID == 3 && req.Amount == 4000 &&
				req.Type == model.PaymentTypeTransfer && req.Actor == "tester"
		})).Return(samplePayment(), nil)

		body := []byte(`{"expense_id":3,"amount":4000,"payment_date":"2025-04-05","payment_type":"transfer"}`)
		ctx := setupTestContext("POST", "/api/v1/payments", body)
		h.RecordPayment(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var got model.Payment
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.Equal(t, int64(7), got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewPaymentHandler(svc)

		ctx := setupTestContext("POST", "/api/v1/payments", []byte("{not json"))
		h.RecordPayment(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "RecordPayment")
	})

	t.Run("invalid payment date", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewPaymentHandler(svc)

		body := []byte(`{"expense_id":3,"amount":4000,"payment_date":"05/04/2025","payment_type":"transfer"}`)
		ctx := setupTestContext("POST", "/api/v1/payments", body)
		h.RecordPayment(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("service error mapping", func(t *testing.T) {
		cases := []struct {
			name   string
			err    error
			status int
		}{
			{"validation", fmt.Errorf("%w: amount must be positive", model.ErrValidation), 400},
			{"not found", fmt.Errorf("%w: expense 3", model.ErrNotFound), 404},
			{"overpayment", fmt.Errorf("%w: exceeds owed", model.ErrOverpayment), 409},
			{"contention", fmt.Errorf("%w: expense 3", model.ErrConcurrency), 503},
			{"unknown", fmt.Errorf("db exploded"), 500},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc := new(MockLedgerService)
				h := NewPaymentHandler(svc)
				svc.On("RecordPayment", mock.Anything, mock.Anything).Return(nil, tc.err)

				body := []byte(`{"expense_id":3,"amount":4000,"payment_date":"2025-04-05","payment_type":"transfer"}`)
				ctx := setupTestContext("POST", "/api/v1/payments", body)
				h.RecordPayment(ctx)

				assert.Equal(t, tc.status, ctx.Response.StatusCode())
				if tc.status == 500 {
					// Internal details never reach the client.
					assert.NotContains(t, string(ctx.Response.Body()), "db exploded")
				}
			})
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewPaymentHandler(svc)

	svc.On("GetPayment", mock.Anything, int64(7)).Return(samplePayment(), nil)

	ctx := setupTestContext("GET", "/api/v1/payments/7", nil)
	ctx.SetUserValue("id", "7")
	h.GetPayment(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	t.Run("bad id", func(t *testing.T) {
		ctx := setupTestContext("GET", "/api/v1/payments/abc", nil)
		ctx.SetUserValue("id", "abc")
		h.GetPayment(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestPaymentHandler_AmendPayment(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewPaymentHandler(svc)

	amended := samplePayment()
	amended.Amount = 3500
	svc.On("AmendPayment", mock.Anything, int64(7), mock.MatchedBy(func(req model.PaymentAmendment) bool {
		return req.Amount != nil && *req.Amount == 3500 && req.Actor == "tester"
	})).Return(amended, nil)

	ctx := setupTestContext("PATCH", "/api/v1/payments/7", []byte(`{"amount":3500}`))
	ctx.SetUserValue("id", "7")
	h.AmendPayment(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	svc.AssertExpectations(t)
}

func TestPaymentHandler_RetractPayment(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewPaymentHandler(svc)
		svc.On("RetractPayment", mock.Anything, int64(7), "tester").Return(nil)

		ctx := setupTestContext("DELETE", "/api/v1/payments/7", nil)
		ctx.SetUserValue("id", "7")
		h.RetractPayment(ctx)

		assert.Equal(t, 204, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("already retracted", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewPaymentHandler(svc)
		svc.On("RetractPayment", mock.Anything, int64(7), "tester").
			Return(fmt.Errorf("%w: payment 7", model.ErrNotFound))

		ctx := setupTestContext("DELETE", "/api/v1/payments/7", nil)
		ctx.SetUserValue("id", "7")
		h.RetractPayment(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestPaymentHandler_ListPayments(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewPaymentHandler(svc)

	expenseID := int64(3)
	svc.On("ListPayments", mock.Anything, mock.MatchedBy(func(f model.PaymentFilter) bool {
		return f.ExpenseID != nil && *f.ExpenseID == expenseID && f.Limit == 20 && f.Desc
	})).Return([]*model.Payment{samplePayment()}, int64(1), nil)

	ctx := setupTestContext("GET", "/api/v1/payments?expense_id=3&limit=20&order=desc", nil)
	h.ListPayments(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var resp paymentListResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Items, 1)
	svc.AssertExpectations(t)
}
