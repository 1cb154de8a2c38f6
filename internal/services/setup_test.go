package services

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
	"github.com/rezamoss/expense-ledger/pkg/keylock"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// capturingPublisher records every audit event handed to PublishJSON.
type capturingPublisher struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (p *capturingPublisher) PublishJSON(_ context.Context, data interface{}, _ map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := data.(model.AuditEvent); ok {
		p.events = append(p.events, ev)
	}
	return "0-0", nil
}

func (p *capturingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}

type testEnv struct {
	db        *pg.DB
	companies *repository.CompanyRepository
	expenses  *repository.ExpenseRepository
	payments  *repository.PaymentRepository
	locks     *keylock.KeyLock
	audit     *capturingPublisher
	ledger    *LedgerService
	expense   *ExpenseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	raw, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = raw.AutoMigrate(
		&repository.CompanyEntity{},
		&repository.BranchEntity{},
		&repository.ExpenseEntity{},
		&repository.PaymentEntity{},
	)
	require.NoError(t, err)

	db := &pg.DB{}
	dbValue := reflect.ValueOf(db).Elem()
	for _, field := range []string{"read", "write"} {
		f := dbValue.FieldByName(field)
		f = reflect.NewAt(f.Type(), f.Addr().UnsafePointer()).Elem()
		f.Set(reflect.ValueOf(raw))
	}

	companies := repository.NewCompanyRepository(db)
	expenses := repository.NewExpenseRepository(db)
	payments := repository.NewPaymentRepository(db)

	locks := keylock.New(200 * time.Millisecond)
	audit := &capturingPublisher{}
	reconciler := NewReconciler(payments, expenses)

	return &testEnv{
		db:        db,
		companies: companies,
		expenses:  expenses,
		payments:  payments,
		locks:     locks,
		audit:     audit,
		ledger:    NewLedgerService(expenses, payments, reconciler, locks, audit),
		expense:   NewExpenseService(expenses, companies, reconciler, locks, audit),
	}
}

func (e *testEnv) seedExpense(t *testing.T, amount int64) *model.Expense {
	t.Helper()
	ctx := context.Background()

	company, err := e.companies.Create(ctx, &model.Company{
		Name:      "Globex " + time.Now().Format(time.RFC3339Nano),
		Active:    true,
		CreatedBy: "tester",
		UpdatedBy: "tester",
	})
	require.NoError(t, err)

	exp, err := e.expenses.Create(ctx, &model.Expense{
		CompanyID:   company.ID,
		Title:       "server hosting",
		Amount:      amount,
		ExpenseDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
		CreatedBy:   "tester",
		UpdatedBy:   "tester",
	})
	require.NoError(t, err)
	return exp
}

func paymentRequest(expenseID, amount int64) model.PaymentCreateRequest {
	return model.PaymentCreateRequest{
		ExpenseID:   expenseID,
		Amount:      amount,
		PaymentDate: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		Type:        model.PaymentTypeTransfer,
		Actor:       "tester",
	}
}
