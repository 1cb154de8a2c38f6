package services

import (
	"context"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company, err := env.companies.Create(ctx, &model.Company{
		Name: "Initech", Active: true, CreatedBy: "tester", UpdatedBy: "tester",
	})
	require.NoError(t, err)

	created, err := env.expense.Create(ctx, model.ExpenseCreateRequest{
		CompanyID:   company.ID,
		Title:       "annual license",
		Amount:      25000,
		ExpenseDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Actor:       "tester",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(0), created.PaidAmount)
	assert.False(t, created.IsPaid)

	assert.Equal(t, []string{model.AuditExpenseCreated}, env.audit.actions())
}

func TestExpenseService_Create_UnknownCompany(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.expense.Create(context.Background(), model.ExpenseCreateRequest{
		CompanyID:   777,
		Title:       "annual license",
		Amount:      25000,
		ExpenseDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Actor:       "tester",
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestExpenseService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.expense.Create(context.Background(), model.ExpenseCreateRequest{
		CompanyID:   1,
		Title:       "",
		Amount:      100,
		ExpenseDate: time.Now(),
		Actor:       "tester",
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = env.expense.Create(context.Background(), model.ExpenseCreateRequest{
		CompanyID:   1,
		Title:       "x",
		Amount:      -5,
		ExpenseDate: time.Now(),
		Actor:       "tester",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestExpenseService_Amend_ShrinkGuard(t *testing.T) {
	env := newTestEnv(t)
	exp := env.seedExpense(t, 10000)
	ctx := context.Background()

	_, err := env.ledger.RecordPayment(ctx, paymentRequest(exp.ID, 6000))
	require.NoError(t, err)

	// Shrinking below the recorded paid amount is refused.
	below := int64(5999)
	_, err = env.expense.Amend(ctx, exp.ID, model.ExpenseAmendment{Amount: &below, Actor: "tester"})
	assert.ErrorIs(t, err, model.ErrOverpayment)

	// Shrinking to exactly the paid amount settles the expense.
	exact := int64(6000)
	amended, err := env.expense.Amend(ctx, exp.ID, model.ExpenseAmendment{Amount: &exact, Actor: "tester"})
	require.NoError(t, err)
	assert.True(t, amended.IsPaid)
	assert.Equal(t, int64(6000), amended.PaidAmount)

	// Growing the amount unsettles it again.
	bigger := int64(9000)
	amended, err = env.expense.Amend(ctx, exp.ID, model.ExpenseAmendment{Amount: &bigger, Actor: "tester"})
	require.NoError(t, err)
	assert.False(t, amended.IsPaid)
}

func TestExpenseService_Amend_NoChanges(t *testing.T) {
	env := newTestEnv(t)
	exp := env.seedExpense(t, 10000)

	_, err := env.expense.Amend(context.Background(), exp.ID, model.ExpenseAmendment{Actor: "tester"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestExpenseService_Amend_TitleOnly(t *testing.T) {
	env := newTestEnv(t)
	exp := env.seedExpense(t, 10000)
	ctx := context.Background()

	title := "renamed"
	amended, err := env.expense.Amend(ctx, exp.ID, model.ExpenseAmendment{Title: &title, Actor: "editor"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", amended.Title)
	assert.Equal(t, "editor", amended.UpdatedBy)

	got, err := env.expenses.GetByID(ctx, exp.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
}

func TestExpenseService_Deactivate(t *testing.T) {
	env := newTestEnv(t)
	exp := env.seedExpense(t, 10000)
	ctx := context.Background()

	require.NoError(t, env.expense.Deactivate(ctx, exp.ID, "tester"))

	_, err := env.expense.Get(ctx, exp.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Tombstoned expenses reject further ledger writes.
	_, err = env.ledger.RecordPayment(ctx, paymentRequest(exp.ID, 100))
	assert.ErrorIs(t, err, model.ErrNotFound)

	// And a second deactivation has nothing to match.
	err = env.expense.Deactivate(ctx, exp.ID, "tester")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestExpenseService_List(t *testing.T) {
	env := newTestEnv(t)
	exp := env.seedExpense(t, 10000)
	env.seedExpense(t, 20000)
	ctx := context.Background()

	items, total, err := env.expense.List(ctx, model.ExpenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	items, total, err = env.expense.List(ctx, model.ExpenseFilter{CompanyID: &exp.CompanyID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, exp.ID, items[0].ID)
}
