package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(expenseID, amount int64) *model.Payment {
	return &model.Payment{
		ExpenseID:   expenseID,
		PaymentDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:      amount,
		Type:        model.PaymentTypeTransfer,
		Active:      true,
		CreatedBy:   "tester",
		UpdatedBy:   "tester",
	}
}

func seedExpense(t *testing.T, db *testDB, amount int64) *model.Expense {
	t.Helper()
	company := seedCompany(t, db)
	exp, err := NewExpenseRepository(db.DB).Create(context.Background(), newExpense(company.ID, amount))
	require.NoError(t, err)
	return exp
}

func TestPaymentRepository_SumActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db.DB)
	exp := seedExpense(t, db, 10000)
	ctx := context.Background()

	sum, err := repo.SumActive(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)

	p1, err := repo.Create(ctx, newPayment(exp.ID, 4000))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newPayment(exp.ID, 2500))
	require.NoError(t, err)

	sum, err = repo.SumActive(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), sum)

	// Tombstoned payments drop out of the sum.
	require.NoError(t, repo.Deactivate(ctx, p1.ID, "tester"))

	sum, err = repo.SumActive(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), sum)
}

func TestPaymentRepository_GetActive_ExcludesTombstones(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db.DB)
	exp := seedExpense(t, db, 10000)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPayment(exp.ID, 1000))
	require.NoError(t, err)

	got, err := repo.GetActive(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, repo.Deactivate(ctx, created.ID, "tester"))

	_, err = repo.GetActive(ctx, created.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	// GetByID still sees the tombstone.
	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestPaymentRepository_Update_ActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db.DB)
	exp := seedExpense(t, db, 10000)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPayment(exp.ID, 1000))
	require.NoError(t, err)

	created.Amount = 1500
	created.Type = model.PaymentTypeCash
	created.UpdatedBy = "editor"
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetActive(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Amount)
	assert.Equal(t, model.PaymentTypeCash, got.Type)
	assert.Equal(t, "editor", got.UpdatedBy)

	require.NoError(t, repo.Deactivate(ctx, created.ID, "tester"))

	err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentRepository_Deactivate_RepeatFails(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db.DB)
	exp := seedExpense(t, db, 10000)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPayment(exp.ID, 1000))
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(ctx, created.ID, "tester"))

	err = repo.Deactivate(ctx, created.ID, "tester")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db.DB)
	exp := seedExpense(t, db, 10000)
	ctx := context.Background()

	_, err := repo.Create(ctx, newPayment(exp.ID, 1000))
	require.NoError(t, err)

	cash := newPayment(exp.ID, 2000)
	cash.Type = model.PaymentTypeCash
	cash.PaymentDate = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	_, err = repo.Create(ctx, cash)
	require.NoError(t, err)

	retracted, err := repo.Create(ctx, newPayment(exp.ID, 3000))
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, retracted.ID, "tester"))

	items, total, err := repo.List(ctx, model.PaymentFilter{ExpenseID: &exp.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	// Ascending payment_date by default.
	assert.True(t, !items[0].PaymentDate.After(items[1].PaymentDate))

	_, total, err = repo.List(ctx, model.PaymentFilter{ExpenseID: &exp.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	cashType := model.PaymentTypeCash
	items, total, err = repo.List(ctx, model.PaymentFilter{ExpenseID: &exp.ID, Type: &cashType})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2000), items[0].Amount)
}
