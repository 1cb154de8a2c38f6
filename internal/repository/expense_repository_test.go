package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpense(companyID, amount int64) *model.Expense {
	return &model.Expense{
		CompanyID:   companyID,
		Title:       "office rent",
		Amount:      amount,
		ExpenseDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
		CreatedBy:   "tester",
		UpdatedBy:   "tester",
	}
}

func seedCompany(t *testing.T, db *testDB) *model.Company {
	t.Helper()
	repo := NewCompanyRepository(db.DB)
	c, err := repo.Create(context.Background(), &model.Company{
		Name:      "Acme " + time.Now().Format(time.RFC3339Nano),
		Active:    true,
		CreatedBy: "tester",
		UpdatedBy: "tester",
	})
	require.NoError(t, err)
	return c
}

func TestExpenseRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)
	company := seedCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExpense(company.ID, 10000))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(0), created.PaidAmount)
	assert.False(t, created.IsPaid)

	got, err := repo.GetByID(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(10000), got.Amount)
}

func TestExpenseRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)

	_, err := repo.GetByID(context.Background(), 9999, false)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestExpenseRepository_Deactivate_HidesFromActiveLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)
	company := seedCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExpense(company.ID, 5000))
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(ctx, created.ID, "tester"))

	_, err = repo.GetByID(ctx, created.ID, false)
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	// The tombstone is still reachable for audit views.
	got, err := repo.GetByID(ctx, created.ID, true)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "tester", got.UpdatedBy)

	// Repeat deactivation matches no row.
	err = repo.Deactivate(ctx, created.ID, "tester")
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestExpenseRepository_UpdateFields_RefusesDerivedColumns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)
	company := seedCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExpense(company.ID, 5000))
	require.NoError(t, err)

	err = repo.UpdateFields(ctx, created.ID, map[string]interface{}{"paid_amount": int64(100)})
	assert.Error(t, err)

	err = repo.UpdateFields(ctx, created.ID, map[string]interface{}{"is_paid": true})
	assert.Error(t, err)

	err = repo.UpdateFields(ctx, created.ID, map[string]interface{}{"title": "updated", "updated_by": "editor"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)
	assert.Equal(t, "editor", got.UpdatedBy)
}

func TestExpenseRepository_UpdateDerived(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)
	company := seedCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExpense(company.ID, 10000))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateDerived(ctx, created.ID, 10000, true))

	got, err := repo.GetByID(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.PaidAmount)
	assert.True(t, got.IsPaid)
}

func TestExpenseRepository_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)
	company := seedCompany(t, db)
	other := seedCompany(t, db)
	ctx := context.Background()

	e1, err := repo.Create(ctx, newExpense(company.ID, 1000))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newExpense(other.ID, 2000))
	require.NoError(t, err)

	deactivated, err := repo.Create(ctx, newExpense(company.ID, 3000))
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, deactivated.ID, "tester"))

	items, total, err := repo.List(ctx, model.ExpenseFilter{CompanyID: &company.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, e1.ID, items[0].ID)

	_, total, err = repo.List(ctx, model.ExpenseFilter{CompanyID: &company.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	paid := true
	_, total, err = repo.List(ctx, model.ExpenseFilter{IsPaid: &paid})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestExpenseRepository_GetForUpdate_ActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB)
	company := seedCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExpense(company.ID, 5000))
	require.NoError(t, err)

	err = repo.WithinTransaction(ctx, func(ctx context.Context) error {
		got, err := repo.GetForUpdate(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(ctx, created.ID, "tester"))

	err = repo.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.GetForUpdate(ctx, created.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}
