package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
)

type ExpenseService interface {
	Create(ctx context.Context, req model.ExpenseCreateRequest) (*model.Expense, error)
	Amend(ctx context.Context, id int64, req model.ExpenseAmendment) (*model.Expense, error)
	Deactivate(ctx context.Context, id int64, actor string) error
	Get(ctx context.Context, id int64) (*model.Expense, error)
	List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error)
}

type AuditTrailService interface {
	ListByExpense(ctx context.Context, expenseID int64) ([]*model.AuditEvent, error)
}

type ExpenseHandler struct {
	svc   ExpenseService
	audit AuditTrailService
}

func RegisterExpenseRoutes(e *router.Group, h *ExpenseHandler) {
	e.POST("/expenses", h.CreateExpense)
	e.GET("/expenses", h.ListExpenses)
	e.GET("/expenses/{id}", h.GetExpense)
	e.PATCH("/expenses/{id}", h.AmendExpense)
	e.DELETE("/expenses/{id}", h.DeactivateExpense)
	e.GET("/expenses/{id}/audit", h.GetAuditTrail)
}

func NewExpenseHandler(svc ExpenseService, audit AuditTrailService) *ExpenseHandler {
	return &ExpenseHandler{
		svc:   svc,
		audit: audit,
	}
}

type createExpenseRequest struct {
	CompanyID   int64  `json:"company_id"`
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	Amount      int64  `json:"amount"`
	ExpenseDate string `json:"expense_date"`
}

type amendExpenseRequest struct {
	Title       *string `json:"title"`
	Notes       *string `json:"notes"`
	Amount      *int64  `json:"amount"`
	ExpenseDate *string `json:"expense_date"`
}

type expenseListResponse struct {
	Items []*model.Expense `json:"items"`
	Total int64            `json:"total"`
}

func (h *ExpenseHandler) CreateExpense(ctx *xhttp.RequestCtx) {
	var req createExpenseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	var expenseDate time.Time
	if req.ExpenseDate != "" {
		t, err := parseTime(req.ExpenseDate)
		if err != nil {
			writeError(ctx, 400, "invalid expense_date: "+err.Error())
			return
		}
		expenseDate = t
	}

	exp, err := h.svc.Create(ctx, model.ExpenseCreateRequest{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Notes:       req.Notes,
		Amount:      req.Amount,
		ExpenseDate: expenseDate,
		Actor:       actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, exp)
}

func (h *ExpenseHandler) GetExpense(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	exp, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, exp)
}

func (h *ExpenseHandler) AmendExpense(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	var req amendExpenseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	amendment := model.ExpenseAmendment{
		Title:  req.Title,
		Notes:  req.Notes,
		Amount: req.Amount,
		Actor:  actor(ctx),
	}
	if req.ExpenseDate != nil {
		t, err := parseTime(*req.ExpenseDate)
		if err != nil {
			writeError(ctx, 400, "invalid expense_date: "+err.Error())
			return
		}
		amendment.ExpenseDate = &t
	}

	exp, err := h.svc.Amend(ctx, id, amendment)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, exp)
}

func (h *ExpenseHandler) DeactivateExpense(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	if err := h.svc.Deactivate(ctx, id, actor(ctx)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *ExpenseHandler) ListExpenses(ctx *xhttp.RequestCtx) {
	var f model.ExpenseFilter

	if v := query(ctx, "company_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CompanyID = &id
		}
	}
	if v := query(ctx, "is_paid"); v != "" {
		if b, e := strconv.ParseBool(v); e == nil {
			f.IsPaid = &b
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "include_inactive"); v != "" {
		if b, e := strconv.ParseBool(v); e == nil {
			f.IncludeInactive = b
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, expenseListResponse{Items: items, Total: total})
}

func (h *ExpenseHandler) GetAuditTrail(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	events, err := h.audit.ListByExpense(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": events})
}
