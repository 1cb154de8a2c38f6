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

type LedgerService interface {
	RecordPayment(ctx context.Context, req model.PaymentCreateRequest) (*model.Payment, error)
	AmendPayment(ctx context.Context, paymentID int64, req model.PaymentAmendment) (*model.Payment, error)
	RetractPayment(ctx context.Context, paymentID int64, actor string) error
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	ListPayments(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error)
}

type PaymentHandler struct {
	svc LedgerService
}

func RegisterPaymentRoutes(e *router.Group, h *PaymentHandler) {
	e.POST("/payments", h.RecordPayment)
	e.GET("/payments", h.ListPayments)
	e.GET("/payments/{id}", h.GetPayment)
	e.PATCH("/payments/{id}", h.AmendPayment)
	e.DELETE("/payments/{id}", h.RetractPayment)
}

func NewPaymentHandler(svc LedgerService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

type recordPaymentRequest struct {
	ExpenseID   int64  `json:"expense_id"`
	Amount      int64  `json:"amount"`
	PaymentDate string `json:"payment_date"`
	Type        string `json:"payment_type"`
	Notes       string `json:"notes"`
}

type amendPaymentRequest struct {
	Amount      *int64  `json:"amount"`
	PaymentDate *string `json:"payment_date"`
	Type        *string `json:"payment_type"`
	Notes       *string `json:"notes"`
}

type paymentListResponse struct {
	Items []*model.Payment `json:"items"`
	Total int64            `json:"total"`
}

func (h *PaymentHandler) RecordPayment(ctx *xhttp.RequestCtx) {
	var req recordPaymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		t, err := parseTime(req.PaymentDate)
		if err != nil {
			writeError(ctx, 400, "invalid payment_date: "+err.Error())
			return
		}
		paymentDate = t
	}

	p, err := h.svc.RecordPayment(ctx, model.PaymentCreateRequest{
		ExpenseID:   req.ExpenseID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Type:        model.PaymentType(req.Type),
		Notes:       req.Notes,
		Actor:       actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, p)
}

func (h *PaymentHandler) GetPayment(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid payment id")
		return
	}

	p, err := h.svc.GetPayment(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *PaymentHandler) AmendPayment(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid payment id")
		return
	}

	var req amendPaymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	amendment := model.PaymentAmendment{
		Amount: req.Amount,
		Notes:  req.Notes,
		Actor:  actor(ctx),
	}
	if req.PaymentDate != nil {
		t, err := parseTime(*req.PaymentDate)
		if err != nil {
			writeError(ctx, 400, "invalid payment_date: "+err.Error())
			return
		}
		amendment.PaymentDate = &t
	}
	if req.Type != nil {
		pt := model.PaymentType(*req.Type)
		amendment.Type = &pt
	}

	p, err := h.svc.AmendPayment(ctx, id, amendment)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *PaymentHandler) RetractPayment(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid payment id")
		return
	}

	if err := h.svc.RetractPayment(ctx, id, actor(ctx)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *PaymentHandler) ListPayments(ctx *xhttp.RequestCtx) {
	var f model.PaymentFilter

	if v := query(ctx, "expense_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.ExpenseID = &id
		}
	}
	if v := query(ctx, "payment_type"); v != "" {
		pt := model.PaymentType(v)
		f.Type = &pt
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

	items, total, err := h.svc.ListPayments(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, paymentListResponse{Items: items, Total: total})
}
