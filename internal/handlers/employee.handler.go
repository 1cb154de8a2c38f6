package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
)

type EmployeeService interface {
	Create(ctx context.Context, req model.EmployeeCreateRequest) (*model.Employee, error)
	Get(ctx context.Context, id int64) (*model.Employee, error)
	List(ctx context.Context, roleID *int64) ([]*model.Employee, error)
	Deactivate(ctx context.Context, id int64) error
}

type EmployeeHandler struct {
	svc EmployeeService
}

func RegisterEmployeeRoutes(e *router.Group, h *EmployeeHandler) {
	e.POST("/employees", h.CreateEmployee)
	e.GET("/employees", h.ListEmployees)
	e.GET("/employees/{id}", h.GetEmployee)
	e.DELETE("/employees/{id}", h.DeactivateEmployee)
}

func NewEmployeeHandler(svc EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		svc: svc,
	}
}

type employeeRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	RoleID   int64  `json:"role_id"`
}

func (h *EmployeeHandler) CreateEmployee(ctx *xhttp.RequestCtx) {
	var req employeeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	e, err := h.svc.Create(ctx, model.EmployeeCreateRequest{
		FullName: req.FullName,
		Email:    req.Email,
		RoleID:   req.RoleID,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, e)
}

func (h *EmployeeHandler) GetEmployee(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid employee id")
		return
	}

	e, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, e)
}

func (h *EmployeeHandler) ListEmployees(ctx *xhttp.RequestCtx) {
	var roleID *int64
	if v := query(ctx, "role_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			roleID = &id
		}
	}

	items, err := h.svc.List(ctx, roleID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *EmployeeHandler) DeactivateEmployee(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid employee id")
		return
	}

	if err := h.svc.Deactivate(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}
