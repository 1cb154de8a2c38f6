package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
)

type RoleService interface {
	Create(ctx context.Context, req model.RoleCreateRequest) (*model.Role, error)
	Get(ctx context.Context, id int64) (*model.Role, error)
	List(ctx context.Context) ([]*model.Role, error)
	Deactivate(ctx context.Context, id int64) error
	GrantPages(ctx context.Context, roleID int64, pageIDs []int64) error
	ListPages(ctx context.Context, roleID int64) ([]*model.Page, error)
}

type RoleHandler struct {
	svc RoleService
}

func RegisterRoleRoutes(e *router.Group, h *RoleHandler) {
	e.POST("/roles", h.CreateRole)
	e.GET("/roles", h.ListRoles)
	e.GET("/roles/{id}", h.GetRole)
	e.DELETE("/roles/{id}", h.DeactivateRole)
	e.PUT("/roles/{id}/pages", h.GrantPages)
	e.GET("/roles/{id}/pages", h.ListRolePages)
}

func NewRoleHandler(svc RoleService) *RoleHandler {
	return &RoleHandler{
		svc: svc,
	}
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type grantPagesRequest struct {
	PageIDs []int64 `json:"page_ids"`
}

func (h *RoleHandler) CreateRole(ctx *xhttp.RequestCtx) {
	var req roleRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	role, err := h.svc.Create(ctx, model.RoleCreateRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, role)
}

func (h *RoleHandler) GetRole(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid role id")
		return
	}

	role, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, role)
}

func (h *RoleHandler) ListRoles(ctx *xhttp.RequestCtx) {
	items, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *RoleHandler) DeactivateRole(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid role id")
		return
	}

	if err := h.svc.Deactivate(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *RoleHandler) GrantPages(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid role id")
		return
	}

	var req grantPagesRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.GrantPages(ctx, id, req.PageIDs); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *RoleHandler) ListRolePages(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid role id")
		return
	}

	items, err := h.svc.ListPages(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}
