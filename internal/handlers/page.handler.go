package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
)

type PageService interface {
	Create(ctx context.Context, req model.PageCreateRequest) (*model.Page, error)
	Get(ctx context.Context, id int64) (*model.Page, error)
	List(ctx context.Context) ([]*model.Page, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Page, error)
	Deactivate(ctx context.Context, id int64) error
}

type PageHandler struct {
	svc PageService
}

func RegisterPageRoutes(e *router.Group, h *PageHandler) {
	e.POST("/pages", h.CreatePage)
	e.GET("/pages", h.ListPages)
	e.GET("/pages/{id}", h.GetPage)
	e.PATCH("/pages/{id}", h.UpdatePage)
	e.DELETE("/pages/{id}", h.DeactivatePage)
}

func NewPageHandler(svc PageService) *PageHandler {
	return &PageHandler{
		svc: svc,
	}
}

type pageRequest struct {
	Title     *string `json:"title"`
	Path      *string `json:"path"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sort_order"`
	ParentID  *int64  `json:"parent_id"`
}

func (h *PageHandler) CreatePage(ctx *xhttp.RequestCtx) {
	var req pageRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	create := model.PageCreateRequest{ParentID: req.ParentID}
	if req.Title != nil {
		create.Title = *req.Title
	}
	if req.Path != nil {
		create.Path = *req.Path
	}
	if req.Icon != nil {
		create.Icon = *req.Icon
	}
	if req.SortOrder != nil {
		create.SortOrder = *req.SortOrder
	}

	p, err := h.svc.Create(ctx, create)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, p)
}

func (h *PageHandler) GetPage(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid page id")
		return
	}

	p, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *PageHandler) ListPages(ctx *xhttp.RequestCtx) {
	items, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *PageHandler) UpdatePage(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid page id")
		return
	}

	var req pageRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Path != nil {
		fields["path"] = *req.Path
	}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if req.ParentID != nil {
		fields["parent_id"] = *req.ParentID
	}

	p, err := h.svc.Update(ctx, id, fields)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *PageHandler) DeactivatePage(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid page id")
		return
	}

	if err := h.svc.Deactivate(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}
