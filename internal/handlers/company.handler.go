package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
)

type CompanyService interface {
	Create(ctx context.Context, req model.CompanyCreateRequest) (*model.Company, error)
	Get(ctx context.Context, id int64) (*model.Company, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Company, error)
	Update(ctx context.Context, id int64, name, taxCode, actor string) (*model.Company, error)
	Deactivate(ctx context.Context, id int64, actor string) error
	CreateBranch(ctx context.Context, req model.BranchCreateRequest) (*model.Branch, error)
	ListBranches(ctx context.Context, companyID int64) ([]*model.Branch, error)
	DeactivateBranch(ctx context.Context, id int64, actor string) error
}

type CompanyHandler struct {
	svc CompanyService
}

func RegisterCompanyRoutes(e *router.Group, h *CompanyHandler) {
	e.POST("/companies", h.CreateCompany)
	e.GET("/companies", h.ListCompanies)
	e.GET("/companies/{id}", h.GetCompany)
	e.PATCH("/companies/{id}", h.UpdateCompany)
	e.DELETE("/companies/{id}", h.DeactivateCompany)
	e.POST("/companies/{id}/branches", h.CreateBranch)
	e.GET("/companies/{id}/branches", h.ListBranches)
	e.DELETE("/branches/{id}", h.DeactivateBranch)
}

func NewCompanyHandler(svc CompanyService) *CompanyHandler {
	return &CompanyHandler{
		svc: svc,
	}
}

type companyRequest struct {
	Name    string `json:"name"`
	TaxCode string `json:"tax_code"`
}

type branchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *CompanyHandler) CreateCompany(ctx *xhttp.RequestCtx) {
	var req companyRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.Create(ctx, model.CompanyCreateRequest{
		Name:    req.Name,
		TaxCode: req.TaxCode,
		Actor:   actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, c)
}

func (h *CompanyHandler) GetCompany(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	c, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, c)
}

func (h *CompanyHandler) ListCompanies(ctx *xhttp.RequestCtx) {
	includeInactive := false
	if v := query(ctx, "include_inactive"); v != "" {
		if b, e := strconv.ParseBool(v); e == nil {
			includeInactive = b
		}
	}

	items, err := h.svc.List(ctx, includeInactive)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *CompanyHandler) UpdateCompany(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	var req companyRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.Update(ctx, id, req.Name, req.TaxCode, actor(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, c)
}

func (h *CompanyHandler) DeactivateCompany(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	if err := h.svc.Deactivate(ctx, id, actor(ctx)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *CompanyHandler) CreateBranch(ctx *xhttp.RequestCtx) {
	companyID, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	var req branchRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	b, err := h.svc.CreateBranch(ctx, model.BranchCreateRequest{
		CompanyID: companyID,
		Name:      req.Name,
		Address:   req.Address,
		Actor:     actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, b)
}

func (h *CompanyHandler) ListBranches(ctx *xhttp.RequestCtx) {
	companyID, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	items, err := h.svc.ListBranches(ctx, companyID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *CompanyHandler) DeactivateBranch(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid branch id")
		return
	}

	if err := h.svc.DeactivateBranch(ctx, id, actor(ctx)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}
