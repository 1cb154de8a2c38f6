package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/rezamoss/expense-ledger/internal/config"
	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
	"github.com/rezamoss/expense-ledger/pkg/logger"
	"github.com/rezamoss/expense-ledger/pkg/pg"
)

// Seeds reference data (companies, roles, pages, employees) from a JSON
// file. Safe to run repeatedly; rows that already exist are skipped.

type seedFile struct {
	Companies []struct {
		Name    string `json:"name"`
		TaxCode string `json:"tax_code"`
	} `json:"companies"`
	Roles []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Pages       []string `json:"pages"`
	} `json:"roles"`
	Pages []struct {
		Title     string `json:"title"`
		Path      string `json:"path"`
		Icon      string `json:"icon"`
		SortOrder int    `json:"sort_order"`
	} `json:"pages"`
	Employees []struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"employees"`
}

func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	db, err := pg.CreateReadWrite(pgConf, pgConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	raw, err := os.ReadFile(config.Get().SeedFile)
	if err != nil {
		logger.Error("failed to read seed file", "path", config.Get().SeedFile, "error", err)
		return
	}

	var seeds seedFile
	if err := json.Unmarshal(raw, &seeds); err != nil {
		logger.Error("failed to parse seed file", "error", err)
		return
	}

	ctx := context.Background()
	companyRepo := repository.NewCompanyRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	pageRepo := repository.NewPageRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	for _, c := range seeds.Companies {
		_, err := companyRepo.GetByName(ctx, c.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrCompanyNotFound) {
			logger.Error("seed: company lookup failed", "name", c.Name, "error", err)
			return
		}
		if _, err := companyRepo.Create(ctx, &model.Company{
			Name:      c.Name,
			TaxCode:   c.TaxCode,
			Active:    true,
			CreatedBy: "seed",
			UpdatedBy: "seed",
		}); err != nil {
			logger.Error("seed: create company failed", "name", c.Name, "error", err)
			return
		}
		logger.Info("seed: company created", "name", c.Name)
	}

	pagesByPath := map[string]*model.Page{}
	for _, p := range seeds.Pages {
		existing, err := pageRepo.GetByPath(ctx, p.Path)
		if err == nil {
			pagesByPath[p.Path] = existing
			continue
		}
		if !errors.Is(err, repository.ErrPageNotFound) {
			logger.Error("seed: page lookup failed", "path", p.Path, "error", err)
			return
		}
		created, err := pageRepo.Create(ctx, &model.Page{
			Title:     p.Title,
			Path:      p.Path,
			Icon:      p.Icon,
			SortOrder: p.SortOrder,
			Active:    true,
		})
		if err != nil {
			logger.Error("seed: create page failed", "path", p.Path, "error", err)
			return
		}
		pagesByPath[p.Path] = created
		logger.Info("seed: page created", "path", p.Path)
	}

	rolesByName := map[string]*model.Role{}
	for _, r := range seeds.Roles {
		role, err := roleRepo.GetByName(ctx, r.Name)
		if errors.Is(err, repository.ErrRoleNotFound) {
			role, err = roleRepo.Create(ctx, &model.Role{
				Name:        r.Name,
				Description: r.Description,
				Active:      true,
			})
			if err == nil {
				logger.Info("seed: role created", "name", r.Name)
			}
		}
		if err != nil {
			logger.Error("seed: role failed", "name", r.Name, "error", err)
			return
		}
		rolesByName[r.Name] = role

		var pageIDs []int64
		for _, path := range r.Pages {
			page, ok := pagesByPath[path]
			if !ok {
				logger.Warn("seed: role references unknown page", "role", r.Name, "path", path)
				continue
			}
			pageIDs = append(pageIDs, page.ID)
		}
		if len(pageIDs) > 0 {
			if err := roleRepo.GrantPages(ctx, role.ID, pageIDs); err != nil {
				logger.Error("seed: grant pages failed", "role", r.Name, "error", err)
				return
			}
		}
	}

	for _, e := range seeds.Employees {
		if _, err := employeeRepo.GetByEmail(ctx, e.Email); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrEmployeeNotFound) {
			logger.Error("seed: employee lookup failed", "email", e.Email, "error", err)
			return
		}
		role, ok := rolesByName[e.Role]
		if !ok {
			logger.Warn("seed: employee references unknown role", "email", e.Email, "role", e.Role)
			continue
		}
		if _, err := employeeRepo.Create(ctx, &model.Employee{
			FullName: e.FullName,
			Email:    e.Email,
			RoleID:   role.ID,
			Active:   true,
		}); err != nil {
			logger.Error("seed: create employee failed", "email", e.Email, "error", err)
			return
		}
		logger.Info("seed: employee created", "email", e.Email)
	}

	logger.Info("seed complete")
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}
