package services

import (
	"context"
	"errors"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type CatalogService struct {
	Repo *repositories.CatalogRepository
}

func NewCatalogService(repo *repositories.CatalogRepository) *CatalogService {
	return &CatalogService{Repo: repo}
}

func (s *CatalogService) CreateService(ctx context.Context, svc *models.CatalogService) error {
	if svc.Name == "" {
		return billing.Invalid("name", "service name is required")
	}
	if svc.BasePrice.IsNegative() {
		return billing.Invalid("base_price", "base price cannot be negative")
	}
	if svc.SACCode == "" {
		svc.SACCode = "9986"
	}
	return s.Repo.CreateService(ctx, svc)
}

func (s *CatalogService) GetService(ctx context.Context, id int) (*models.CatalogService, error) {
	svc, err := s.Repo.GetService(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return svc, err
}

func (s *CatalogService) ListServices(ctx context.Context, search string) ([]*models.CatalogService, error) {
	return s.Repo.ListServices(ctx, search)
}

func (s *CatalogService) UpdateService(ctx context.Context, svc *models.CatalogService) error {
	if _, err := s.GetService(ctx, svc.ID); err != nil {
		return err
	}
	return s.Repo.UpdateService(ctx, svc)
}

func (s *CatalogService) DeleteService(ctx context.Context, id int) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	return s.Repo.DeleteService(ctx, id)
}

func (s *CatalogService) CreatePart(ctx context.Context, part *models.CatalogPart) error {
	if part.Name == "" {
		return billing.Invalid("name", "part name is required")
	}
	if part.UnitPrice.IsNegative() {
		return billing.Invalid("unit_price", "unit price cannot be negative")
	}
	if part.StockQty < 0 {
		return billing.Invalid("stock_quantity", "stock quantity cannot be negative")
	}
	if part.HSNCode == "" {
		part.HSNCode = "8708"
	}
	return s.Repo.CreatePart(ctx, part)
}

func (s *CatalogService) GetPart(ctx context.Context, id int) (*models.CatalogPart, error) {
	part, err := s.Repo.GetPart(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return part, err
}

func (s *CatalogService) ListParts(ctx context.Context, search string) ([]*models.CatalogPart, error) {
	return s.Repo.ListParts(ctx, search)
}

func (s *CatalogService) UpdatePart(ctx context.Context, part *models.CatalogPart) error {
	if _, err := s.GetPart(ctx, part.ID); err != nil {
		return err
	}
	if part.StockQty < 0 {
		return billing.Invalid("stock_quantity", "stock quantity cannot be negative")
	}
	return s.Repo.UpdatePart(ctx, part)
}

func (s *CatalogService) DeletePart(ctx context.Context, id int) error {
	if _, err := s.GetPart(ctx, id); err != nil {
		return err
	}
	return s.Repo.DeletePart(ctx, id)
}
