package services

import (
	"context"
	"errors"
	"strings"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type VehicleService struct {
	Repo    *repositories.VehicleRepository
	Clients *repositories.ClientRepository
}

func NewVehicleService(repo *repositories.VehicleRepository, clients *repositories.ClientRepository) *VehicleService {
	return &VehicleService{Repo: repo, Clients: clients}
}

func (s *VehicleService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if req.RegistrationNumber == "" {
		return nil, billing.Invalid("registration_number", "registration number is required")
	}
	if req.ClientID <= 0 {
		return nil, billing.Invalid("client_id", "client_id is required")
	}

	if _, err := s.Clients.Get(ctx, req.ClientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, err
	}

	registration := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	if existing, err := s.Repo.GetByRegistration(ctx, registration); err == nil && existing.ID != 0 {
		return nil, &billing.ConflictError{Resource: "vehicle with this registration number"}
	}

	vehicle := &models.Vehicle{
		ClientID:           req.ClientID,
		RegistrationNumber: registration,
		Brand:              req.Brand,
		Model:              req.Model,
		Year:               req.Year,
		Color:              req.Color,
		FuelType:           req.FuelType,
		VINNumber:          req.VINNumber,
		EngineNumber:       req.EngineNumber,
		Notes:              req.Notes,
	}
	if err := s.Repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	vehicle, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return vehicle, err
}

func (s *VehicleService) ListVehicles(ctx context.Context, clientID int) ([]*models.Vehicle, error) {
	if clientID > 0 {
		return s.Repo.ListByClient(ctx, clientID)
	}
	return s.Repo.List(ctx)
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, id int, v *models.Vehicle) (*models.Vehicle, error) {
	existing, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if v.RegistrationNumber != "" {
		existing.RegistrationNumber = strings.ToUpper(strings.TrimSpace(v.RegistrationNumber))
	}
	if v.Brand != "" {
		existing.Brand = v.Brand
	}
	if v.Model != "" {
		existing.Model = v.Model
	}
	if v.Year != 0 {
		existing.Year = v.Year
	}
	if v.Color != "" {
		existing.Color = v.Color
	}
	if v.FuelType != "" {
		existing.FuelType = v.FuelType
	}
	if v.VINNumber != "" {
		existing.VINNumber = v.VINNumber
	}
	if v.EngineNumber != "" {
		existing.EngineNumber = v.EngineNumber
	}
	if v.KMReadingIn != 0 {
		existing.KMReadingIn = v.KMReadingIn
	}
	if v.KMReadingOut != 0 {
		existing.KMReadingOut = v.KMReadingOut
	}
	if v.InsuranceExpiry != nil {
		existing.InsuranceExpiry = v.InsuranceExpiry
	}
	if v.Notes != "" {
		existing.Notes = v.Notes
	}

	if err := s.Repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, id int) error {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
