package services

import (
	"context"
	"errors"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type ClientService struct {
	Repo *repositories.ClientRepository
}

func NewClientService(repo *repositories.ClientRepository) *ClientService {
	return &ClientService{Repo: repo}
}

func (s *ClientService) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	if req.Name == "" {
		return nil, billing.Invalid("name", "client name is required")
	}
	if req.Phone == "" && req.Mobile == "" {
		return nil, billing.Invalid("phone", "a phone or mobile number is required")
	}

	client := &models.Client{
		Name:           req.Name,
		Phone:          req.Phone,
		Mobile:         req.Mobile,
		Email:          req.Email,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		GSTIN:          req.GSTIN,
		BillingAddress: req.BillingAddress,
	}
	if err := s.Repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id int) (*models.Client, error) {
	client, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return client, err
}

func (s *ClientService) ListClients(ctx context.Context, search string) ([]*models.Client, error) {
	return s.Repo.List(ctx, search)
}

func (s *ClientService) UpdateClient(ctx context.Context, id int, req *models.CreateClientRequest) (*models.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.Mobile != "" {
		client.Mobile = req.Mobile
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Address != "" {
		client.Address = req.Address
	}
	if req.City != "" {
		client.City = req.City
	}
	if req.State != "" {
		client.State = req.State
	}
	if req.Pincode != "" {
		client.Pincode = req.Pincode
	}
	if req.GSTIN != "" {
		client.GSTIN = req.GSTIN
	}
	if req.BillingAddress != "" {
		client.BillingAddress = req.BillingAddress
	}

	if err := s.Repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient refuses to remove a client that still has billing documents
func (s *ClientService) DeleteClient(ctx context.Context, id int) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}

	count, err := s.Repo.CountDocuments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &billing.ConflictError{Resource: "client has existing invoices or quotations"}
	}

	return s.Repo.Delete(ctx, id)
}
