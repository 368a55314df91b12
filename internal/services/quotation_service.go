package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"garage-backend/internal/billing"
	"garage-backend/internal/metrics"
	"garage-backend/internal/models"
	"garage-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// QuotationStore is the persistence surface the quotation service needs.
type QuotationStore interface {
	Create(ctx context.Context, quotation *models.Quotation, items []models.LineItem) error
	Update(ctx context.Context, quotation *models.Quotation, items []models.LineItem) error
	Get(ctx context.Context, id int) (*models.QuotationDetail, error)
	List(ctx context.Context, status models.QuotationStatus, clientID int) ([]*models.QuotationDetail, error)
	UpdateStatus(ctx context.Context, id int, target models.QuotationStatus) (*models.Quotation, error)
	ConvertToInvoice(ctx context.Context, id int, createdBy int) (*models.Invoice, error)
	ListNumbersByBase(ctx context.Context, base string) ([]string, error)
	ListRevisions(ctx context.Context, base string) ([]*models.QuotationVersion, error)
	ExpireOverdue(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (*models.QuotationStats, error)
}

type QuotationService struct {
	store        QuotationStore
	validityDays int
}

func NewQuotationService(store QuotationStore, validityDays int) *QuotationService {
	if validityDays <= 0 {
		validityDays = 15
	}
	return &QuotationService{store: store, validityDays: validityDays}
}

func (s *QuotationService) CreateQuotation(ctx context.Context, req *models.CreateQuotationRequest, userID int) (*models.QuotationDetail, error) {
	quotation, items, err := s.buildQuotation(req, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, quotation, items); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	metrics.QuotationsCreatedTotal.Inc()
	return s.GetQuotation(ctx, quotation.ID)
}

func (s *QuotationService) buildQuotation(req *models.CreateQuotationRequest, userID int) (*models.Quotation, []models.LineItem, error) {
	if req.ClientID <= 0 || req.VehicleID <= 0 {
		return nil, nil, billing.Invalid("client_id", "client_id and vehicle_id are required")
	}

	taxMode := req.TaxMode
	if taxMode == "" {
		taxMode = models.TaxIntraState
	}

	items, rates, totals, err := buildDocumentAmounts(req.Items, taxMode,
		req.CGSTRate, req.SGSTRate, req.IGSTRate, req.Discount, req.RoundOff, req.AutoRound, req.TotalAmount)
	if err != nil {
		return nil, nil, err
	}

	quotationDate, err := parseDocDate(req.QuotationDate)
	if err != nil {
		return nil, nil, err
	}
	validUntil, err := parseOptionalDate(req.ValidUntil)
	if err != nil {
		return nil, nil, err
	}
	if validUntil == nil {
		v := quotationDate.AddDate(0, 0, s.validityDays)
		validUntil = &v
	}

	quotation := &models.Quotation{
		ClientID:       req.ClientID,
		VehicleID:      req.VehicleID,
		QuotationDate:  quotationDate,
		ValidUntil:     validUntil,
		TaxMode:        taxMode,
		CGSTRate:       rates.CGST,
		SGSTRate:       rates.SGST,
		IGSTRate:       rates.IGST,
		Subtotal:       totals.Subtotal,
		CGSTAmount:     totals.CGST,
		SGSTAmount:     totals.SGST,
		IGSTAmount:     totals.IGST,
		DiscountAmount: totals.Discount,
		RoundOff:       totals.RoundOff,
		TotalAmount:    totals.Total,
		Status:         models.QuotationPending,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	return quotation, items, nil
}

func (s *QuotationService) GetQuotation(ctx context.Context, id int) (*models.QuotationDetail, error) {
	detail, err := s.store.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return detail, err
}

func (s *QuotationService) ListQuotations(ctx context.Context, status models.QuotationStatus, clientID int) ([]*models.QuotationDetail, error) {
	switch status {
	case "", models.QuotationPending, models.QuotationAccepted, models.QuotationRejected,
		models.QuotationExpired, models.QuotationConverted:
	default:
		return nil, billing.Invalid("status", "unknown quotation status %q", status)
	}
	return s.store.List(ctx, status, clientID)
}

// UpdateQuotation replaces a pending quotation's content. Non-pending
// quotations are immutable; revise them instead.
func (s *QuotationService) UpdateQuotation(ctx context.Context, id int, req *models.CreateQuotationRequest) (*models.QuotationDetail, error) {
	existing, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.QuotationPending {
		return nil, &billing.InvalidTransitionError{Current: string(existing.Status), Attempted: "edit"}
	}

	if req.ClientID == 0 {
		req.ClientID = existing.ClientID
	}
	if req.VehicleID == 0 {
		req.VehicleID = existing.VehicleID
	}
	quotation, items, err := s.buildQuotation(req, existing.CreatedBy)
	if err != nil {
		return nil, err
	}
	quotation.ID = id
	quotation.QuotationNumber = existing.QuotationNumber
	if req.QuotationDate == "" {
		quotation.QuotationDate = existing.QuotationDate
	}
	if req.ValidUntil == "" {
		quotation.ValidUntil = existing.ValidUntil
	}
	if req.Notes == "" {
		quotation.Notes = existing.Notes
	}

	if err := s.store.Update(ctx, quotation, items); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update quotation: %w", err)
	}

	return s.GetQuotation(ctx, id)
}

// Accept, Reject and Expire transition the quotation lifecycle. Invalid
// transitions surface as InvalidTransitionError.
func (s *QuotationService) Accept(ctx context.Context, id int) (*models.Quotation, error) {
	return s.transition(ctx, id, models.QuotationAccepted)
}

func (s *QuotationService) Reject(ctx context.Context, id int) (*models.Quotation, error) {
	return s.transition(ctx, id, models.QuotationRejected)
}

func (s *QuotationService) Expire(ctx context.Context, id int) (*models.Quotation, error) {
	return s.transition(ctx, id, models.QuotationExpired)
}

func (s *QuotationService) transition(ctx context.Context, id int, target models.QuotationStatus) (*models.Quotation, error) {
	q, err := s.store.UpdateStatus(ctx, id, target)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return q, err
}

// Convert materializes an accepted quotation into a real invoice with its own
// number, access code and pending payment state.
func (s *QuotationService) Convert(ctx context.Context, id int, userID int) (*models.Invoice, error) {
	invoice, err := s.store.ConvertToInvoice(ctx, id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	if err == nil {
		metrics.InvoicesCreatedTotal.Inc()
	}
	return invoice, err
}

// CreateRevision copies a quotation into a new pending document numbered
// base-v<N>, where N is one above the highest existing revision of the base.
func (s *QuotationService) CreateRevision(ctx context.Context, id int, userID int) (*models.QuotationDetail, error) {
	source, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}

	base := billing.BaseNumber(source.QuotationNumber)
	existing, err := s.store.ListNumbersByBase(ctx, base)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	validUntil := now.AddDate(0, 0, s.validityDays)

	revision := source.Quotation
	revision.ID = 0
	revision.QuotationNumber = billing.NextVersionNumber(base, existing)
	revision.QuotationDate = now
	revision.ValidUntil = &validUntil
	revision.Status = models.QuotationPending
	revision.CreatedBy = userID

	items := make([]models.LineItem, len(source.Items))
	copy(items, source.Items)
	for i := range items {
		items[i].ID = 0
	}

	if err := s.store.Create(ctx, &revision, items); err != nil {
		return nil, fmt.Errorf("failed to create revision: %w", err)
	}

	metrics.QuotationsCreatedTotal.Inc()
	return s.GetQuotation(ctx, revision.ID)
}

// ListRevisions returns the revision group of a quotation, original first
func (s *QuotationService) ListRevisions(ctx context.Context, id int) ([]*models.QuotationVersion, error) {
	source, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.ListRevisions(ctx, billing.BaseNumber(source.QuotationNumber))
}

func (s *QuotationService) DeleteQuotation(ctx context.Context, id int) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.ErrNotFound
	}
	return err
}

// ExpireOverdue sweeps pending quotations past their validity date. Called
// from the background ticker and idempotent across runs.
func (s *QuotationService) ExpireOverdue(ctx context.Context) (int64, error) {
	swept, err := s.store.ExpireOverdue(ctx)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		metrics.QuotationsExpiredTotal.Add(float64(swept))
		log.Printf("[Quotations] Expired %d overdue quotation(s)", swept)
	}
	return swept, nil
}

// Stats returns the quotation analytics; the sweep runs first so the numbers
// reflect expiry state rather than mutating it lazily per read.
func (s *QuotationService) Stats(ctx context.Context) (*models.QuotationStats, error) {
	swept, err := s.ExpireOverdue(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.AutoExpired = swept
	return stats, nil
}
