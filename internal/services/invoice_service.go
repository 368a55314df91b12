package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garage-backend/internal/auth"
	"garage-backend/internal/billing"
	"garage-backend/internal/metrics"
	"garage-backend/internal/models"
	"garage-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InvoiceStore is the persistence surface the invoice service needs.
type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error
	Update(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error
	Get(ctx context.Context, id int) (*models.InvoiceDetail, error)
	GetByAccessCode(ctx context.Context, accessCode string) (*models.InvoiceDetail, error)
	List(ctx context.Context, status models.PaymentStatus, clientID int) ([]*models.InvoiceDetail, error)
	Delete(ctx context.Context, id int) error
	AddPayment(ctx context.Context, payment *models.Payment) (*models.Invoice, error)
	ForcePaymentStatus(ctx context.Context, id int, target models.PaymentStatus) (*models.Invoice, error)
	ListPayments(ctx context.Context, invoiceID int) ([]*models.Payment, error)
	SumPaidAmount(ctx context.Context, invoiceID int) (decimal.Decimal, error)
}

// UserStore is the slice of the user repository the invoice service needs for
// the delete confirmation check.
type UserStore interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

type InvoiceService struct {
	store InvoiceStore
	users UserStore
}

func NewInvoiceService(store InvoiceStore, users UserStore) *InvoiceService {
	return &InvoiceService{store: store, users: users}
}

// PaymentHistory is the payment ledger with its recomputed total.
type PaymentHistory struct {
	Payments    []*models.Payment `json:"payments"`
	LedgerTotal decimal.Decimal   `json:"ledger_total"`
}

// buildDocumentAmounts validates items, recomputes totals server-side and
// checks the client-supplied display total. Shared with quotations.
func buildDocumentAmounts(items []models.LineItemRequest, taxMode models.TaxMode,
	cgst, sgst, igst *decimal.Decimal, discount, roundOff decimal.Decimal,
	autoRound bool, clientTotal *decimal.Decimal) ([]models.LineItem, billing.TaxRates, billing.Totals, error) {

	built, err := billing.BuildLineItems(items)
	if err != nil {
		return nil, billing.TaxRates{}, billing.Totals{}, err
	}

	rates := billing.DefaultTaxRates()
	if cgst != nil {
		rates.CGST = *cgst
	}
	if sgst != nil {
		rates.SGST = *sgst
	}
	if igst != nil {
		rates.IGST = *igst
	}

	totals, err := billing.ComputeTotals(built, taxMode, rates, discount, roundOff, autoRound)
	if err != nil {
		return nil, billing.TaxRates{}, billing.Totals{}, err
	}

	if err := billing.CheckClientTotal(clientTotal, totals.Total); err != nil {
		return nil, billing.TaxRates{}, billing.Totals{}, err
	}

	return built, rates, totals, nil
}

// parseDocDate parses a yyyy-mm-dd payload date in IST, defaulting to today
func parseDocDate(value string) (time.Time, error) {
	if value == "" {
		return timeutil.Now(), nil
	}
	t, err := timeutil.ParseInIST(timeutil.DateLayout, value)
	if err != nil {
		return time.Time{}, billing.Invalid("date", "invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := timeutil.ParseInIST(timeutil.DateLayout, value)
	if err != nil {
		return nil, billing.Invalid("date", "invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest, userID int) (*models.InvoiceDetail, error) {
	if req.ClientID <= 0 || req.VehicleID <= 0 {
		return nil, billing.Invalid("client_id", "client_id and vehicle_id are required")
	}

	taxMode := req.TaxMode
	if taxMode == "" {
		taxMode = models.TaxIntraState
	}

	items, rates, totals, err := buildDocumentAmounts(req.Items, taxMode,
		req.CGSTRate, req.SGSTRate, req.IGSTRate, req.Discount, req.RoundOff, req.AutoRound, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	invoiceDate, err := parseDocDate(req.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		ClientID:       req.ClientID,
		VehicleID:      req.VehicleID,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
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
		PaidAmount:     decimal.Zero,
		PaymentStatus:  models.PaymentPending,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}

	if err := s.store.Create(ctx, invoice, items); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	metrics.InvoicesCreatedTotal.Inc()
	return s.GetInvoice(ctx, invoice.ID)
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id int) (*models.InvoiceDetail, error) {
	detail, err := s.store.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return detail, err
}

func (s *InvoiceService) ListInvoices(ctx context.Context, status models.PaymentStatus, clientID int) ([]*models.InvoiceDetail, error) {
	if status != "" && status != models.PaymentPending && status != models.PaymentPartiallyPaid && status != models.PaymentPaid {
		return nil, billing.Invalid("status", "unknown payment status %q", status)
	}
	return s.store.List(ctx, status, clientID)
}

// UpdateInvoice replaces the invoice content and recomputes all amounts.
// Recorded payments survive and the payment status is re-derived against the
// new total.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id int, req *models.CreateInvoiceRequest) (*models.InvoiceDetail, error) {
	existing, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	taxMode := req.TaxMode
	if taxMode == "" {
		taxMode = existing.TaxMode
	}

	items, rates, totals, err := buildDocumentAmounts(req.Items, taxMode,
		req.CGSTRate, req.SGSTRate, req.IGSTRate, req.Discount, req.RoundOff, req.AutoRound, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	invoiceDate := existing.InvoiceDate
	if req.InvoiceDate != "" {
		if invoiceDate, err = parseDocDate(req.InvoiceDate); err != nil {
			return nil, err
		}
	}
	dueDate := existing.DueDate
	if req.DueDate != "" {
		if dueDate, err = parseOptionalDate(req.DueDate); err != nil {
			return nil, err
		}
	}

	clientID := req.ClientID
	if clientID == 0 {
		clientID = existing.ClientID
	}
	vehicleID := req.VehicleID
	if vehicleID == 0 {
		vehicleID = existing.VehicleID
	}

	invoice := existing.Invoice
	invoice.ClientID = clientID
	invoice.VehicleID = vehicleID
	invoice.InvoiceDate = invoiceDate
	invoice.DueDate = dueDate
	invoice.TaxMode = taxMode
	invoice.CGSTRate = rates.CGST
	invoice.SGSTRate = rates.SGST
	invoice.IGSTRate = rates.IGST
	invoice.Subtotal = totals.Subtotal
	invoice.CGSTAmount = totals.CGST
	invoice.SGSTAmount = totals.SGST
	invoice.IGSTAmount = totals.IGST
	invoice.DiscountAmount = totals.Discount
	invoice.RoundOff = totals.RoundOff
	invoice.TotalAmount = totals.Total
	invoice.Notes = req.Notes

	if err := s.store.Update(ctx, &invoice, items); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	return s.GetInvoice(ctx, id)
}

// DeleteInvoice removes an invoice after re-verifying the caller's password
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id, userID int, password string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return billing.Invalid("password", "could not verify credentials")
	}
	if !auth.VerifyPassword(user.HashedPassword, password) {
		return billing.Invalid("password", "password verification failed")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return billing.ErrNotFound
		}
		return err
	}
	return nil
}

// RecordPayment appends a payment to the ledger. Overpayment beyond the
// balance due is rejected inside the locked repository transaction.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID int, req *models.RecordPaymentRequest, userID int) (*models.Invoice, *models.Payment, error) {
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, nil, billing.Invalid("payment_method", "unknown payment method %q", req.PaymentMethod)
	}

	paymentDate, err := parseDocDate(req.PaymentDate)
	if err != nil {
		return nil, nil, err
	}

	payment := &models.Payment{
		InvoiceID:     invoiceID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		PaymentDate:   paymentDate,
		Notes:         req.Notes,
		RecordedBy:    userID,
	}

	invoice, err := s.store.AddPayment(ctx, payment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, billing.ErrNotFound
		}
		return nil, nil, err
	}

	metrics.PaymentsRecordedTotal.WithLabelValues(req.PaymentMethod).Inc()
	return invoice, payment, nil
}

// GetPaymentHistory returns the ledger plus its recomputed total
func (s *InvoiceService) GetPaymentHistory(ctx context.Context, invoiceID int) (*PaymentHistory, error) {
	if _, err := s.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.store.ListPayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.SumPaidAmount(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	return &PaymentHistory{Payments: payments, LedgerTotal: total}, nil
}

// UpdatePaymentStatus is the administrative override; paid amount follows the
// forced status so the invariants hold.
func (s *InvoiceService) UpdatePaymentStatus(ctx context.Context, invoiceID int, target models.PaymentStatus) (*models.Invoice, error) {
	invoice, err := s.store.ForcePaymentStatus(ctx, invoiceID, target)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrNotFound
	}
	return invoice, err
}

// GetPublicView resolves an access code to the reduced unauthenticated
// projection.
func (s *InvoiceService) GetPublicView(ctx context.Context, accessCode string) (*models.PublicInvoiceView, error) {
	detail, err := s.store.GetByAccessCode(ctx, accessCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, err
	}

	return &models.PublicInvoiceView{
		InvoiceNumber:       detail.InvoiceNumber,
		ClientName:          detail.ClientName,
		VehicleRegistration: detail.VehicleRegistration,
		InvoiceDate:         detail.InvoiceDate,
		DueDate:             detail.DueDate,
		TaxMode:             detail.TaxMode,
		Subtotal:            detail.Subtotal,
		CGSTAmount:          detail.CGSTAmount,
		SGSTAmount:          detail.SGSTAmount,
		IGSTAmount:          detail.IGSTAmount,
		DiscountAmount:      detail.DiscountAmount,
		RoundOff:            detail.RoundOff,
		TotalAmount:         detail.TotalAmount,
		PaymentStatus:       detail.PaymentStatus,
		Items:               detail.Items,
	}, nil
}

func validPaymentMethod(method string) bool {
	for _, m := range models.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
