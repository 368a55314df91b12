package services

import (
	"context"
	"fmt"
	"testing"

	"garage-backend/internal/auth"
	"garage-backend/internal/billing"
	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoiceStore is an in-memory InvoiceStore mirroring the repository's
// payment ledger behaviour.
type fakeInvoiceStore struct {
	seq       int64
	paymentID int
	invoices  map[int]*models.InvoiceDetail
	payments  map[int][]*models.Payment
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		invoices: make(map[int]*models.InvoiceDetail),
		payments: make(map[int][]*models.Payment),
	}
}

func (f *fakeInvoiceStore) Create(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error {
	f.seq++
	invoice.ID = int(f.seq)
	invoice.InvoiceNumber = billing.FormatInvoiceNumber(f.seq)
	code, err := billing.NewAccessCode()
	if err != nil {
		return err
	}
	invoice.AccessCode = code
	invoice.BalanceDue = invoice.TotalAmount
	f.invoices[invoice.ID] = &models.InvoiceDetail{Invoice: *invoice, Items: items}
	return nil
}

func (f *fakeInvoiceStore) Update(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error {
	existing, ok := f.invoices[invoice.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if invoice.TotalAmount.LessThan(existing.PaidAmount) {
		return billing.Invalid("total_amount", "new total %s is below the %s already paid",
			invoice.TotalAmount.StringFixed(2), existing.PaidAmount.StringFixed(2))
	}
	invoice.PaidAmount = existing.PaidAmount
	invoice.PaymentStatus = billing.DerivePaymentStatus(invoice.PaidAmount, invoice.TotalAmount)
	invoice.BalanceDue = invoice.TotalAmount.Sub(invoice.PaidAmount)
	f.invoices[invoice.ID] = &models.InvoiceDetail{Invoice: *invoice, Items: items}
	return nil
}

func (f *fakeInvoiceStore) Get(ctx context.Context, id int) (*models.InvoiceDetail, error) {
	d, ok := f.invoices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *d
	return &copied, nil
}

func (f *fakeInvoiceStore) GetByAccessCode(ctx context.Context, accessCode string) (*models.InvoiceDetail, error) {
	for _, d := range f.invoices {
		if d.AccessCode == accessCode {
			copied := *d
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvoiceStore) List(ctx context.Context, status models.PaymentStatus, clientID int) ([]*models.InvoiceDetail, error) {
	var out []*models.InvoiceDetail
	for _, d := range f.invoices {
		if status != "" && d.PaymentStatus != status {
			continue
		}
		if clientID > 0 && d.ClientID != clientID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeInvoiceStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.invoices[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.invoices, id)
	return nil
}

func (f *fakeInvoiceStore) AddPayment(ctx context.Context, payment *models.Payment) (*models.Invoice, error) {
	d, ok := f.invoices[payment.InvoiceID]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	paid, status, err := billing.ApplyPayment(d.PaidAmount, d.TotalAmount, payment.Amount)
	if err != nil {
		return nil, err
	}
	d.PaidAmount = paid
	d.PaymentStatus = status
	d.BalanceDue = d.TotalAmount.Sub(paid)

	f.paymentID++
	payment.ID = f.paymentID
	f.payments[payment.InvoiceID] = append(f.payments[payment.InvoiceID], payment)

	invoice := d.Invoice
	return &invoice, nil
}

func (f *fakeInvoiceStore) ForcePaymentStatus(ctx context.Context, id int, target models.PaymentStatus) (*models.Invoice, error) {
	d, ok := f.invoices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	paid, err := billing.ForcePaymentStatus(target, d.PaidAmount, d.TotalAmount)
	if err != nil {
		return nil, err
	}
	d.PaidAmount = paid
	d.PaymentStatus = target
	d.BalanceDue = d.TotalAmount.Sub(paid)
	invoice := d.Invoice
	return &invoice, nil
}

func (f *fakeInvoiceStore) ListPayments(ctx context.Context, invoiceID int) ([]*models.Payment, error) {
	return f.payments[invoiceID], nil
}

func (f *fakeInvoiceStore) SumPaidAmount(ctx context.Context, invoiceID int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range f.payments[invoiceID] {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// fakeUserStore serves the delete confirmation check.
type fakeUserStore struct {
	users map[int]*models.User
}

func (f *fakeUserStore) Get(ctx context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func newInvoiceService(t *testing.T) (*InvoiceService, *fakeInvoiceStore) {
	t.Helper()
	store := newFakeInvoiceStore()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	users := &fakeUserStore{users: map[int]*models.User{
		1: {ID: 1, Username: "owner", HashedPassword: hash},
	}}
	return NewInvoiceService(store, users), store
}

func invoiceRequest() *models.CreateInvoiceRequest {
	return &models.CreateInvoiceRequest{
		ClientID:  1,
		VehicleID: 2,
		Items: []models.LineItemRequest{
			{ItemType: models.ItemKindService, Name: "General Service", Quantity: dec("1"), Rate: dec("2500")},
			{ItemType: models.ItemKindPart, Name: "Engine Oil 5W-30 (1L)", Quantity: dec("4"), Rate: dec("650")},
		},
	}
}

func TestCreateInvoice_NumberAndAccessCode(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	assert.Equal(t, "INV000001", inv.InvoiceNumber)
	assert.Len(t, inv.AccessCode, 12)
	for _, c := range inv.AccessCode {
		assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
			"access code must be uppercase alphanumeric, got %q", inv.AccessCode)
	}
	assert.Equal(t, models.PaymentPending, inv.PaymentStatus)

	// Subtotal 2500 + 2600 = 5100, 9% CGST + 9% SGST
	assert.Equal(t, "5100.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "459.00", inv.CGSTAmount.StringFixed(2))
	assert.Equal(t, "459.00", inv.SGSTAmount.StringFixed(2))
	assert.True(t, inv.IGSTAmount.IsZero())
	assert.Equal(t, "6018.00", inv.TotalAmount.StringFixed(2))
}

func TestCreateInvoice_InterState(t *testing.T) {
	svc, _ := newInvoiceService(t)

	req := invoiceRequest()
	req.TaxMode = models.TaxInterState
	inv, err := svc.CreateInvoice(context.Background(), req, 1)
	require.NoError(t, err)

	assert.True(t, inv.CGSTAmount.IsZero())
	assert.True(t, inv.SGSTAmount.IsZero())
	assert.Equal(t, "918.00", inv.IGSTAmount.StringFixed(2))
	assert.Equal(t, "6018.00", inv.TotalAmount.StringFixed(2))
}

func TestCreateInvoice_RejectsTotalMismatch(t *testing.T) {
	svc, _ := newInvoiceService(t)

	req := invoiceRequest()
	wrong := dec("9999")
	req.TotalAmount = &wrong

	_, err := svc.CreateInvoice(context.Background(), req, 1)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRecordPayment_SequenceToFullyPaid(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	updated, payment, err := svc.RecordPayment(context.Background(), inv.ID,
		&models.RecordPaymentRequest{Amount: dec("3000"), PaymentMethod: "UPI"}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartiallyPaid, updated.PaymentStatus)
	assert.Equal(t, "3000.00", updated.PaidAmount.StringFixed(2))
	assert.NotZero(t, payment.ID)

	updated, _, err = svc.RecordPayment(context.Background(), inv.ID,
		&models.RecordPaymentRequest{Amount: dec("3018"), PaymentMethod: "Cash"}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.True(t, updated.BalanceDue.IsZero())

	history, err := svc.GetPaymentHistory(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Len(t, history.Payments, 2)
	assert.Equal(t, "6018.00", history.LedgerTotal.StringFixed(2))
}

func TestRecordPayment_RejectsOverpayment(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	over := inv.TotalAmount.Add(dec("0.01"))
	_, _, err = svc.RecordPayment(context.Background(), inv.ID,
		&models.RecordPaymentRequest{Amount: over, PaymentMethod: "Cash"}, 1)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestRecordPayment_RejectsUnknownMethod(t *testing.T) {
	svc, _ := newInvoiceService(t)

	_, _, err := svc.RecordPayment(context.Background(), 1,
		&models.RecordPaymentRequest{Amount: dec("100"), PaymentMethod: "Barter"}, 1)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment_method", verr.Field)
}

func TestUpdateInvoice_SurvivesPayments(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(context.Background(), inv.ID,
		&models.RecordPaymentRequest{Amount: dec("2000"), PaymentMethod: "Card"}, 1)
	require.NoError(t, err)

	// Shrink the invoice to one line; the ledger stays, status is re-derived
	req := invoiceRequest()
	req.Items = req.Items[:1]
	updated, err := svc.UpdateInvoice(context.Background(), inv.ID, req)
	require.NoError(t, err)

	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, inv.AccessCode, updated.AccessCode)
	assert.Equal(t, "2950.00", updated.TotalAmount.StringFixed(2))
	assert.Equal(t, "2000.00", updated.PaidAmount.StringFixed(2))
	assert.Equal(t, models.PaymentPartiallyPaid, updated.PaymentStatus)
}

// An update may not shrink the total below what the ledger already holds.
func TestUpdateInvoice_RejectsTotalBelowPaid(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(context.Background(), inv.ID,
		&models.RecordPaymentRequest{Amount: dec("6018"), PaymentMethod: "Card"}, 1)
	require.NoError(t, err)

	req := invoiceRequest()
	req.Items = req.Items[:1]
	_, err = svc.UpdateInvoice(context.Background(), inv.ID, req)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "total_amount", verr.Field)

	// Invoice is unchanged
	unchanged, err := svc.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "6018.00", unchanged.TotalAmount.StringFixed(2))
	assert.Equal(t, models.PaymentPaid, unchanged.PaymentStatus)
}

func TestUpdatePaymentStatus_Override(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	updated, err := svc.UpdatePaymentStatus(context.Background(), inv.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.True(t, updated.PaidAmount.Equal(updated.TotalAmount))

	_, err = svc.UpdatePaymentStatus(context.Background(), 999, models.PaymentPaid)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestDeleteInvoice_PasswordCheck(t *testing.T) {
	svc, _ := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)

	err = svc.DeleteInvoice(context.Background(), inv.ID, 1, "wrong")
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	require.NoError(t, svc.DeleteInvoice(context.Background(), inv.ID, 1, "secret123"))

	_, err = svc.GetInvoice(context.Background(), inv.ID)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestGetPublicView_ReducedProjection(t *testing.T) {
	svc, store := newInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), invoiceRequest(), 1)
	require.NoError(t, err)
	store.invoices[inv.ID].ClientName = "Ravi Kumar"
	store.invoices[inv.ID].VehicleRegistration = "MH12AB1234"

	view, err := svc.GetPublicView(context.Background(), inv.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, view.InvoiceNumber)
	assert.Equal(t, "Ravi Kumar", view.ClientName)
	assert.Equal(t, "MH12AB1234", view.VehicleRegistration)
	assert.True(t, view.TotalAmount.Equal(inv.TotalAmount))
	assert.Len(t, view.Items, 2)

	_, err = svc.GetPublicView(context.Background(), "NOSUCHCODE12")
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestListInvoices_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newInvoiceService(t)

	_, err := svc.ListInvoices(context.Background(), "settled", 0)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestCreateInvoice_InvalidDate(t *testing.T) {
	svc, _ := newInvoiceService(t)

	req := invoiceRequest()
	req.InvoiceDate = "31-03-2026"
	_, err := svc.CreateInvoice(context.Background(), req, 1)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), fmt.Sprintf("%q", "31-03-2026"))
}
