package services

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuotationStore is an in-memory QuotationStore mirroring the repository's
// numbering and lifecycle behaviour.
type fakeQuotationStore struct {
	seq        int64
	invoiceSeq int64
	nextID     int
	quotations map[int]*models.QuotationDetail
}

func newFakeQuotationStore() *fakeQuotationStore {
	return &fakeQuotationStore{quotations: make(map[int]*models.QuotationDetail)}
}

func (f *fakeQuotationStore) Create(ctx context.Context, q *models.Quotation, items []models.LineItem) error {
	if q.QuotationNumber == "" {
		f.seq++
		q.QuotationNumber = billing.FormatQuotationNumber(f.seq)
	}
	f.nextID++
	q.ID = f.nextID
	q.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	f.quotations[q.ID] = &models.QuotationDetail{Quotation: *q, Items: items}
	return nil
}

func (f *fakeQuotationStore) Update(ctx context.Context, q *models.Quotation, items []models.LineItem) error {
	existing, ok := f.quotations[q.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	q.CreatedAt = existing.CreatedAt
	f.quotations[q.ID] = &models.QuotationDetail{Quotation: *q, Items: items}
	return nil
}

func (f *fakeQuotationStore) Get(ctx context.Context, id int) (*models.QuotationDetail, error) {
	d, ok := f.quotations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *d
	return &copied, nil
}

func (f *fakeQuotationStore) List(ctx context.Context, status models.QuotationStatus, clientID int) ([]*models.QuotationDetail, error) {
	var out []*models.QuotationDetail
	for _, d := range f.quotations {
		if status != "" && d.Status != status {
			continue
		}
		if clientID > 0 && d.ClientID != clientID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeQuotationStore) UpdateStatus(ctx context.Context, id int, target models.QuotationStatus) (*models.Quotation, error) {
	d, ok := f.quotations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if err := billing.CheckQuotationTransition(d.Status, target); err != nil {
		return nil, err
	}
	d.Status = target
	q := d.Quotation
	return &q, nil
}

func (f *fakeQuotationStore) ConvertToInvoice(ctx context.Context, id int, createdBy int) (*models.Invoice, error) {
	d, ok := f.quotations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if err := billing.CheckQuotationTransition(d.Status, models.QuotationConverted); err != nil {
		return nil, err
	}
	f.invoiceSeq++
	invoice := &models.Invoice{
		ID:            int(f.invoiceSeq),
		InvoiceNumber: billing.FormatInvoiceNumber(f.invoiceSeq),
		ClientID:      d.ClientID,
		VehicleID:     d.VehicleID,
		TotalAmount:   d.TotalAmount,
		PaidAmount:    decimal.Zero,
		BalanceDue:    d.TotalAmount,
		PaymentStatus: models.PaymentPending,
		CreatedBy:     createdBy,
	}
	d.Status = models.QuotationConverted
	return invoice, nil
}

func (f *fakeQuotationStore) ListNumbersByBase(ctx context.Context, base string) ([]string, error) {
	var numbers []string
	for _, d := range f.quotations {
		n := d.QuotationNumber
		if n == base || strings.HasPrefix(n, base+"-v") {
			numbers = append(numbers, n)
		}
	}
	return numbers, nil
}

func (f *fakeQuotationStore) ListRevisions(ctx context.Context, base string) ([]*models.QuotationVersion, error) {
	var versions []*models.QuotationVersion
	for _, d := range f.quotations {
		n := d.QuotationNumber
		if n != base && !strings.HasPrefix(n, base+"-v") {
			continue
		}
		versions = append(versions, &models.QuotationVersion{
			ID:              d.ID,
			QuotationNumber: n,
			Version:         billing.VersionOf(n),
			VersionLabel:    billing.VersionLabel(n),
			Status:          d.Status,
			TotalAmount:     d.TotalAmount,
			QuotationDate:   d.QuotationDate,
			CreatedAt:       d.CreatedAt,
		})
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	return versions, nil
}

func (f *fakeQuotationStore) ExpireOverdue(ctx context.Context) (int64, error) {
	cutoff := timeutil.StartOfDay(timeutil.Now())
	var swept int64
	for _, d := range f.quotations {
		if d.Status == models.QuotationPending && d.ValidUntil != nil && d.ValidUntil.Before(cutoff) {
			d.Status = models.QuotationExpired
			swept++
		}
	}
	return swept, nil
}

func (f *fakeQuotationStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.quotations[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.quotations, id)
	return nil
}

func (f *fakeQuotationStore) Stats(ctx context.Context) (*models.QuotationStats, error) {
	stats := &models.QuotationStats{ByStatus: make(map[string]int)}
	for _, d := range f.quotations {
		stats.ByStatus[string(d.Status)]++
		stats.Total++
		stats.TotalValue = stats.TotalValue.Add(d.TotalAmount)
	}
	return stats, nil
}

func quotationRequest() *models.CreateQuotationRequest {
	return &models.CreateQuotationRequest{
		ClientID:  1,
		VehicleID: 2,
		Items: []models.LineItemRequest{
			{ItemType: models.ItemKindService, Name: "General Service", Quantity: dec("1"), Rate: dec("2500")},
			{ItemType: models.ItemKindPart, Name: "Oil Filter", Quantity: dec("2"), Rate: dec("350")},
		},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateQuotation_NumbersAndDefaults(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	first, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT-0001", first.QuotationNumber)
	assert.Equal(t, models.QuotationPending, first.Status)

	// Subtotal 2500 + 700 = 3200, CGST/SGST 9% each = 288 + 288
	assert.Equal(t, "3200.00", first.Subtotal.StringFixed(2))
	assert.Equal(t, "288.00", first.CGSTAmount.StringFixed(2))
	assert.Equal(t, "288.00", first.SGSTAmount.StringFixed(2))
	assert.Equal(t, "3776.00", first.TotalAmount.StringFixed(2))

	// Validity defaults to quotation date + validityDays
	require.NotNil(t, first.ValidUntil)
	expected := first.QuotationDate.AddDate(0, 0, 15)
	assert.WithinDuration(t, expected, *first.ValidUntil, time.Second)

	second, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT-0002", second.QuotationNumber)
}

func TestCreateQuotation_RequiresClientAndVehicle(t *testing.T) {
	svc := NewQuotationService(newFakeQuotationStore(), 15)

	req := quotationRequest()
	req.ClientID = 0

	_, err := svc.CreateQuotation(context.Background(), req, 1)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestQuotationLifecycle_AcceptConvert(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	q, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)

	// Converting a pending quotation must fail
	_, err = svc.Convert(context.Background(), q.ID, 1)
	var ite *billing.InvalidTransitionError
	require.ErrorAs(t, err, &ite)

	accepted, err := svc.Accept(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationAccepted, accepted.Status)

	// Rejecting after acceptance must fail
	_, err = svc.Reject(context.Background(), q.ID)
	require.ErrorAs(t, err, &ite)

	invoice, err := svc.Convert(context.Background(), q.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "INV000001", invoice.InvoiceNumber)
	assert.Equal(t, models.PaymentPending, invoice.PaymentStatus)
	assert.True(t, invoice.TotalAmount.Equal(q.TotalAmount))
	assert.Equal(t, 7, invoice.CreatedBy)

	converted, err := svc.GetQuotation(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationConverted, converted.Status)

	// Converting twice must fail
	_, err = svc.Convert(context.Background(), q.ID, 1)
	require.ErrorAs(t, err, &ite)
}

func TestQuotationLifecycle_NotFound(t *testing.T) {
	svc := NewQuotationService(newFakeQuotationStore(), 15)

	_, err := svc.Accept(context.Background(), 999)
	assert.ErrorIs(t, err, billing.ErrNotFound)

	_, err = svc.Convert(context.Background(), 999, 1)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestUpdateQuotation_OnlyPending(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	q, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), q.ID)
	require.NoError(t, err)

	_, err = svc.UpdateQuotation(context.Background(), q.ID, quotationRequest())
	var ite *billing.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "edit", ite.Attempted)
}

func TestUpdateQuotation_KeepsNumber(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	q, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)

	req := quotationRequest()
	req.Items = req.Items[:1]
	updated, err := svc.UpdateQuotation(context.Background(), q.ID, req)
	require.NoError(t, err)

	assert.Equal(t, q.QuotationNumber, updated.QuotationNumber)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "2500.00", updated.Subtotal.StringFixed(2))
}

func TestCreateRevision_Numbering(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	q, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)

	rev1, err := svc.CreateRevision(context.Background(), q.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, q.QuotationNumber+"-v1", rev1.QuotationNumber)
	assert.Equal(t, models.QuotationPending, rev1.Status)
	assert.Equal(t, 2, rev1.CreatedBy)
	assert.True(t, rev1.TotalAmount.Equal(q.TotalAmount))

	// Revising a revision still derives from the base number
	rev2, err := svc.CreateRevision(context.Background(), rev1.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, q.QuotationNumber+"-v2", rev2.QuotationNumber)

	versions, err := svc.ListRevisions(context.Background(), rev1.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "original", versions[0].VersionLabel)
	assert.Equal(t, "v1", versions[1].VersionLabel)
	assert.Equal(t, "v2", versions[2].VersionLabel)
	assert.Equal(t, 0, versions[0].Version)
	assert.Equal(t, 2, versions[2].Version)
}

func TestExpireOverdue_SweepsPending(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	q, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)

	past := timeutil.Now().AddDate(0, 0, -1)
	store.quotations[q.ID].ValidUntil = &past

	swept, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	expired, err := svc.GetQuotation(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationExpired, expired.Status)

	// Second sweep finds nothing
	swept, err = svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)
}

// A quotation is valid through the whole of its valid-until day: one expiring
// today survives the sweep, one that expired yesterday does not.
func TestExpireOverdue_ValidThroughToday(t *testing.T) {
	store := newFakeQuotationStore()
	svc := NewQuotationService(store, 15)

	today, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)
	midnight := timeutil.StartOfDay(timeutil.Now())
	store.quotations[today.ID].ValidUntil = &midnight

	yesterday, err := svc.CreateQuotation(context.Background(), quotationRequest(), 1)
	require.NoError(t, err)
	dayBefore := midnight.AddDate(0, 0, -1)
	store.quotations[yesterday.ID].ValidUntil = &dayBefore

	swept, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	kept, err := svc.GetQuotation(context.Background(), today.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationPending, kept.Status)

	expired, err := svc.GetQuotation(context.Background(), yesterday.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationExpired, expired.Status)
}

func TestListQuotations_RejectsUnknownStatus(t *testing.T) {
	svc := NewQuotationService(newFakeQuotationStore(), 15)

	_, err := svc.ListQuotations(context.Background(), "approved", 0)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}
