package repositories

import (
	"context"
	"fmt"
	"sort"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type QuotationRepository struct {
	DB *pgxpool.Pool
}

func NewQuotationRepository(db *pgxpool.Pool) *QuotationRepository {
	return &QuotationRepository{DB: db}
}

// Create inserts a quotation with its items. An empty quotation number is
// allocated from the sequence; revisions pass their derived -v<N> number in.
func (r *QuotationRepository) Create(ctx context.Context, quotation *models.Quotation, items []models.LineItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quotation.QuotationNumber == "" {
		var seq int64
		if err := tx.QueryRow(ctx, "SELECT nextval('quotation_number_seq')").Scan(&seq); err != nil {
			return fmt.Errorf("failed to get next quotation number: %w", err)
		}
		quotation.QuotationNumber = billing.FormatQuotationNumber(seq)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO quotations(quotation_number, client_id, vehicle_id, quotation_date, valid_until,
		        tax_mode, cgst_rate, sgst_rate, igst_rate,
		        subtotal, cgst_amount, sgst_amount, igst_amount, discount_amount, round_off,
		        total_amount, status, notes, created_by)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id, created_at`,
		quotation.QuotationNumber, quotation.ClientID, quotation.VehicleID,
		quotation.QuotationDate, quotation.ValidUntil,
		quotation.TaxMode, quotation.CGSTRate, quotation.SGSTRate, quotation.IGSTRate,
		quotation.Subtotal, quotation.CGSTAmount, quotation.SGSTAmount, quotation.IGSTAmount,
		quotation.DiscountAmount, quotation.RoundOff,
		quotation.TotalAmount, quotation.Status, quotation.Notes, quotation.CreatedBy,
	).Scan(&quotation.ID, &quotation.CreatedAt)
	if err != nil {
		return err
	}

	if err := insertLineItems(ctx, tx, "quotation_items", "quotation_id", quotation.ID, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update replaces header fields and items wholesale. Only pending quotations
// may be edited; the status guard lives in the service.
func (r *QuotationRepository) Update(ctx context.Context, quotation *models.Quotation, items []models.LineItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE quotations SET client_id=$1, vehicle_id=$2, quotation_date=$3, valid_until=$4,
		        tax_mode=$5, cgst_rate=$6, sgst_rate=$7, igst_rate=$8,
		        subtotal=$9, cgst_amount=$10, sgst_amount=$11, igst_amount=$12,
		        discount_amount=$13, round_off=$14, total_amount=$15, notes=$16
		 WHERE id=$17`,
		quotation.ClientID, quotation.VehicleID, quotation.QuotationDate, quotation.ValidUntil,
		quotation.TaxMode, quotation.CGSTRate, quotation.SGSTRate, quotation.IGSTRate,
		quotation.Subtotal, quotation.CGSTAmount, quotation.SGSTAmount, quotation.IGSTAmount,
		quotation.DiscountAmount, quotation.RoundOff, quotation.TotalAmount, quotation.Notes,
		quotation.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id=$1`, quotation.ID); err != nil {
		return err
	}
	if err := insertLineItems(ctx, tx, "quotation_items", "quotation_id", quotation.ID, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const quotationDetailColumns = `
	q.id, q.quotation_number, q.client_id, q.vehicle_id, q.quotation_date, q.valid_until,
	q.tax_mode, q.cgst_rate, q.sgst_rate, q.igst_rate,
	q.subtotal, q.cgst_amount, q.sgst_amount, q.igst_amount, q.discount_amount, q.round_off,
	q.total_amount, q.status, COALESCE(q.notes, ''), COALESCE(q.created_by, 0), q.created_at,
	COALESCE(c.name, ''), COALESCE(v.registration_number, '')`

func scanQuotationDetail(row pgx.Row) (*models.QuotationDetail, error) {
	var d models.QuotationDetail
	err := row.Scan(&d.ID, &d.QuotationNumber, &d.ClientID, &d.VehicleID, &d.QuotationDate, &d.ValidUntil,
		&d.TaxMode, &d.CGSTRate, &d.SGSTRate, &d.IGSTRate,
		&d.Subtotal, &d.CGSTAmount, &d.SGSTAmount, &d.IGSTAmount, &d.DiscountAmount, &d.RoundOff,
		&d.TotalAmount, &d.Status, &d.Notes, &d.CreatedBy, &d.CreatedAt,
		&d.ClientName, &d.VehicleRegistration)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Get retrieves a quotation by ID with client/vehicle display data and items
func (r *QuotationRepository) Get(ctx context.Context, id int) (*models.QuotationDetail, error) {
	d, err := scanQuotationDetail(r.DB.QueryRow(ctx,
		`SELECT `+quotationDetailColumns+`
		 FROM quotations q
		 LEFT JOIN clients c ON q.client_id = c.id
		 LEFT JOIN vehicles v ON q.vehicle_id = v.id
		 WHERE q.id = $1`, id))
	if err != nil {
		return nil, err
	}

	d.Items, err = r.listItems(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *QuotationRepository) listItems(ctx context.Context, quotationID int) ([]models.LineItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, item_type, name, COALESCE(hsn_sac, ''), quantity, rate, discount, tax_rate, line_total
		 FROM quotation_items WHERE quotation_id = $1 ORDER BY id`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLineItems(rows)
}

// List returns quotations newest first, optionally filtered by status and client
func (r *QuotationRepository) List(ctx context.Context, status models.QuotationStatus, clientID int) ([]*models.QuotationDetail, error) {
	query := `SELECT ` + quotationDetailColumns + `
	          FROM quotations q
	          LEFT JOIN clients c ON q.client_id = c.id
	          LEFT JOIN vehicles v ON q.vehicle_id = v.id
	          WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if status != "" {
		query += fmt.Sprintf(" AND q.status = $%d", argNum)
		args = append(args, status)
		argNum++
	}
	if clientID > 0 {
		query += fmt.Sprintf(" AND q.client_id = $%d", argNum)
		args = append(args, clientID)
		argNum++
	}
	query += " ORDER BY q.created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotations []*models.QuotationDetail
	for rows.Next() {
		d, err := scanQuotationDetail(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, d)
	}
	return quotations, rows.Err()
}

// UpdateStatus transitions the quotation lifecycle under a row lock so
// concurrent accept/reject calls serialize and exactly one wins.
func (r *QuotationRepository) UpdateStatus(ctx context.Context, id int, target models.QuotationStatus) (*models.Quotation, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var q models.Quotation
	err = tx.QueryRow(ctx,
		`SELECT id, quotation_number, status FROM quotations WHERE id=$1 FOR UPDATE`, id,
	).Scan(&q.ID, &q.QuotationNumber, &q.Status)
	if err != nil {
		return nil, err
	}

	if err := billing.CheckQuotationTransition(q.Status, target); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE quotations SET status=$1 WHERE id=$2`, target, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	q.Status = target
	return &q, nil
}

// ConvertToInvoice materializes an accepted quotation into an invoice. The
// lifecycle check, the invoice insert and the status flip to converted happen
// in one transaction.
func (r *QuotationRepository) ConvertToInvoice(ctx context.Context, id int, createdBy int) (*models.Invoice, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var q models.Quotation
	err = tx.QueryRow(ctx,
		`SELECT id, quotation_number, client_id, vehicle_id, tax_mode,
		        cgst_rate, sgst_rate, igst_rate,
		        subtotal, cgst_amount, sgst_amount, igst_amount, discount_amount, round_off,
		        total_amount, status, COALESCE(notes, '')
		 FROM quotations WHERE id=$1 FOR UPDATE`, id,
	).Scan(&q.ID, &q.QuotationNumber, &q.ClientID, &q.VehicleID, &q.TaxMode,
		&q.CGSTRate, &q.SGSTRate, &q.IGSTRate,
		&q.Subtotal, &q.CGSTAmount, &q.SGSTAmount, &q.IGSTAmount, &q.DiscountAmount, &q.RoundOff,
		&q.TotalAmount, &q.Status, &q.Notes)
	if err != nil {
		return nil, err
	}

	if err := billing.CheckQuotationTransition(q.Status, models.QuotationConverted); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx,
		`SELECT id, item_type, name, COALESCE(hsn_sac, ''), quantity, rate, discount, tax_rate, line_total
		 FROM quotation_items WHERE quotation_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	items, err := scanLineItems(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	invoice := &models.Invoice{
		ClientID:       q.ClientID,
		VehicleID:      q.VehicleID,
		InvoiceDate:    now,
		TaxMode:        q.TaxMode,
		CGSTRate:       q.CGSTRate,
		SGSTRate:       q.SGSTRate,
		IGSTRate:       q.IGSTRate,
		Subtotal:       q.Subtotal,
		CGSTAmount:     q.CGSTAmount,
		SGSTAmount:     q.SGSTAmount,
		IGSTAmount:     q.IGSTAmount,
		DiscountAmount: q.DiscountAmount,
		RoundOff:       q.RoundOff,
		TotalAmount:    q.TotalAmount,
		PaidAmount:     decimal.Zero,
		PaymentStatus:  models.PaymentPending,
		Notes:          fmt.Sprintf("Converted from quotation %s", q.QuotationNumber),
		CreatedBy:      createdBy,
	}
	if err := createInvoiceTx(ctx, tx, invoice, items); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE quotations SET status=$1, converted_invoice_id=$2 WHERE id=$3`,
		models.QuotationConverted, invoice.ID, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invoice.BalanceDue = invoice.TotalAmount
	return invoice, nil
}

// ListNumbersByBase returns all quotation numbers in a revision group
func (r *QuotationRepository) ListNumbersByBase(ctx context.Context, base string) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT quotation_number FROM quotations
		 WHERE quotation_number = $1 OR quotation_number LIKE $1 || '-v%'`, base)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// ListRevisions returns all quotations in a revision group ordered by version
// ascending, the unsuffixed original first.
func (r *QuotationRepository) ListRevisions(ctx context.Context, base string) ([]*models.QuotationVersion, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, quotation_number, status, total_amount, quotation_date, created_at
		 FROM quotations
		 WHERE quotation_number = $1 OR quotation_number LIKE $1 || '-v%'`, base)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*models.QuotationVersion
	for rows.Next() {
		var v models.QuotationVersion
		err := rows.Scan(&v.ID, &v.QuotationNumber, &v.Status, &v.TotalAmount, &v.QuotationDate, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		v.Version = billing.VersionOf(v.QuotationNumber)
		v.VersionLabel = billing.VersionLabel(v.QuotationNumber)
		versions = append(versions, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	return versions, nil
}

// ExpireOverdue marks pending quotations past their validity as expired and
// returns how many were swept. Safe to run repeatedly. A quotation stays
// valid through the whole of its valid-until day, so the cutoff is the start
// of today, not the current instant.
func (r *QuotationRepository) ExpireOverdue(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE quotations SET status=$1
		 WHERE status=$2 AND valid_until IS NOT NULL AND valid_until < $3`,
		models.QuotationExpired, models.QuotationPending, timeutil.StartOfDay(timeutil.Now()))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes a quotation and its items
func (r *QuotationRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM quotations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// Stats aggregates the quotation analytics breakdown in one query
func (r *QuotationRepository) Stats(ctx context.Context) (*models.QuotationStats, error) {
	stats := &models.QuotationStats{ByStatus: make(map[string]int)}

	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
		 FROM quotations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totalValue := decimal.Zero
	for rows.Next() {
		var status string
		var count int
		var value decimal.Decimal
		if err := rows.Scan(&status, &count, &value); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
		totalValue = totalValue.Add(value)
		switch models.QuotationStatus(status) {
		case models.QuotationAccepted:
			stats.AcceptedValue = value
		case models.QuotationConverted:
			stats.ConvertedValue = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.TotalValue = totalValue
	if stats.Total > 0 {
		accepted := stats.ByStatus[string(models.QuotationAccepted)] + stats.ByStatus[string(models.QuotationConverted)]
		stats.AcceptanceRate = float64(accepted) / float64(stats.Total) * 100
		stats.ConversionRate = float64(stats.ByStatus[string(models.QuotationConverted)]) / float64(stats.Total) * 100
	}

	return stats, nil
}
