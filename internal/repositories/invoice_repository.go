package repositories

import (
	"context"
	"errors"
	"fmt"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// accessCodeAttempts bounds re-rolls when a generated code collides.
const accessCodeAttempts = 5

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// Create inserts an invoice with its items in one transaction. The invoice
// number comes from a database sequence so concurrent creates never collide,
// and the access code is re-rolled on the rare unique violation.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := createInvoiceTx(ctx, tx, invoice, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// createInvoiceTx allocates the invoice number and access code and inserts the
// invoice with its items inside the caller's transaction. Quotation conversion
// reuses it so the invoice and the status flip commit atomically.
func createInvoiceTx(ctx context.Context, tx pgx.Tx, invoice *models.Invoice, items []models.LineItem) error {
	var seq int64
	if err := tx.QueryRow(ctx, "SELECT nextval('invoice_number_seq')").Scan(&seq); err != nil {
		return fmt.Errorf("failed to get next invoice number: %w", err)
	}
	invoice.InvoiceNumber = billing.FormatInvoiceNumber(seq)

	for attempt := 0; ; attempt++ {
		code, err := billing.NewAccessCode()
		if err != nil {
			return err
		}
		invoice.AccessCode = code

		err = tx.QueryRow(ctx,
			`INSERT INTO invoices(invoice_number, client_id, vehicle_id, invoice_date, due_date,
			        tax_mode, cgst_rate, sgst_rate, igst_rate,
			        subtotal, cgst_amount, sgst_amount, igst_amount, discount_amount, round_off,
			        total_amount, paid_amount, payment_status, access_code, notes, created_by)
			 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			 RETURNING id, created_at, updated_at`,
			invoice.InvoiceNumber, invoice.ClientID, invoice.VehicleID, invoice.InvoiceDate, invoice.DueDate,
			invoice.TaxMode, invoice.CGSTRate, invoice.SGSTRate, invoice.IGSTRate,
			invoice.Subtotal, invoice.CGSTAmount, invoice.SGSTAmount, invoice.IGSTAmount,
			invoice.DiscountAmount, invoice.RoundOff,
			invoice.TotalAmount, invoice.PaidAmount, invoice.PaymentStatus, invoice.AccessCode,
			invoice.Notes, invoice.CreatedBy,
		).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
		if err == nil {
			break
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "invoices_access_code_key" && attempt < accessCodeAttempts {
			continue
		}
		return err
	}

	return insertLineItems(ctx, tx, "invoice_items", "invoice_id", invoice.ID, items)
}

// Update replaces the invoice header fields and its items wholesale. The
// payment status is re-derived against the new total under the row lock; the
// ledger itself is untouched. A new total below the already-paid sum is
// rejected, mirroring the overpayment policy.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var paid decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT paid_amount FROM invoices WHERE id=$1 FOR UPDATE`, invoice.ID).Scan(&paid)
	if err != nil {
		return err
	}
	if invoice.TotalAmount.LessThan(paid) {
		return billing.Invalid("total_amount", "new total %s is below the %s already paid",
			invoice.TotalAmount.StringFixed(2), paid.StringFixed(2))
	}
	invoice.PaidAmount = paid
	invoice.PaymentStatus = billing.DerivePaymentStatus(paid, invoice.TotalAmount)

	_, err = tx.Exec(ctx,
		`UPDATE invoices SET client_id=$1, vehicle_id=$2, invoice_date=$3, due_date=$4,
		        tax_mode=$5, cgst_rate=$6, sgst_rate=$7, igst_rate=$8,
		        subtotal=$9, cgst_amount=$10, sgst_amount=$11, igst_amount=$12,
		        discount_amount=$13, round_off=$14, total_amount=$15, notes=$16,
		        payment_status=$17, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$18`,
		invoice.ClientID, invoice.VehicleID, invoice.InvoiceDate, invoice.DueDate,
		invoice.TaxMode, invoice.CGSTRate, invoice.SGSTRate, invoice.IGSTRate,
		invoice.Subtotal, invoice.CGSTAmount, invoice.SGSTAmount, invoice.IGSTAmount,
		invoice.DiscountAmount, invoice.RoundOff, invoice.TotalAmount, invoice.Notes,
		invoice.PaymentStatus, invoice.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, invoice.ID); err != nil {
		return err
	}
	if err := insertLineItems(ctx, tx, "invoice_items", "invoice_id", invoice.ID, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const invoiceDetailColumns = `
	i.id, i.invoice_number, i.client_id, i.vehicle_id, i.invoice_date, i.due_date,
	i.tax_mode, i.cgst_rate, i.sgst_rate, i.igst_rate,
	i.subtotal, i.cgst_amount, i.sgst_amount, i.igst_amount, i.discount_amount, i.round_off,
	i.total_amount, i.paid_amount, i.total_amount - i.paid_amount, i.payment_status,
	i.access_code, COALESCE(i.notes, ''), COALESCE(i.created_by, 0), i.created_at, i.updated_at,
	COALESCE(c.name, ''), COALESCE(c.phone, ''), COALESCE(c.gstin, ''),
	COALESCE(v.registration_number, ''),
	COALESCE(TRIM(COALESCE(v.brand, '') || ' ' || COALESCE(v.model, '')), '')`

func scanInvoiceDetail(row pgx.Row) (*models.InvoiceDetail, error) {
	var d models.InvoiceDetail
	err := row.Scan(&d.ID, &d.InvoiceNumber, &d.ClientID, &d.VehicleID, &d.InvoiceDate, &d.DueDate,
		&d.TaxMode, &d.CGSTRate, &d.SGSTRate, &d.IGSTRate,
		&d.Subtotal, &d.CGSTAmount, &d.SGSTAmount, &d.IGSTAmount, &d.DiscountAmount, &d.RoundOff,
		&d.TotalAmount, &d.PaidAmount, &d.BalanceDue, &d.PaymentStatus,
		&d.AccessCode, &d.Notes, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
		&d.ClientName, &d.ClientPhone, &d.ClientGSTIN,
		&d.VehicleRegistration, &d.VehicleDescription)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Get retrieves an invoice by ID with client/vehicle display data and items
func (r *InvoiceRepository) Get(ctx context.Context, id int) (*models.InvoiceDetail, error) {
	d, err := scanInvoiceDetail(r.DB.QueryRow(ctx,
		`SELECT `+invoiceDetailColumns+`
		 FROM invoices i
		 LEFT JOIN clients c ON i.client_id = c.id
		 LEFT JOIN vehicles v ON i.vehicle_id = v.id
		 WHERE i.id = $1`, id))
	if err != nil {
		return nil, err
	}

	d.Items, err = r.listItems(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetByAccessCode retrieves an invoice by its public access code
func (r *InvoiceRepository) GetByAccessCode(ctx context.Context, accessCode string) (*models.InvoiceDetail, error) {
	d, err := scanInvoiceDetail(r.DB.QueryRow(ctx,
		`SELECT `+invoiceDetailColumns+`
		 FROM invoices i
		 LEFT JOIN clients c ON i.client_id = c.id
		 LEFT JOIN vehicles v ON i.vehicle_id = v.id
		 WHERE i.access_code = $1`, accessCode))
	if err != nil {
		return nil, err
	}

	d.Items, err = r.listItems(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *InvoiceRepository) listItems(ctx context.Context, invoiceID int) ([]models.LineItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, item_type, name, COALESCE(hsn_sac, ''), quantity, rate, discount, tax_rate, line_total
		 FROM invoice_items WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLineItems(rows)
}

// List returns invoices newest first, optionally filtered by payment status
// and client
func (r *InvoiceRepository) List(ctx context.Context, status models.PaymentStatus, clientID int) ([]*models.InvoiceDetail, error) {
	query := `SELECT ` + invoiceDetailColumns + `
	          FROM invoices i
	          LEFT JOIN clients c ON i.client_id = c.id
	          LEFT JOIN vehicles v ON i.vehicle_id = v.id
	          WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if status != "" {
		query += fmt.Sprintf(" AND i.payment_status = $%d", argNum)
		args = append(args, status)
		argNum++
	}
	if clientID > 0 {
		query += fmt.Sprintf(" AND i.client_id = $%d", argNum)
		args = append(args, clientID)
		argNum++
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.InvoiceDetail
	for rows.Next() {
		d, err := scanInvoiceDetail(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, d)
	}
	return invoices, rows.Err()
}

// Delete removes an invoice, its items and its payment ledger
func (r *InvoiceRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE invoice_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// AddPayment appends a payment to the invoice ledger and updates the derived
// payment state, all under a row lock so concurrent payments serialize.
func (r *InvoiceRepository) AddPayment(ctx context.Context, payment *models.Payment) (*models.Invoice, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var inv models.Invoice
	err = tx.QueryRow(ctx,
		`SELECT id, invoice_number, total_amount, paid_amount, payment_status, access_code
		 FROM invoices WHERE id=$1 FOR UPDATE`, payment.InvoiceID,
	).Scan(&inv.ID, &inv.InvoiceNumber, &inv.TotalAmount, &inv.PaidAmount, &inv.PaymentStatus, &inv.AccessCode)
	if err != nil {
		return nil, err
	}

	newPaid, status, err := billing.ApplyPayment(inv.PaidAmount, inv.TotalAmount, payment.Amount)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO payments(invoice_id, amount, payment_method, transaction_id, payment_date, notes, recorded_by)
		 VALUES($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		payment.InvoiceID, payment.Amount, payment.PaymentMethod, payment.TransactionID,
		payment.PaymentDate, payment.Notes, payment.RecordedBy,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE invoices SET paid_amount=$1, payment_status=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		newPaid, status, inv.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	inv.PaidAmount = newPaid
	inv.PaymentStatus = status
	inv.BalanceDue = inv.TotalAmount.Sub(newPaid)
	return &inv, nil
}

// ForcePaymentStatus applies the administrative status override under the same
// row lock as AddPayment.
func (r *InvoiceRepository) ForcePaymentStatus(ctx context.Context, id int, target models.PaymentStatus) (*models.Invoice, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var inv models.Invoice
	err = tx.QueryRow(ctx,
		`SELECT id, invoice_number, total_amount, paid_amount, payment_status, access_code
		 FROM invoices WHERE id=$1 FOR UPDATE`, id,
	).Scan(&inv.ID, &inv.InvoiceNumber, &inv.TotalAmount, &inv.PaidAmount, &inv.PaymentStatus, &inv.AccessCode)
	if err != nil {
		return nil, err
	}

	newPaid, err := billing.ForcePaymentStatus(target, inv.PaidAmount, inv.TotalAmount)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE invoices SET paid_amount=$1, payment_status=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		newPaid, target, inv.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	inv.PaidAmount = newPaid
	inv.PaymentStatus = target
	inv.BalanceDue = inv.TotalAmount.Sub(newPaid)
	return &inv, nil
}

// ListPayments returns the payment ledger for an invoice, oldest first
func (r *InvoiceRepository) ListPayments(ctx context.Context, invoiceID int) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, invoice_id, amount, payment_method, COALESCE(transaction_id, ''),
		        payment_date, COALESCE(notes, ''), COALESCE(recorded_by, 0), created_at
		 FROM payments WHERE invoice_id=$1 ORDER BY payment_date, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentMethod, &p.TransactionID,
			&p.PaymentDate, &p.Notes, &p.RecordedBy, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// insertLineItems is shared by the invoice and quotation repositories
func insertLineItems(ctx context.Context, tx pgx.Tx, table, fkColumn string, docID int, items []models.LineItem) error {
	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO `+table+`(`+fkColumn+`, item_type, name, hsn_sac, quantity, rate, discount, tax_rate, line_total)
			 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			docID, item.ItemType, item.Name, item.HSNSAC, item.Quantity, item.Rate,
			item.Discount, item.TaxRate, item.LineTotal,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanLineItems(rows pgx.Rows) ([]models.LineItem, error) {
	items := []models.LineItem{}
	for rows.Next() {
		var it models.LineItem
		err := rows.Scan(&it.ID, &it.ItemType, &it.Name, &it.HSNSAC, &it.Quantity,
			&it.Rate, &it.Discount, &it.TaxRate, &it.LineTotal)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SumPaidAmount recomputes the paid total from the ledger (consistency check)
func (r *InvoiceRepository) SumPaidAmount(ctx context.Context, invoiceID int) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id=$1`, invoiceID).Scan(&sum)
	return sum, err
}
