package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxMode selects how GST is applied to a document.
type TaxMode string

const (
	TaxDisabled   TaxMode = "disabled"
	TaxIntraState TaxMode = "intra_state" // CGST + SGST split
	TaxInterState TaxMode = "inter_state" // IGST only
)

// Quotation lifecycle states.
type QuotationStatus string

const (
	QuotationPending   QuotationStatus = "pending"
	QuotationAccepted  QuotationStatus = "accepted"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationExpired   QuotationStatus = "expired"
	QuotationConverted QuotationStatus = "converted"
)

// Invoice payment states, derived from paid amount vs total.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

// Line item kinds.
const (
	ItemKindService = "service"
	ItemKindPart    = "part"
)

// LineItem is one priced entry on an invoice or quotation. Items are owned by
// their document and replaced wholesale on update, never patched in place.
type LineItem struct {
	ID        int             `json:"id"`
	ItemType  string          `json:"item_type"`
	Name      string          `json:"name"`
	HSNSAC    string          `json:"hsn_sac"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Discount  decimal.Decimal `json:"discount"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	LineTotal decimal.Decimal `json:"total"`
}

type Invoice struct {
	ID             int             `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	ClientID       int             `json:"client_id"`
	VehicleID      int             `json:"vehicle_id"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date"`
	TaxMode        TaxMode         `json:"tax_mode"`
	CGSTRate       decimal.Decimal `json:"cgst_rate"`
	SGSTRate       decimal.Decimal `json:"sgst_rate"`
	IGSTRate       decimal.Decimal `json:"igst_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	CGSTAmount     decimal.Decimal `json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `json:"sgst_amount"`
	IGSTAmount     decimal.Decimal `json:"igst_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	RoundOff       decimal.Decimal `json:"round_off"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	AccessCode     string          `json:"access_code"`
	Notes          string          `json:"notes"`
	CreatedBy      int             `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Quotation struct {
	ID              int             `json:"id"`
	QuotationNumber string          `json:"quotation_number"`
	ClientID        int             `json:"client_id"`
	VehicleID       int             `json:"vehicle_id"`
	QuotationDate   time.Time       `json:"quotation_date"`
	ValidUntil      *time.Time      `json:"valid_until"`
	TaxMode         TaxMode         `json:"tax_mode"`
	CGSTRate        decimal.Decimal `json:"cgst_rate"`
	SGSTRate        decimal.Decimal `json:"sgst_rate"`
	IGSTRate        decimal.Decimal `json:"igst_rate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	RoundOff        decimal.Decimal `json:"round_off"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          QuotationStatus `json:"status"`
	Notes           string          `json:"notes"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// InvoiceDetail is an invoice joined with client/vehicle display data and items.
type InvoiceDetail struct {
	Invoice
	ClientName          string     `json:"client_name"`
	ClientPhone         string     `json:"client_phone"`
	ClientGSTIN         string     `json:"client_gstin,omitempty"`
	VehicleRegistration string     `json:"vehicle_registration"`
	VehicleDescription  string     `json:"vehicle_description"`
	Items               []LineItem `json:"items"`
}

type QuotationDetail struct {
	Quotation
	ClientName          string     `json:"client_name"`
	VehicleRegistration string     `json:"vehicle_registration"`
	Items               []LineItem `json:"items"`
}

// PublicInvoiceView is the reduced projection returned for unauthenticated
// access-code lookups. No internal foreign keys beyond the document's own ID.
type PublicInvoiceView struct {
	InvoiceNumber       string          `json:"invoice_number"`
	ClientName          string          `json:"client_name"`
	VehicleRegistration string          `json:"vehicle_registration"`
	InvoiceDate         time.Time       `json:"invoice_date"`
	DueDate             *time.Time      `json:"due_date"`
	TaxMode             TaxMode         `json:"tax_mode"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	CGSTAmount          decimal.Decimal `json:"cgst_amount"`
	SGSTAmount          decimal.Decimal `json:"sgst_amount"`
	IGSTAmount          decimal.Decimal `json:"igst_amount"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	RoundOff            decimal.Decimal `json:"round_off"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	Items               []LineItem      `json:"items"`
}

// LineItemRequest is one item in a document create/update payload.
type LineItemRequest struct {
	ItemType string          `json:"item_type"`
	Name     string          `json:"name"`
	HSNSAC   string          `json:"hsn_sac"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Discount decimal.Decimal `json:"discount"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest covers both POST and PUT; items replace the existing
// set entirely. Client-supplied totals are a display hint only and are checked
// against the server-side recomputation.
type CreateInvoiceRequest struct {
	ClientID    int              `json:"client_id"`
	VehicleID   int              `json:"vehicle_id"`
	InvoiceDate string           `json:"invoice_date"`
	DueDate     string           `json:"due_date"`
	TaxMode     TaxMode          `json:"tax_mode"`
	CGSTRate    *decimal.Decimal `json:"cgst_rate"`
	SGSTRate    *decimal.Decimal `json:"sgst_rate"`
	IGSTRate    *decimal.Decimal `json:"igst_rate"`
	Discount    decimal.Decimal  `json:"discount_amount"`
	RoundOff    decimal.Decimal  `json:"round_off"`
	AutoRound   bool             `json:"auto_round"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Notes       string           `json:"notes"`
	Items       []LineItemRequest `json:"items"`
}

type CreateQuotationRequest struct {
	ClientID      int              `json:"client_id"`
	VehicleID     int              `json:"vehicle_id"`
	QuotationDate string           `json:"quotation_date"`
	ValidUntil    string           `json:"valid_until"`
	TaxMode       TaxMode          `json:"tax_mode"`
	CGSTRate      *decimal.Decimal `json:"cgst_rate"`
	SGSTRate      *decimal.Decimal `json:"sgst_rate"`
	IGSTRate      *decimal.Decimal `json:"igst_rate"`
	Discount      decimal.Decimal  `json:"discount_amount"`
	RoundOff      decimal.Decimal  `json:"round_off"`
	AutoRound     bool             `json:"auto_round"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	Notes         string           `json:"notes"`
	Items         []LineItemRequest `json:"items"`
}

// UpdateInvoiceStatusRequest is the administrative status override.
type UpdateInvoiceStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// QuotationVersion is one entry in a revision-group listing.
type QuotationVersion struct {
	ID              int             `json:"id"`
	QuotationNumber string          `json:"quotation_number"`
	Version         int             `json:"version"`
	VersionLabel    string          `json:"version_label"`
	Status          QuotationStatus `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	QuotationDate   time.Time       `json:"quotation_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// QuotationStats is the analytics breakdown for quotations.
type QuotationStats struct {
	Total           int             `json:"total_quotations"`
	ByStatus        map[string]int  `json:"status_breakdown"`
	TotalValue      decimal.Decimal `json:"total_value"`
	AcceptedValue   decimal.Decimal `json:"accepted_value"`
	ConvertedValue  decimal.Decimal `json:"converted_value"`
	ConversionRate  float64         `json:"conversion_rate"`
	AcceptanceRate  float64         `json:"acceptance_rate"`
	AutoExpired     int64           `json:"auto_expired"`
}
