package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accepted payment methods.
var PaymentMethods = []string{"Cash", "Card", "UPI", "Bank Transfer", "Cheque"}

// Payment is one append-only ledger row against an invoice. Payments are never
// updated or deleted; history is reconstructed by reading the ledger.
type Payment struct {
	ID            int             `json:"id"`
	InvoiceID     int             `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   time.Time       `json:"payment_date"`
	Notes         string          `json:"notes,omitempty"`
	RecordedBy    int             `json:"recorded_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	PaymentDate   string          `json:"payment_date"`
	Notes         string          `json:"notes"`
}

// OnlineOrder tracks a razorpay order created for an invoice until the
// gateway callback verifies it.
type OnlineOrder struct {
	ID              int             `json:"id"`
	InvoiceID       int             `json:"invoice_id"`
	RazorpayOrderID string          `json:"razorpay_order_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"` // created, success, failed
	FailureReason   string          `json:"failure_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateOnlineOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CreateOnlineOrderResponse struct {
	OrderID     string `json:"order_id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
}

type VerifyOnlinePaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
