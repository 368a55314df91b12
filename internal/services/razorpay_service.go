package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"
	"garage-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// RazorpayService creates gateway orders for invoice balances and turns
// verified callbacks into ledger payments.
type RazorpayService struct {
	orders        *repositories.OnlineOrderRepository
	invoices      InvoiceStore
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpayService(keyID, keySecret, webhookSecret string,
	orders *repositories.OnlineOrderRepository, invoices InvoiceStore) *RazorpayService {
	return &RazorpayService{
		orders:        orders,
		invoices:      invoices,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// IsEnabled reports whether gateway credentials are configured
func (s *RazorpayService) IsEnabled() bool {
	return s.keyID != "" && s.keySecret != ""
}

func (s *RazorpayService) client() *razorpay.Client {
	if !s.IsEnabled() {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// CreateOrder creates a Razorpay order for an invoice. The amount must not
// exceed the balance due, same rule as a cash payment.
func (s *RazorpayService) CreateOrder(ctx context.Context, invoiceID int, req *models.CreateOnlineOrderRequest) (*models.CreateOnlineOrderResponse, error) {
	client := s.client()
	if client == nil {
		return nil, fmt.Errorf("online payments are not configured")
	}

	invoice, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, err
	}

	amount := req.Amount
	if amount.IsZero() {
		amount = invoice.BalanceDue
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, billing.Invalid("amount", "nothing due on invoice %s", invoice.InvoiceNumber)
	}
	if amount.GreaterThan(invoice.BalanceDue) {
		return nil, billing.Invalid("amount", "payment of %s exceeds balance due of %s",
			amount.StringFixed(2), invoice.BalanceDue.StringFixed(2))
	}

	// Razorpay bills in paise
	amountPaise := amount.Mul(decimal.NewFromInt(100)).IntPart()

	orderData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("inv_%d_%d", invoice.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"invoice_number": invoice.InvoiceNumber,
			"client_name":    invoice.ClientName,
		},
	}

	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing order id: %v", order)
	}

	record := &models.OnlineOrder{
		InvoiceID:       invoice.ID,
		RazorpayOrderID: orderID,
		Amount:          amount,
	}
	if err := s.orders.Create(ctx, record); err != nil {
		return nil, err
	}

	return &models.CreateOnlineOrderResponse{
		OrderID:     orderID,
		AmountPaise: amountPaise,
		Currency:    "INR",
		KeyID:       s.keyID,
	}, nil
}

// VerifyPayment checks the callback signature and records the payment on the
// invoice ledger. Re-verification of an already settled order is a no-op.
func (s *RazorpayService) VerifyPayment(ctx context.Context, req *models.VerifyOnlinePaymentRequest) (*models.Invoice, error) {
	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		_ = s.orders.MarkFailed(ctx, req.RazorpayOrderID, "Invalid signature")
		return nil, billing.Invalid("razorpay_signature", "invalid payment signature")
	}

	order, err := s.orders.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, err
	}

	if order.Status == "success" {
		detail, err := s.invoices.Get(ctx, order.InvoiceID)
		if err != nil {
			return nil, err
		}
		return &detail.Invoice, nil
	}

	payment := &models.Payment{
		InvoiceID:     order.InvoiceID,
		Amount:        order.Amount,
		PaymentMethod: "UPI",
		TransactionID: req.RazorpayPaymentID,
		PaymentDate:   timeutil.Now(),
		Notes:         fmt.Sprintf("Online payment via Razorpay order %s", order.RazorpayOrderID),
	}

	invoice, err := s.invoices.AddPayment(ctx, payment)
	if err != nil {
		_ = s.orders.MarkFailed(ctx, req.RazorpayOrderID, err.Error())
		return nil, err
	}

	if err := s.orders.MarkSuccess(ctx, req.RazorpayOrderID); err != nil {
		log.Printf("[Razorpay] Failed to mark order %s settled: %v", req.RazorpayOrderID, err)
	}

	return invoice, nil
}

// verifySignature verifies the Razorpay payment signature
func (s *RazorpayService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(data))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature verifies the webhook signature header
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return true // Skip verification if not configured
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessWebhook handles asynchronous gateway events
func (s *RazorpayService) ProcessWebhook(ctx context.Context, event string, payload map[string]interface{}) error {
	entity := webhookPaymentEntity(payload)

	switch event {
	case "payment.captured":
		orderID, _ := entity["order_id"].(string)
		paymentID, _ := entity["id"].(string)
		if orderID == "" {
			return fmt.Errorf("missing order_id in webhook")
		}
		_, err := s.VerifyPayment(ctx, &models.VerifyOnlinePaymentRequest{
			RazorpayOrderID:   orderID,
			RazorpayPaymentID: paymentID,
			RazorpaySignature: s.signFor(orderID, paymentID),
		})
		return err
	case "payment.failed":
		orderID, _ := entity["order_id"].(string)
		reason := "Payment failed"
		if desc, ok := entity["error_description"].(string); ok && desc != "" {
			reason = desc
		}
		if orderID != "" {
			return s.orders.MarkFailed(ctx, orderID, reason)
		}
		return nil
	default:
		log.Printf("[Razorpay] Unhandled webhook event: %s", event)
		return nil
	}
}

// signFor regenerates the expected signature so the webhook path can reuse
// the single verification flow.
func (s *RazorpayService) signFor(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func webhookPaymentEntity(payload map[string]interface{}) map[string]interface{} {
	paymentEntity, ok := payload["payment"].(map[string]interface{})
	if !ok {
		paymentEntity = payload
	}
	entity, ok := paymentEntity["entity"].(map[string]interface{})
	if !ok {
		entity = paymentEntity
	}
	return entity
}
