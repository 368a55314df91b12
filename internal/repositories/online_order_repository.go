package repositories

import (
	"context"
	"fmt"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineOrderRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineOrderRepository(db *pgxpool.Pool) *OnlineOrderRepository {
	return &OnlineOrderRepository{DB: db}
}

// Create records a gateway order created for an invoice
func (r *OnlineOrderRepository) Create(ctx context.Context, order *models.OnlineOrder) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO online_orders(invoice_id, razorpay_order_id, amount, status)
		 VALUES($1, $2, $3, 'created')
		 RETURNING id, created_at`,
		order.InvoiceID, order.RazorpayOrderID, order.Amount,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create online order: %w", err)
	}
	order.Status = "created"
	return nil
}

// GetByOrderID retrieves an order by its Razorpay order ID
func (r *OnlineOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OnlineOrder, error) {
	order := &models.OnlineOrder{}
	err := r.DB.QueryRow(ctx,
		`SELECT id, invoice_id, razorpay_order_id, amount, status, COALESCE(failure_reason, ''), created_at
		 FROM online_orders WHERE razorpay_order_id = $1`, orderID,
	).Scan(&order.ID, &order.InvoiceID, &order.RazorpayOrderID, &order.Amount,
		&order.Status, &order.FailureReason, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkSuccess marks the order as paid once the signature verifies
func (r *OnlineOrderRepository) MarkSuccess(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_orders SET status='success' WHERE razorpay_order_id=$1`, orderID)
	return err
}

// MarkFailed records a failed or rejected gateway payment
func (r *OnlineOrderRepository) MarkFailed(ctx context.Context, orderID, reason string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_orders SET status='failed', failure_reason=$2 WHERE razorpay_order_id=$1`,
		orderID, reason)
	return err
}
