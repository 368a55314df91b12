package billing

import (
	"garage-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Quotation transitions: pending -> accepted/rejected/expired, accepted ->
// converted. rejected, expired and converted are terminal. expire is an
// idempotent no-op on an already-expired quotation.
func CheckQuotationTransition(current, target models.QuotationStatus) error {
	if current == models.QuotationExpired && target == models.QuotationExpired {
		return nil
	}
	allowed := map[models.QuotationStatus][]models.QuotationStatus{
		models.QuotationPending:  {models.QuotationAccepted, models.QuotationRejected, models.QuotationExpired},
		models.QuotationAccepted: {models.QuotationConverted},
	}
	for _, s := range allowed[current] {
		if s == target {
			return nil
		}
	}
	return &InvalidTransitionError{Current: string(current), Attempted: string(target)}
}

// DerivePaymentStatus maps paid vs total to the invoice payment state. It is
// the single rule for both payment application and the admin status override.
func DerivePaymentStatus(paid, total decimal.Decimal) models.PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return models.PaymentPending
	case paid.GreaterThanOrEqual(total):
		return models.PaymentPaid
	default:
		return models.PaymentPartiallyPaid
	}
}

// ApplyPayment validates a payment amount against the current invoice state
// and returns the new paid amount and derived status. Overpayment is rejected
// rather than clamped.
func ApplyPayment(paid, total, amount decimal.Decimal) (decimal.Decimal, models.PaymentStatus, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return paid, "", Invalid("amount", "payment amount must be positive")
	}
	remaining := total.Sub(paid)
	if amount.GreaterThan(remaining) {
		return paid, "", Invalid("amount", "payment of %s exceeds balance due of %s",
			amount.StringFixed(2), remaining.StringFixed(2))
	}
	newPaid := RoundMoney(paid.Add(amount))
	return newPaid, DerivePaymentStatus(newPaid, total), nil
}

// ForcePaymentStatus implements the administrative status override while
// keeping paid amount and balance consistent with the forced state.
func ForcePaymentStatus(target models.PaymentStatus, paid, total decimal.Decimal) (decimal.Decimal, error) {
	switch target {
	case models.PaymentPaid:
		return total, nil
	case models.PaymentPending:
		return decimal.Zero, nil
	case models.PaymentPartiallyPaid:
		if paid.LessThanOrEqual(decimal.Zero) || paid.GreaterThanOrEqual(total) {
			return paid, Invalid("payment_status",
				"cannot force partially_paid: ledger shows %s paid of %s", paid.StringFixed(2), total.StringFixed(2))
		}
		return paid, nil
	default:
		return paid, Invalid("payment_status", "unknown payment status %q", target)
	}
}
