package billing

import (
	"testing"

	"garage-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckQuotationTransition(t *testing.T) {
	cases := []struct {
		name    string
		current models.QuotationStatus
		target  models.QuotationStatus
		ok      bool
	}{
		{"pending to accepted", models.QuotationPending, models.QuotationAccepted, true},
		{"pending to rejected", models.QuotationPending, models.QuotationRejected, true},
		{"pending to expired", models.QuotationPending, models.QuotationExpired, true},
		{"accepted to converted", models.QuotationAccepted, models.QuotationConverted, true},
		{"reject on accepted", models.QuotationAccepted, models.QuotationRejected, false},
		{"accept on rejected", models.QuotationRejected, models.QuotationAccepted, false},
		{"convert on pending", models.QuotationPending, models.QuotationConverted, false},
		{"accept on expired", models.QuotationExpired, models.QuotationAccepted, false},
		{"expire on expired is a no-op", models.QuotationExpired, models.QuotationExpired, true},
		{"anything on converted", models.QuotationConverted, models.QuotationAccepted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckQuotationTransition(tc.current, tc.target)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var ite *InvalidTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, string(tc.current), ite.Current)
			assert.Equal(t, string(tc.target), ite.Attempted)
		})
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	total := dec("1000")

	assert.Equal(t, models.PaymentPending, DerivePaymentStatus(decimal.Zero, total))
	assert.Equal(t, models.PaymentPartiallyPaid, DerivePaymentStatus(dec("300"), total))
	assert.Equal(t, models.PaymentPaid, DerivePaymentStatus(dec("1000"), total))
	assert.Equal(t, models.PaymentPaid, DerivePaymentStatus(dec("1000.00"), total))
}

// Payments of 300, 400 and 300 against a 1000 invoice: the first two land on
// partially_paid, the third would overpay against the 300 balance and is
// rejected outright.
func TestApplyPayment_Sequence(t *testing.T) {
	total := dec("1000")
	paid := decimal.Zero

	paid, status, err := ApplyPayment(paid, total, dec("300"))
	require.NoError(t, err)
	assert.Equal(t, "300.00", paid.StringFixed(2))
	assert.Equal(t, models.PaymentPartiallyPaid, status)

	paid, status, err = ApplyPayment(paid, total, dec("400"))
	require.NoError(t, err)
	assert.Equal(t, "700.00", paid.StringFixed(2))
	assert.Equal(t, models.PaymentPartiallyPaid, status)

	_, _, err = ApplyPayment(paid, total, dec("400"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	paid, status, err = ApplyPayment(paid, total, dec("300"))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", paid.StringFixed(2))
	assert.Equal(t, models.PaymentPaid, status)
}

func TestApplyPayment_RejectsNonPositive(t *testing.T) {
	var verr *ValidationError

	_, _, err := ApplyPayment(decimal.Zero, dec("500"), decimal.Zero)
	require.ErrorAs(t, err, &verr)

	_, _, err = ApplyPayment(decimal.Zero, dec("500"), dec("-10"))
	require.ErrorAs(t, err, &verr)
}

func TestApplyPayment_ExactBalance(t *testing.T) {
	paid, status, err := ApplyPayment(dec("999.99"), dec("1000"), dec("0.01"))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", paid.StringFixed(2))
	assert.Equal(t, models.PaymentPaid, status)
}

func TestForcePaymentStatus(t *testing.T) {
	total := dec("1000")

	paid, err := ForcePaymentStatus(models.PaymentPaid, dec("300"), total)
	require.NoError(t, err)
	assert.True(t, paid.Equal(total))

	paid, err = ForcePaymentStatus(models.PaymentPending, dec("300"), total)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())

	paid, err = ForcePaymentStatus(models.PaymentPartiallyPaid, dec("300"), total)
	require.NoError(t, err)
	assert.Equal(t, "300.00", paid.StringFixed(2))

	_, err = ForcePaymentStatus(models.PaymentPartiallyPaid, decimal.Zero, total)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = ForcePaymentStatus("settled", dec("300"), total)
	require.ErrorAs(t, err, &verr)
}
