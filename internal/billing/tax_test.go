package billing

import (
	"testing"

	"garage-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func oilChangeItems(t *testing.T) []models.LineItem {
	t.Helper()
	items, err := BuildLineItems([]models.LineItemRequest{
		{ItemType: "service", Name: "Oil Change", Quantity: dec("1"), Rate: dec("800")},
		{ItemType: "part", Name: "Oil Filter", Quantity: dec("1"), Rate: dec("300")},
	})
	require.NoError(t, err)
	return items
}

func TestComputeTotals_IntraState(t *testing.T) {
	items := oilChangeItems(t)

	totals, err := ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), decimal.Zero, decimal.Zero, false)
	require.NoError(t, err)

	assert.Equal(t, "1100.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "1100.00", totals.Taxable.StringFixed(2))
	assert.Equal(t, "99.00", totals.CGST.StringFixed(2))
	assert.Equal(t, "99.00", totals.SGST.StringFixed(2))
	assert.Equal(t, "0.00", totals.IGST.StringFixed(2))
	assert.Equal(t, "1298.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_InterState(t *testing.T) {
	items := oilChangeItems(t)

	totals, err := ComputeTotals(items, models.TaxInterState, DefaultTaxRates(), decimal.Zero, decimal.Zero, false)
	require.NoError(t, err)

	assert.Equal(t, "0.00", totals.CGST.StringFixed(2))
	assert.Equal(t, "0.00", totals.SGST.StringFixed(2))
	assert.Equal(t, "198.00", totals.IGST.StringFixed(2))
	assert.Equal(t, "1298.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_TaxDisabled(t *testing.T) {
	items := oilChangeItems(t)

	totals, err := ComputeTotals(items, models.TaxDisabled, DefaultTaxRates(), decimal.Zero, decimal.Zero, false)
	require.NoError(t, err)

	assert.True(t, totals.CGST.IsZero())
	assert.True(t, totals.SGST.IsZero())
	assert.True(t, totals.IGST.IsZero())
	assert.Equal(t, "1100.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_Deterministic(t *testing.T) {
	items := oilChangeItems(t)

	first, err := ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), dec("100"), decimal.Zero, true)
	require.NoError(t, err)
	second, err := ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), dec("100"), decimal.Zero, true)
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.CGST.Equal(second.CGST))
	assert.True(t, first.RoundOff.Equal(second.RoundOff))
}

func TestComputeTotals_Reconciliation(t *testing.T) {
	items, err := BuildLineItems([]models.LineItemRequest{
		{ItemType: "service", Name: "Wheel Alignment", Quantity: dec("1"), Rate: dec("650.50")},
		{ItemType: "part", Name: "Brake Pads", Quantity: dec("2"), Rate: dec("745.25"), Discount: dec("90")},
	})
	require.NoError(t, err)

	totals, err := ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), dec("50"), decimal.Zero, true)
	require.NoError(t, err)

	// grand total = taxable + cgst + sgst + igst + roundOff
	recon := totals.Taxable.Add(totals.CGST).Add(totals.SGST).Add(totals.IGST).Add(totals.RoundOff)
	assert.True(t, totals.Total.Equal(recon), "total %s != reconciled %s", totals.Total, recon)
	// auto round-off lands on a whole rupee
	assert.True(t, totals.Total.Equal(totals.Total.Round(0)))
}

func TestComputeTotals_DocumentDiscount(t *testing.T) {
	items := oilChangeItems(t)

	totals, err := ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), dec("100"), decimal.Zero, false)
	require.NoError(t, err)

	assert.Equal(t, "1100.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "1000.00", totals.Taxable.StringFixed(2))
	assert.Equal(t, "90.00", totals.CGST.StringFixed(2))
	assert.Equal(t, "1180.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_ExplicitRoundOff(t *testing.T) {
	items, err := BuildLineItems([]models.LineItemRequest{
		{ItemType: "service", Name: "AC Service", Quantity: dec("1"), Rate: dec("1200.40")},
	})
	require.NoError(t, err)

	totals, err := ComputeTotals(items, models.TaxDisabled, DefaultTaxRates(), decimal.Zero, dec("-0.40"), false)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", totals.Total.StringFixed(2))
	assert.Equal(t, "-0.40", totals.RoundOff.StringFixed(2))
}

func TestBuildLineItems_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  models.LineItemRequest
	}{
		{"negative quantity", models.LineItemRequest{ItemType: "service", Name: "x", Quantity: dec("-1"), Rate: dec("10")}},
		{"negative rate", models.LineItemRequest{ItemType: "service", Name: "x", Quantity: dec("1"), Rate: dec("-10")}},
		{"negative discount", models.LineItemRequest{ItemType: "part", Name: "x", Quantity: dec("1"), Rate: dec("10"), Discount: dec("-5")}},
		{"tax rate above 100", models.LineItemRequest{ItemType: "part", Name: "x", Quantity: dec("1"), Rate: dec("10"), TaxRate: dec("101")}},
		{"unknown kind", models.LineItemRequest{ItemType: "labour", Name: "x", Quantity: dec("1"), Rate: dec("10")}},
		{"missing name", models.LineItemRequest{ItemType: "service", Quantity: dec("1"), Rate: dec("10")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildLineItems([]models.LineItemRequest{tc.req})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestBuildLineItems_Defaults(t *testing.T) {
	items, err := BuildLineItems([]models.LineItemRequest{
		{Name: "General Checkup", Rate: dec("500")},
		{ItemType: "part", Name: "Air Filter", Rate: dec("450")},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ItemKindService, items[0].ItemType)
	assert.Equal(t, "1", items[0].Quantity.String())
	assert.Equal(t, "9986", items[0].HSNSAC)
	assert.Equal(t, "8708", items[1].HSNSAC)
	assert.Equal(t, "500.00", items[0].LineTotal.StringFixed(2))
}

func TestComputeTotals_RejectsBadInput(t *testing.T) {
	items := oilChangeItems(t)

	_, err := ComputeTotals(items, "vat", DefaultTaxRates(), decimal.Zero, decimal.Zero, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = ComputeTotals(items, models.TaxIntraState, TaxRates{CGST: dec("150"), SGST: dec("9"), IGST: dec("18")}, decimal.Zero, decimal.Zero, false)
	require.ErrorAs(t, err, &verr)

	_, err = ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), dec("-10"), decimal.Zero, false)
	require.ErrorAs(t, err, &verr)

	_, err = ComputeTotals(items, models.TaxIntraState, DefaultTaxRates(), dec("5000"), decimal.Zero, false)
	require.ErrorAs(t, err, &verr, "discount exceeding subtotal")
}

func TestCheckClientTotal(t *testing.T) {
	computed := dec("1298.00")

	within := dec("1298.30")
	assert.NoError(t, CheckClientTotal(&within, computed))

	assert.NoError(t, CheckClientTotal(nil, computed))

	diverged := dec("1400.00")
	var verr *ValidationError
	assert.ErrorAs(t, CheckClientTotal(&diverged, computed), &verr)
}
