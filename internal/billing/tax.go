package billing

import (
	"garage-backend/internal/models"

	"github.com/shopspring/decimal"
)

// GST convention: intra-state splits the rate in half between CGST and SGST,
// inter-state charges the full rate as IGST.
var (
	DefaultCGSTRate = decimal.NewFromInt(9)
	DefaultSGSTRate = decimal.NewFromInt(9)
	DefaultIGSTRate = decimal.NewFromInt(18)
)

// TaxRates holds the document-level GST percentages.
type TaxRates struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

func DefaultTaxRates() TaxRates {
	return TaxRates{CGST: DefaultCGSTRate, SGST: DefaultSGSTRate, IGST: DefaultIGSTRate}
}

// Totals is the full money breakdown of a document, always recomputed
// server-side from line items.
type Totals struct {
	Subtotal decimal.Decimal
	Taxable  decimal.Decimal
	CGST     decimal.Decimal
	SGST     decimal.Decimal
	IGST     decimal.Decimal
	Discount decimal.Decimal
	RoundOff decimal.Decimal
	Total    decimal.Decimal
}

// BuildLineItems validates raw item requests and computes per-line totals.
// Line total = quantity x rate - discount; tax is never folded into it.
func BuildLineItems(reqs []models.LineItemRequest) ([]models.LineItem, error) {
	if len(reqs) == 0 {
		return nil, Invalid("items", "at least one line item is required")
	}

	items := make([]models.LineItem, 0, len(reqs))
	for i, r := range reqs {
		kind := r.ItemType
		if kind == "" {
			kind = models.ItemKindService
		}
		if kind != models.ItemKindService && kind != models.ItemKindPart {
			return nil, Invalid("items", "item %d: unknown item type %q", i+1, r.ItemType)
		}
		if r.Name == "" {
			return nil, Invalid("items", "item %d: name is required", i+1)
		}
		if r.Quantity.IsNegative() {
			return nil, Invalid("items", "item %d: quantity cannot be negative", i+1)
		}
		if r.Rate.IsNegative() {
			return nil, Invalid("items", "item %d: rate cannot be negative", i+1)
		}
		if r.Discount.IsNegative() {
			return nil, Invalid("items", "item %d: discount cannot be negative", i+1)
		}
		if r.TaxRate.IsNegative() || r.TaxRate.GreaterThan(hundred) {
			return nil, Invalid("items", "item %d: tax rate must be between 0 and 100", i+1)
		}

		qty := r.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		taxRate := r.TaxRate
		if taxRate.IsZero() {
			taxRate = DefaultIGSTRate
		}

		items = append(items, models.LineItem{
			ItemType:  kind,
			Name:      r.Name,
			HSNSAC:    defaultHSNSAC(kind, r.HSNSAC),
			Quantity:  qty,
			Rate:      r.Rate,
			Discount:  r.Discount,
			TaxRate:   taxRate,
			LineTotal: RoundMoney(qty.Mul(r.Rate).Sub(r.Discount)),
		})
	}
	return items, nil
}

// HSN/SAC fallbacks used on Indian tax documents when the caller supplies none.
func defaultHSNSAC(kind, given string) string {
	if given != "" {
		return given
	}
	if kind == models.ItemKindPart {
		return "8708"
	}
	return "9986"
}

// ComputeTotals derives the document amounts from its line items. The same
// input always yields the same output; callers persist only what this returns.
func ComputeTotals(items []models.LineItem, mode models.TaxMode, rates TaxRates, discount, roundOff decimal.Decimal, autoRound bool) (Totals, error) {
	if err := validateTaxMode(mode, rates); err != nil {
		return Totals{}, err
	}
	if discount.IsNegative() {
		return Totals{}, Invalid("discount_amount", "discount cannot be negative")
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Quantity.Mul(it.Rate).Sub(it.Discount))
	}
	subtotal = RoundMoney(subtotal)

	taxable := RoundMoney(subtotal.Sub(discount))
	if taxable.IsNegative() {
		return Totals{}, Invalid("discount_amount", "discount exceeds subtotal")
	}

	t := Totals{Subtotal: subtotal, Taxable: taxable, Discount: RoundMoney(discount)}
	switch mode {
	case models.TaxDisabled:
		t.CGST, t.SGST, t.IGST = decimal.Zero, decimal.Zero, decimal.Zero
	case models.TaxIntraState:
		t.CGST = RoundMoney(taxable.Mul(rates.CGST).Div(hundred))
		t.SGST = RoundMoney(taxable.Mul(rates.SGST).Div(hundred))
		t.IGST = decimal.Zero
	case models.TaxInterState:
		t.IGST = RoundMoney(taxable.Mul(rates.IGST).Div(hundred))
		t.CGST, t.SGST = decimal.Zero, decimal.Zero
	}

	beforeRound := taxable.Add(t.CGST).Add(t.SGST).Add(t.IGST)
	if autoRound {
		t.RoundOff = RoundOffFor(beforeRound)
	} else {
		t.RoundOff = RoundMoney(roundOff)
	}
	t.Total = RoundMoney(beforeRound.Add(t.RoundOff))
	return t, nil
}

func validateTaxMode(mode models.TaxMode, rates TaxRates) error {
	switch mode {
	case models.TaxDisabled, models.TaxIntraState, models.TaxInterState:
	default:
		return Invalid("tax_mode", "unsupported tax mode %q", mode)
	}
	for _, r := range []struct {
		name string
		rate decimal.Decimal
	}{
		{"cgst_rate", rates.CGST},
		{"sgst_rate", rates.SGST},
		{"igst_rate", rates.IGST},
	} {
		if r.rate.IsNegative() || r.rate.GreaterThan(hundred) {
			return Invalid(r.name, "tax rate must be between 0 and 100")
		}
	}
	return nil
}

// CheckClientTotal compares a client-supplied display total against the
// recomputed one and rejects divergence beyond the rounding tolerance.
func CheckClientTotal(client *decimal.Decimal, computed decimal.Decimal) error {
	if client == nil {
		return nil
	}
	if client.Sub(computed).Abs().GreaterThan(TotalTolerance) {
		return Invalid("total_amount", "supplied total %s does not match computed total %s",
			client.StringFixed(2), computed.StringFixed(2))
	}
	return nil
}
