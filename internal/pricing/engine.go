// Package pricing computes sale line amounts and cart totals.
//
// All computation is pure and side-effect free; settings are passed in
// explicitly rather than read from any ambient state. Persisted values carry
// asymmetric rounding (unit price and tax to two decimals, line total to the
// nearest whole currency unit) which must stay stable across releases because
// stored rows are reconstructed at print time from these rounded values.
package pricing

import "math"

// TaxMode selects how the tax component relates to the charged total.
type TaxMode string

const (
	// TaxInclusive reports tax as a component already contained in the net
	// amount; nothing is added on top.
	TaxInclusive TaxMode = "inclusive"
	// TaxExclusive adds the tax on top of the net amount.
	TaxExclusive TaxMode = "exclusive"
)

// Settings holds the account-level tax configuration read at checkout time.
type Settings struct {
	TaxEnabled  bool
	TaxMode     TaxMode
	DefaultRate float64
	Currency    string
}

// LineInput describes one cart entry before pricing.
type LineInput struct {
	CatalogPrice    float64
	OverridePrice   *float64
	Quantity        int
	TaxRateOverride *float64
}

// Line is the priced result for a single cart entry. UnitPrice, TaxAmount and
// LineTotal are rounded the way they are persisted; GrossAmount, DiscountAmount
// and NetAmount stay unrounded so cart aggregates round once at the end.
type Line struct {
	UnitPrice      float64
	Quantity       int
	GrossAmount    float64
	DiscountAmount float64
	NetAmount      float64
	TaxRate        float64
	TaxAmount      float64
	LineTotal      float64
}

// CartTotals aggregates a priced cart. GrandTotal is the sum of the already
// rounded per-line totals, not subtotal-discount+tax; small discrepancies
// between the two views are expected and part of the stored-data contract.
type CartTotals struct {
	Subtotal      float64
	TotalDiscount float64
	TotalTax      float64
	GrandTotal    float64
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundWhole rounds to the nearest whole currency unit.
func RoundWhole(v float64) float64 {
	return math.Round(v)
}

// SanitizePercent clamps a percentage to [0,100], treating out-of-range input
// as zero rather than failing. Lenient on purpose: the original system accepts
// malformed discount entry and prices without it.
func SanitizePercent(pct float64) float64 {
	if pct < 0 || pct > 100 {
		return 0
	}
	return pct
}

// SanitizeRate treats a negative tax rate as zero.
func SanitizeRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	return rate
}

// ComputeLine prices one cart entry under the given cart-wide discount and
// account settings.
func ComputeLine(in LineInput, discountPct float64, s Settings) Line {
	unitPrice := in.CatalogPrice
	if in.OverridePrice != nil && *in.OverridePrice > 0 {
		unitPrice = *in.OverridePrice
	}
	discountPct = SanitizePercent(discountPct)

	gross := unitPrice * float64(in.Quantity)
	discount := gross * discountPct / 100
	net := gross - discount

	rate := s.DefaultRate
	if in.TaxRateOverride != nil {
		rate = *in.TaxRateOverride
	}
	rate = SanitizeRate(rate)

	var tax, total float64
	switch {
	case !s.TaxEnabled:
		tax = 0
		total = net
	case s.TaxMode == TaxInclusive:
		tax = net * rate / 100
		total = net
	default:
		tax = net * rate / 100
		total = net + tax
	}

	return Line{
		UnitPrice:      Round2(unitPrice),
		Quantity:       in.Quantity,
		GrossAmount:    gross,
		DiscountAmount: discount,
		NetAmount:      net,
		TaxRate:        rate,
		TaxAmount:      Round2(tax),
		LineTotal:      RoundWhole(total),
	}
}

// ComputeCart prices every entry and aggregates cart totals. Subtotal,
// discount and tax sum the unrounded per-line values and round once at the
// end; GrandTotal sums the rounded per-line totals.
func ComputeCart(items []LineInput, discountPct float64, s Settings) ([]Line, CartTotals) {
	discountPct = SanitizePercent(discountPct)

	lines := make([]Line, 0, len(items))
	var subtotal, totalTax, grandTotal float64
	for _, in := range items {
		line := ComputeLine(in, discountPct, s)
		lines = append(lines, line)
		subtotal += line.GrossAmount
		if s.TaxEnabled {
			totalTax += line.NetAmount * line.TaxRate / 100
		}
		grandTotal += line.LineTotal
	}

	totals := CartTotals{
		Subtotal:      Round2(subtotal),
		TotalDiscount: Round2(subtotal * discountPct / 100),
		TotalTax:      Round2(totalTax),
		GrandTotal:    RoundWhole(grandTotal),
	}
	return lines, totals
}

// DeriveTaxRate reconstructs the effective tax percentage from the persisted
// tax amount and line total. Only these two values survive checkout; the rate
// and inclusive/exclusive flag are not stored.
func DeriveTaxRate(taxAmount, lineTotal float64) float64 {
	if lineTotal > taxAmount && taxAmount != 0 {
		return taxAmount / (lineTotal - taxAmount) * 100
	}
	return 0
}

// ReturnAmounts scales the tax of an original sale line proportionally for a
// partial return of returnQty out of originalQty units and reports the total
// refund (unit price times returned quantity plus the scaled tax).
func ReturnAmounts(unitPrice, originalTax float64, originalQty, returnQty int) (taxAmount, total float64) {
	if originalQty <= 0 || returnQty <= 0 {
		return 0, 0
	}
	taxAmount = originalTax * float64(returnQty) / float64(originalQty)
	total = unitPrice*float64(returnQty) + taxAmount
	return Round2(taxAmount), Round2(total)
}
