package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exclusiveSettings(rate float64) Settings {
	return Settings{TaxEnabled: true, TaxMode: TaxExclusive, DefaultRate: rate, Currency: "INR"}
}

func TestComputeLineExclusive(t *testing.T) {
	line := ComputeLine(LineInput{CatalogPrice: 100, Quantity: 2}, 10, exclusiveSettings(12))

	require.InDelta(t, 200.0, line.GrossAmount, 0.0001)
	require.InDelta(t, 20.0, line.DiscountAmount, 0.0001)
	require.InDelta(t, 180.0, line.NetAmount, 0.0001)
	require.InDelta(t, 21.60, line.TaxAmount, 0.0001)
	require.InDelta(t, 202.0, line.LineTotal, 0.0001)
}

func TestComputeLineInclusive(t *testing.T) {
	s := Settings{TaxEnabled: true, TaxMode: TaxInclusive, DefaultRate: 12}
	line := ComputeLine(LineInput{CatalogPrice: 100, Quantity: 2}, 10, s)

	require.InDelta(t, 21.60, line.TaxAmount, 0.0001)
	require.InDelta(t, 180.0, line.LineTotal, 0.0001)
	// Inclusive mode never adds tax on top of the net amount.
	require.InDelta(t, line.NetAmount, 180.0, 0.0001)
}

func TestComputeLineTaxDisabled(t *testing.T) {
	s := Settings{TaxEnabled: false, TaxMode: TaxExclusive, DefaultRate: 12}
	line := ComputeLine(LineInput{CatalogPrice: 100, Quantity: 2}, 10, s)

	require.Zero(t, line.TaxAmount)
	require.InDelta(t, 180.0, line.LineTotal, 0.0001)
}

func TestComputeLinePriceOverride(t *testing.T) {
	override := 80.0
	line := ComputeLine(LineInput{CatalogPrice: 100, OverridePrice: &override, Quantity: 1}, 0, exclusiveSettings(0))
	require.InDelta(t, 80.0, line.UnitPrice, 0.0001)

	// A zero or negative override falls back to the catalog price.
	zero := 0.0
	line = ComputeLine(LineInput{CatalogPrice: 100, OverridePrice: &zero, Quantity: 1}, 0, exclusiveSettings(0))
	require.InDelta(t, 100.0, line.UnitPrice, 0.0001)
}

func TestComputeLineTaxRateOverride(t *testing.T) {
	override := 5.0
	line := ComputeLine(LineInput{CatalogPrice: 100, Quantity: 1, TaxRateOverride: &override}, 0, exclusiveSettings(18))
	require.InDelta(t, 5.0, line.TaxAmount, 0.0001)

	// An explicit zero override wins over the default rate.
	zero := 0.0
	line = ComputeLine(LineInput{CatalogPrice: 100, Quantity: 1, TaxRateOverride: &zero}, 0, exclusiveSettings(18))
	require.Zero(t, line.TaxAmount)
}

func TestSanitizePercent(t *testing.T) {
	assert.Zero(t, SanitizePercent(-5))
	assert.Zero(t, SanitizePercent(101))
	assert.Equal(t, 100.0, SanitizePercent(100))
	assert.Equal(t, 12.5, SanitizePercent(12.5))
}

func TestComputeLineNonNegative(t *testing.T) {
	prices := []float64{0, 0.99, 12.34, 55, 999.99}
	quantities := []int{1, 3, 10}
	discounts := []float64{0, 10, 50, 100}
	rates := []float64{0, 5, 12, 18, 28}

	for _, p := range prices {
		for _, q := range quantities {
			for _, d := range discounts {
				for _, r := range rates {
					line := ComputeLine(LineInput{CatalogPrice: p, Quantity: q}, d, exclusiveSettings(r))
					assert.GreaterOrEqual(t, line.TaxAmount, 0.0)
					assert.GreaterOrEqual(t, line.LineTotal, 0.0)
				}
			}
		}
	}
}

func TestComputeCartTotals(t *testing.T) {
	items := []LineInput{
		{CatalogPrice: 100, Quantity: 2},
		{CatalogPrice: 33.33, Quantity: 3},
	}
	lines, totals := ComputeCart(items, 10, exclusiveSettings(12))
	require.Len(t, lines, 2)

	// Subtotal sums unrounded gross amounts, rounded once at the end.
	require.InDelta(t, 299.99, totals.Subtotal, 0.0001)
	require.InDelta(t, 30.0, totals.TotalDiscount, 0.0001)

	// Grand total is the sum of already-rounded per-line totals, so it may
	// drift from subtotal-discount+tax by rounding; both views are kept.
	var sum float64
	for _, l := range lines {
		sum += l.LineTotal
	}
	require.InDelta(t, sum, totals.GrandTotal, 0.0001)
}

func TestComputeCartTaxDisabledInvariant(t *testing.T) {
	items := []LineInput{{CatalogPrice: 45.5, Quantity: 4}}
	s := Settings{TaxEnabled: false, TaxMode: TaxInclusive, DefaultRate: 18}
	lines, totals := ComputeCart(items, 0, s)
	require.Zero(t, totals.TotalTax)
	require.Zero(t, lines[0].TaxAmount)
	require.InDelta(t, lines[0].NetAmount, 182.0, 0.0001)
}

func TestDeriveTaxRateRoundTrip(t *testing.T) {
	rates := []float64{5, 12, 18, 28}
	for _, rate := range rates {
		line := ComputeLine(LineInput{CatalogPrice: 149.50, Quantity: 3}, 0, exclusiveSettings(rate))
		derived := DeriveTaxRate(line.TaxAmount, line.LineTotal)
		// Within rounding tolerance of the original rate: the line total loses
		// its decimals on persistence.
		assert.InEpsilon(t, rate, derived, 0.005)
	}
}

func TestDeriveTaxRateDegenerate(t *testing.T) {
	assert.Zero(t, DeriveTaxRate(0, 100))
	assert.Zero(t, DeriveTaxRate(100, 100))
	assert.Zero(t, DeriveTaxRate(120, 100))
}

func TestReturnAmountsProportional(t *testing.T) {
	line := ComputeLine(LineInput{CatalogPrice: 100, Quantity: 4}, 0, exclusiveSettings(12))

	tax, total := ReturnAmounts(line.UnitPrice, line.TaxAmount, 4, 1)
	require.InDelta(t, line.TaxAmount/4, tax, 0.01)
	require.InDelta(t, line.UnitPrice+line.TaxAmount/4, total, 0.01)

	tax, total = ReturnAmounts(line.UnitPrice, line.TaxAmount, 4, 4)
	require.InDelta(t, line.TaxAmount, tax, 0.01)
	require.InDelta(t, line.UnitPrice*4+line.TaxAmount, total, 0.01)
}

func TestReturnAmountsInvalidInput(t *testing.T) {
	tax, total := ReturnAmounts(100, 12, 0, 1)
	assert.Zero(t, tax)
	assert.Zero(t, total)

	tax, total = ReturnAmounts(100, 12, 4, 0)
	assert.Zero(t, tax)
	assert.Zero(t, total)
}
