package usecase_test

import (
	"testing"

	"shopverse/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func taxRate(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	assert.NoError(t, err)
	return d
}

func TestComputePricing_SingleLine(t *testing.T) {
	got := usecase.ComputePricing([]usecase.PriceLine{
		{UnitPriceCents: 14999, Quantity: 1},
	}, taxRate(t, "0.085"), 1299)

	assert.Equal(t, int64(14999), got.SubtotalCents)
	// 14999 * 0.085 = 1274.915 → 1275
	assert.Equal(t, int64(1275), got.TaxCents)
	assert.Equal(t, int64(1299), got.ShippingCents)
	assert.Equal(t, int64(17573), got.TotalCents)
}

func TestComputePricing_MultipleLines(t *testing.T) {
	got := usecase.ComputePricing([]usecase.PriceLine{
		{UnitPriceCents: 2500, Quantity: 2},
		{UnitPriceCents: 999, Quantity: 3},
	}, taxRate(t, "0.085"), 1299)

	assert.Equal(t, int64(7997), got.SubtotalCents)
	// 7997 * 0.085 = 679.745 → 680
	assert.Equal(t, int64(680), got.TaxCents)
	assert.Equal(t, int64(9976), got.TotalCents)
}

func TestComputePricing_RoundHalfUp(t *testing.T) {
	// 1000 * 0.0855 = 85.5 → half upで86
	got := usecase.ComputePricing([]usecase.PriceLine{
		{UnitPriceCents: 1000, Quantity: 1},
	}, taxRate(t, "0.0855"), 0)

	assert.Equal(t, int64(86), got.TaxCents)
	assert.Equal(t, int64(1086), got.TotalCents)
}

func TestComputePricing_EmptyLines(t *testing.T) {
	got := usecase.ComputePricing(nil, taxRate(t, "0.085"), 1299)

	assert.Equal(t, int64(0), got.SubtotalCents)
	assert.Equal(t, int64(0), got.TaxCents)
	assert.Equal(t, int64(1299), got.TotalCents)
}

func TestComputePricing_Deterministic(t *testing.T) {
	lines := []usecase.PriceLine{
		{UnitPriceCents: 14999, Quantity: 2},
		{UnitPriceCents: 450, Quantity: 5},
	}
	rate := taxRate(t, "0.085")

	first := usecase.ComputePricing(lines, rate, 1299)
	second := usecase.ComputePricing(lines, rate, 1299)

	assert.Equal(t, first, second)
	assert.Equal(t, first.SubtotalCents+first.TaxCents+first.ShippingCents, first.TotalCents)
}
