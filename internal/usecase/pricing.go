package usecase

import "github.com/shopspring/decimal"

// 金額計算（純粋関数）。
// 表示用の見積もりでも注文確定でも同じ入力なら同じ結果になること。

type PriceLine struct {
	UnitPriceCents int64
	Quantity       int64
}

type PriceBreakdown struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// subtotal = Σ(単価×数量)
// tax = round(subtotal × rate)、0.5は切り上げ（round half up）
// total = subtotal + tax + shipping
func ComputePricing(lines []PriceLine, taxRate decimal.Decimal, shippingCents int64) PriceBreakdown {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPriceCents * l.Quantity
	}

	//decimal.Round は half away from zero。正の金額ではhalf upと同じ。
	tax := decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()

	return PriceBreakdown{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: shippingCents,
		TotalCents:    subtotal + tax + shippingCents,
	}
}
