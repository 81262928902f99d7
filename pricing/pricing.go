package pricing

import (
	"math"
	"strings"

	"arcane/models"
)

// ShippingPolicy: orders at or above FreeThreshold ship free, everything else
// pays the flat fee.
type ShippingPolicy struct {
	FreeThreshold float64
	FlatFee       float64
}

// DiscountPolicy: a single promo code, matched case-insensitively. Unknown
// codes are ignored without error; the cart UI treats a bad code as "no
// discount", not as a failure.
type DiscountPolicy struct {
	Code string
	Rate float64
}

// Totals is the client-preview price breakdown. For card payments the
// processor's session totals are authoritative and these numbers are display
// only; for COD these are the numbers that get persisted.
type Totals struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	Discount      float64 `json:"discount"`
	GrandTotal    float64 `json:"grandTotal"`
}

// DefaultShipping matches the store's fixed shipping rate.
func DefaultShipping() ShippingPolicy {
	return ShippingPolicy{FreeThreshold: 100.00, FlatFee: 9.99}
}

// DefaultDiscount is the storewide promo.
func DefaultDiscount() DiscountPolicy {
	return DiscountPolicy{Code: "SAVE10", Rate: 0.10}
}

// ComputeTotals prices a cart. Pure: no I/O, no side effects.
func ComputeTotals(lines []models.CartLine, ship ShippingPolicy, disc DiscountPolicy, promoCode string) Totals {
	var itemsPrice float64
	for _, l := range lines {
		itemsPrice += l.UnitPrice * float64(l.Quantity)
	}

	shippingPrice := ship.FlatFee
	if itemsPrice >= ship.FreeThreshold {
		shippingPrice = 0
	}

	var discount float64
	if promoCode != "" && strings.EqualFold(promoCode, disc.Code) {
		discount = itemsPrice * disc.Rate
	}

	return Totals{
		ItemsPrice:    round2(itemsPrice),
		ShippingPrice: round2(shippingPrice),
		Discount:      round2(discount),
		GrandTotal:    round2(itemsPrice - discount + shippingPrice),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
