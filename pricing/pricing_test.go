package pricing

import (
	"testing"

	"arcane/models"
)

func TestComputeTotalsBasic(t *testing.T) {
	lines := []models.CartLine{
		{UnitPrice: 20, Quantity: 2},
		{UnitPrice: 5, Quantity: 1},
	}
	got := ComputeTotals(lines, DefaultShipping(), DefaultDiscount(), "")

	if got.ItemsPrice != 45 {
		t.Errorf("itemsPrice = %v, want 45", got.ItemsPrice)
	}
	if got.ShippingPrice != 9.99 {
		t.Errorf("shippingPrice = %v, want 9.99", got.ShippingPrice)
	}
	if got.Discount != 0 {
		t.Errorf("discount = %v, want 0", got.Discount)
	}
	if got.GrandTotal != 54.99 {
		t.Errorf("grandTotal = %v, want 54.99", got.GrandTotal)
	}
}

func TestFreeShippingBoundary(t *testing.T) {
	cases := []struct {
		name       string
		itemsPrice float64
		want       float64
	}{
		{"exactly at threshold", 100.00, 0},
		{"just below threshold", 99.99, 9.99},
		{"above threshold", 150.00, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := []models.CartLine{{UnitPrice: tc.itemsPrice, Quantity: 1}}
			got := ComputeTotals(lines, DefaultShipping(), DefaultDiscount(), "")
			if got.ShippingPrice != tc.want {
				t.Errorf("shippingPrice = %v, want %v", got.ShippingPrice, tc.want)
			}
		})
	}
}

func TestPromoCodeCaseInsensitive(t *testing.T) {
	lines := []models.CartLine{{UnitPrice: 50, Quantity: 1}}

	for _, code := range []string{"save10", "SAVE10", "Save10"} {
		got := ComputeTotals(lines, DefaultShipping(), DefaultDiscount(), code)
		if got.Discount != 5 {
			t.Errorf("code %q: discount = %v, want 5", code, got.Discount)
		}
		if got.GrandTotal != 54.99 {
			t.Errorf("code %q: grandTotal = %v, want 54.99", code, got.GrandTotal)
		}
	}
}

func TestUnknownPromoCodeIgnored(t *testing.T) {
	lines := []models.CartLine{{UnitPrice: 50, Quantity: 1}}

	for _, code := range []string{"SAVE20", "bogus", ""} {
		got := ComputeTotals(lines, DefaultShipping(), DefaultDiscount(), code)
		if got.Discount != 0 {
			t.Errorf("code %q: discount = %v, want 0", code, got.Discount)
		}
	}
}

func TestEmptyCart(t *testing.T) {
	got := ComputeTotals(nil, DefaultShipping(), DefaultDiscount(), "")
	if got.ItemsPrice != 0 {
		t.Errorf("itemsPrice = %v, want 0", got.ItemsPrice)
	}
	// Empty carts are rejected before checkout; the calculator itself just
	// prices what it is given.
	if got.GrandTotal != 9.99 {
		t.Errorf("grandTotal = %v, want 9.99", got.GrandTotal)
	}
}

func TestRounding(t *testing.T) {
	lines := []models.CartLine{{UnitPrice: 0.1, Quantity: 3}}
	got := ComputeTotals(lines, ShippingPolicy{FreeThreshold: 100, FlatFee: 0}, DefaultDiscount(), "")
	if got.GrandTotal != 0.3 {
		t.Errorf("grandTotal = %v, want 0.3", got.GrandTotal)
	}
}
