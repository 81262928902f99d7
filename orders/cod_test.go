package orders

import (
	"reflect"
	"testing"

	"arcane/models"
)

const validRef = "64a1f0c2e4b0a1b2c3d4e5f6"

func TestMissingAddressFields(t *testing.T) {
	full := models.ShippingAddress{
		Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US",
	}
	if got := missingAddressFields(full); got != nil {
		t.Errorf("complete address flagged: %v", got)
	}

	partial := models.ShippingAddress{City: "Springfield", Country: "US"}
	want := []string{"address", "postalCode"}
	if got := missingAddressFields(partial); !reflect.DeepEqual(got, want) {
		t.Errorf("missing = %v, want %v", got, want)
	}

	empty := models.ShippingAddress{}
	if got := missingAddressFields(empty); len(got) != 4 {
		t.Errorf("empty address: %v, want all four fields", got)
	}
}

func TestInvalidItemIDsOneBadFailsAll(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: validRef, Name: "Hoodie", UnitPrice: 45, Quantity: 1},
		{ProductID: "mock-data-17", Name: "Sticker Pack", UnitPrice: 5, Quantity: 2},
		{ProductID: validRef, Name: "Mug", UnitPrice: 12, Quantity: 1},
	}
	bad := invalidItemIDs(lines)
	if !reflect.DeepEqual(bad, []string{"Sticker Pack"}) {
		t.Errorf("bad = %v, want [Sticker Pack]", bad)
	}
}

func TestInvalidItemIDsFallsBackToID(t *testing.T) {
	bad := invalidItemIDs([]models.CartLine{{ProductID: "seed-1"}})
	if !reflect.DeepEqual(bad, []string{"seed-1"}) {
		t.Errorf("bad = %v, want the raw id when the line has no name", bad)
	}
}

func TestInvalidItemIDsAllValid(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: validRef, Name: "Hoodie"},
	}
	if bad := invalidItemIDs(lines); bad != nil {
		t.Errorf("valid lines flagged: %v", bad)
	}
}

func TestBuildCODOrder(t *testing.T) {
	req := codOrderRequest{
		Items: []models.CartLine{
			{ProductID: validRef, Name: "Hoodie", UnitPrice: 45, Quantity: 1, Image: "h.png"},
		},
		ShippingAddress: models.ShippingAddress{
			Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US",
		},
		ItemsPrice:    45,
		ShippingPrice: 9.99,
		TotalPrice:    54.99,
	}

	o := buildCODOrder("user-42", req)
	if o.PaymentMethod != models.PaymentMethodCOD {
		t.Errorf("paymentMethod = %q", o.PaymentMethod)
	}
	if o.IsPaid || o.PaidAt != nil {
		t.Error("COD order must start unpaid")
	}
	if o.IsDelivered || o.DeliveredAt != nil {
		t.Error("COD order must start undelivered")
	}
	if o.PaymentResult != nil {
		t.Errorf("COD order has no payment result, got %+v", o.PaymentResult)
	}
	if o.UserID != "user-42" {
		t.Errorf("userId = %q", o.UserID)
	}
	if len(o.Items) != 1 || o.Items[0].Product != validRef || o.Items[0].Quantity != 1 {
		t.Errorf("items = %+v", o.Items)
	}
	if o.TotalPrice != 54.99 {
		t.Errorf("totalPrice = %v", o.TotalPrice)
	}
}

func TestBadQuantityOrPrice(t *testing.T) {
	ok := []models.CartLine{
		{ProductID: validRef, Name: "Hoodie", UnitPrice: 45, Quantity: 1},
		{ProductID: validRef, Name: "Free Sticker", UnitPrice: 0, Quantity: 3},
	}
	if badQuantityOrPrice(ok) {
		t.Error("valid lines flagged")
	}

	cases := []struct {
		name string
		line models.CartLine
	}{
		{"zero quantity", models.CartLine{ProductID: validRef, UnitPrice: 5, Quantity: 0}},
		{"negative quantity", models.CartLine{ProductID: validRef, UnitPrice: 5, Quantity: -1}},
		{"negative price", models.CartLine{ProductID: validRef, UnitPrice: -0.01, Quantity: 1}},
	}
	for _, tc := range cases {
		lines := append([]models.CartLine{}, ok...)
		lines = append(lines, tc.line)
		if !badQuantityOrPrice(lines) {
			t.Errorf("%s not flagged", tc.name)
		}
	}
}
