package checkout

import (
	"testing"

	stripesdk "github.com/stripe/stripe-go/v79"
)

func TestFromStripeSessionPaidWithShippingDetails(t *testing.T) {
	s := &stripesdk.CheckoutSession{
		ID:                "cs_test_1",
		PaymentStatus:     stripesdk.CheckoutSessionPaymentStatusPaid,
		AmountSubtotal:    4500,
		AmountTotal:       5499,
		ClientReferenceID: "user-42",
		TotalDetails:      &stripesdk.CheckoutSessionTotalDetails{AmountShipping: 999},
		CustomerDetails: &stripesdk.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
		},
		ShippingDetails: &stripesdk.ShippingDetails{
			Address: &stripesdk.Address{
				Line1:      "1 Main St",
				Line2:      "Apt 4",
				City:       "Springfield",
				PostalCode: "12345",
				Country:    "US",
			},
		},
	}

	ses := FromStripeSession(s)
	if !ses.Paid {
		t.Error("expected Paid")
	}
	if ses.AmountSubtotal != 45 || ses.AmountShipping != 9.99 || ses.AmountTotal != 54.99 {
		t.Errorf("amounts = %v/%v/%v, want 45/9.99/54.99", ses.AmountSubtotal, ses.AmountShipping, ses.AmountTotal)
	}
	if ses.ClientReferenceID != "user-42" || ses.PayerEmail != "buyer@example.com" {
		t.Errorf("attribution = %q/%q", ses.ClientReferenceID, ses.PayerEmail)
	}
	if ses.ShippingAddress == nil {
		t.Fatal("expected shipping address")
	}
	if ses.ShippingAddress.Address != "1 Main St Apt 4" {
		t.Errorf("address = %q", ses.ShippingAddress.Address)
	}
	if ses.ShippingAddress.City != "Springfield" || ses.ShippingAddress.Country != "US" {
		t.Errorf("city/country = %q/%q", ses.ShippingAddress.City, ses.ShippingAddress.Country)
	}
}

func TestFromStripeSessionCustomerAddressFallback(t *testing.T) {
	s := &stripesdk.CheckoutSession{
		ID:            "cs_test_2",
		PaymentStatus: stripesdk.CheckoutSessionPaymentStatusPaid,
		CustomerDetails: &stripesdk.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
			Address: &stripesdk.Address{
				Line1:   "2 Side St",
				Country: "FR",
			},
		},
	}

	ses := FromStripeSession(s)
	if ses.ShippingAddress == nil {
		t.Fatal("expected address from customer_details")
	}
	if ses.ShippingAddress.Address != "2 Side St" || ses.ShippingAddress.Country != "FR" {
		t.Errorf("address = %+v", ses.ShippingAddress)
	}
	// Missing pieces become the placeholder, not empty strings.
	if ses.ShippingAddress.City != "N/A" || ses.ShippingAddress.PostalCode != "N/A" {
		t.Errorf("placeholders = %q/%q, want N/A", ses.ShippingAddress.City, ses.ShippingAddress.PostalCode)
	}
}

func TestFromStripeSessionUnpaidNoAddress(t *testing.T) {
	s := &stripesdk.CheckoutSession{
		ID:            "cs_test_3",
		PaymentStatus: stripesdk.CheckoutSessionPaymentStatusUnpaid,
	}
	ses := FromStripeSession(s)
	if ses.Paid {
		t.Error("unpaid session reported Paid")
	}
	if ses.ShippingAddress != nil {
		t.Errorf("expected nil address, got %+v", ses.ShippingAddress)
	}
}

func TestFromStripeLineItemMetadata(t *testing.T) {
	li := &stripesdk.LineItem{
		Description: "fallback name",
		Quantity:    2,
		Price: &stripesdk.Price{
			UnitAmount: 4500,
			Product: &stripesdk.Product{
				Name:     "Hoodie",
				Metadata: map[string]string{"productId": "64a1f0c2e4b0a1b2c3d4e5f6"},
				Images:   []string{"https://cdn.example/hoodie.png"},
			},
		},
	}
	item := fromStripeLineItem(li)
	if item.Name != "Hoodie" {
		t.Errorf("name = %q", item.Name)
	}
	if item.UnitPrice != 45 || item.Quantity != 2 {
		t.Errorf("price/qty = %v/%d", item.UnitPrice, item.Quantity)
	}
	if item.ProductRef != "64a1f0c2e4b0a1b2c3d4e5f6" {
		t.Errorf("productRef = %q", item.ProductRef)
	}
	if item.Image != "https://cdn.example/hoodie.png" {
		t.Errorf("image = %q", item.Image)
	}
}

func TestCentsRoundTrip(t *testing.T) {
	if toCents(9.99) != 999 {
		t.Errorf("toCents(9.99) = %d", toCents(9.99))
	}
	if toCents(45) != 4500 {
		t.Errorf("toCents(45) = %d", toCents(45))
	}
	if fromCents(5499) != 54.99 {
		t.Errorf("fromCents(5499) = %v", fromCents(5499))
	}
}
