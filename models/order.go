package models

import "time"

// Payment methods accepted at checkout.
const (
	PaymentMethodCard = "card"
	PaymentMethodCOD  = "cash_on_delivery"
)

// OrderItem is one purchased line on an order. Product holds the catalog
// ObjectID hex when the item could be resolved to a catalog product; it is
// empty when the payment processor handed back metadata that does not look
// like a catalog id.
type OrderItem struct {
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"qty" json:"qty"`
	UnitPrice float64 `bson:"price" json:"price"`
	Product   string  `bson:"product,omitempty" json:"product,omitempty"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
}

// ShippingAddress as collected by the processor or entered for COD.
type ShippingAddress struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// NAShippingAddress is the sentinel used when the processor supplied no
// address at all. Order creation never fails on a missing address.
func NAShippingAddress() ShippingAddress {
	return ShippingAddress{Address: "N/A", City: "N/A", PostalCode: "N/A", Country: "N/A"}
}

// PaymentResult records the external processor's view of the payment.
// ExternalID is the idempotency key for card orders.
type PaymentResult struct {
	ExternalID string `bson:"externalId,omitempty" json:"externalId,omitempty"`
	Status     string `bson:"status,omitempty" json:"status,omitempty"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
}

// Order is the persisted ledger entry for a confirmed purchase.
// UserID is empty for guest orders.
type Order struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	UserID          string          `bson:"userId,omitempty" json:"userId,omitempty"`
	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string          `bson:"paymentMethod" json:"paymentMethod"`
	ItemsPrice      float64         `bson:"itemsPrice" json:"itemsPrice"`
	ShippingPrice   float64         `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice      float64         `bson:"totalPrice" json:"totalPrice"`
	IsPaid          bool            `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time      `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	IsDelivered     bool            `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time      `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	PaymentResult   *PaymentResult  `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
}

// ShortRef is the customer-facing order reference used in emails and on the
// invoice (last 8 hex chars, uppercased).
func (o *Order) ShortRef() string {
	id := o.ID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	out := []byte(id)
	for i, c := range out {
		if c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

// StatusUpdate carries the only fields a status transition may set. Pointer
// fields distinguish "absent" from "false"; anything else in the request body
// is ignored.
type StatusUpdate struct {
	IsPaid      *bool `json:"isPaid,omitempty"`
	IsDelivered *bool `json:"isDelivered,omitempty"`
}
