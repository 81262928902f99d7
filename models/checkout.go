package models

// CheckoutSession is the processor-neutral view of a hosted checkout
// session. It is never persisted; the completed session is only ever read to
// build an order.
type CheckoutSession struct {
	ID                string
	Paid              bool
	AmountSubtotal    float64
	AmountShipping    float64
	AmountTotal       float64
	ClientReferenceID string
	PayerEmail        string
	PaymentStatus     string
	ShippingAddress   *ShippingAddress
}

// SessionLineItem is one line of a completed checkout session as reported by
// the processor. ProductRef carries whatever the processor stored in the
// product metadata; it may or may not be a valid catalog id.
type SessionLineItem struct {
	Name       string
	UnitPrice  float64
	Quantity   int
	ProductRef string
	Image      string
}

// CheckoutRedirect is what the UI needs to hand the buyer over to the
// processor's hosted page.
type CheckoutRedirect struct {
	SessionID string `json:"id"`
	URL       string `json:"url"`
}
