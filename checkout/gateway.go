package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"arcane/models"

	stripesdk "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// ErrNotPaid: the session exists but the buyer has not completed payment.
// Terminal for that confirmation attempt, not retryable.
var ErrNotPaid = errors.New("payment not completed")

// Gateway is the boundary to the external payment processor. The
// reconciliation engine only ever sees processor-neutral types; everything
// Stripe-shaped stays behind this interface.
type Gateway interface {
	CreateSession(ctx context.Context, lines []models.CartLine, userID string) (*models.CheckoutRedirect, error)
	RetrieveCompletedSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]models.SessionLineItem, error)
}

// StripeGateway drives Stripe-hosted checkout via the official SDK.
type StripeGateway struct {
	frontendURL string
	backendURL  string
}

func NewStripeGateway() *StripeGateway {
	stripesdk.Key = os.Getenv("STRIPE_SECRET_KEY")
	// Bounded timeout on every processor call. A timed-out confirm is
	// reported as pending/unknown, never as a failed payment.
	stripesdk.SetHTTPClient(&http.Client{Timeout: 20 * time.Second})

	g := &StripeGateway{
		frontendURL: os.Getenv("FRONTEND_URL"),
		backendURL:  os.Getenv("BACKEND_URL"),
	}
	if g.frontendURL == "" {
		g.frontendURL = "http://localhost:3000"
	}
	if g.backendURL == "" {
		g.backendURL = "http://localhost:8080"
	}
	return g
}

// CreateSession builds a hosted-checkout session from cart lines. The
// catalog product id rides along in the product metadata so reconciliation
// can attribute line items later.
func (g *StripeGateway) CreateSession(ctx context.Context, lines []models.CartLine, userID string) (*models.CheckoutRedirect, error) {
	lineItems := make([]*stripesdk.CheckoutSessionLineItemParams, 0, len(lines))
	for _, l := range lines {
		var images []*string
		if l.Image != "" {
			img := l.Image
			if !strings.HasPrefix(img, "http") {
				img = g.backendURL + img
			}
			images = []*string{stripesdk.String(img)}
		}
		lineItems = append(lineItems, &stripesdk.CheckoutSessionLineItemParams{
			PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
				Currency: stripesdk.String("usd"),
				ProductData: &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripesdk.String(l.Name),
					Images:   images,
					Metadata: map[string]string{"productId": l.ProductID},
				},
				UnitAmount: stripesdk.Int64(toCents(l.UnitPrice)),
			},
			Quantity: stripesdk.Int64(int64(l.Quantity)),
		})
	}

	params := &stripesdk.CheckoutSessionParams{
		Mode:               stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripesdk.String(g.frontendURL + "/checkout?success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripesdk.String(g.frontendURL + "/cart?canceled=true"),
		ShippingAddressCollection: &stripesdk.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripesdk.StringSlice([]string{"US", "CA", "GB"}),
		},
		ShippingOptions: []*stripesdk.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripesdk.CheckoutSessionShippingOptionShippingRateDataParams{
					Type: stripesdk.String("fixed_amount"),
					FixedAmount: &stripesdk.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripesdk.Int64(999),
						Currency: stripesdk.String("usd"),
					},
					DisplayName: stripesdk.String("Standard Shipping"),
					DeliveryEstimate: &stripesdk.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
						Minimum: &stripesdk.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
							Unit:  stripesdk.String("business_day"),
							Value: stripesdk.Int64(5),
						},
						Maximum: &stripesdk.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
							Unit:  stripesdk.String("business_day"),
							Value: stripesdk.Int64(7),
						},
					},
				},
			},
		},
	}
	params.Context = ctx

	// Attach the user id only when logged in; Stripe rejects an empty
	// client_reference_id, so guests get no field at all.
	if userID != "" {
		params.ClientReferenceID = stripesdk.String(userID)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &models.CheckoutRedirect{SessionID: s.ID, URL: s.URL}, nil
}

// RetrieveCompletedSession fetches the session and insists it is paid.
func (g *StripeGateway) RetrieveCompletedSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	params := &stripesdk.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	ses := FromStripeSession(s)
	if !ses.Paid {
		return nil, ErrNotPaid
	}
	return ses, nil
}

// ListLineItems is a separate processor call because line-item detail is not
// embedded in the session object; the nested product is expanded so the
// catalog metadata comes back with it.
func (g *StripeGateway) ListLineItems(ctx context.Context, sessionID string) ([]models.SessionLineItem, error) {
	params := &stripesdk.CheckoutSessionListLineItemsParams{
		Session: stripesdk.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var out []models.SessionLineItem
	iter := session.ListLineItems(params)
	for iter.Next() {
		out = append(out, fromStripeLineItem(iter.LineItem()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list session line items: %w", err)
	}
	return out, nil
}

// FromStripeSession converts the SDK session into the processor-neutral
// shape the reconciliation engine works with.
func FromStripeSession(s *stripesdk.CheckoutSession) *models.CheckoutSession {
	ses := &models.CheckoutSession{
		ID:                s.ID,
		Paid:              s.PaymentStatus == stripesdk.CheckoutSessionPaymentStatusPaid,
		PaymentStatus:     string(s.PaymentStatus),
		AmountSubtotal:    fromCents(s.AmountSubtotal),
		AmountTotal:       fromCents(s.AmountTotal),
		ClientReferenceID: s.ClientReferenceID,
	}
	if s.TotalDetails != nil {
		ses.AmountShipping = fromCents(s.TotalDetails.AmountShipping)
	}
	if s.CustomerDetails != nil {
		ses.PayerEmail = s.CustomerDetails.Email
	}

	// Stripe reports the address under shipping_details or customer_details
	// depending on collection config; take whichever is present.
	var addr *stripesdk.Address
	if s.ShippingDetails != nil && s.ShippingDetails.Address != nil {
		addr = s.ShippingDetails.Address
	} else if s.CustomerDetails != nil && s.CustomerDetails.Address != nil {
		addr = s.CustomerDetails.Address
	}
	if addr != nil {
		line := addr.Line1
		if addr.Line2 != "" {
			line += " " + addr.Line2
		}
		ses.ShippingAddress = &models.ShippingAddress{
			Address:    orNA(line),
			City:       orNA(addr.City),
			PostalCode: orNA(addr.PostalCode),
			Country:    orNA(addr.Country),
		}
	}
	return ses
}

func fromStripeLineItem(li *stripesdk.LineItem) models.SessionLineItem {
	item := models.SessionLineItem{
		Name:     li.Description,
		Quantity: int(li.Quantity),
	}
	if li.Price != nil {
		item.UnitPrice = fromCents(li.Price.UnitAmount)
		if li.Price.Product != nil {
			if li.Price.Product.Name != "" {
				item.Name = li.Price.Product.Name
			}
			item.ProductRef = li.Price.Product.Metadata["productId"]
			if len(li.Price.Product.Images) > 0 {
				item.Image = li.Price.Product.Images[0]
			}
		}
	}
	return item
}

func toCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
