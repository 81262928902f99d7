package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arcane/catalog"
	"arcane/models"
	"arcane/orderfeed"
	"arcane/orders"
	"arcane/rdx"
)

// Ledger is the slice of the order store reconciliation needs.
type Ledger interface {
	Insert(ctx context.Context, o *models.Order) (*models.Order, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
}

// Notifier sends the buyer a confirmation. Best effort; reconciliation never
// waits on it or fails because of it.
type Notifier interface {
	OrderConfirmed(o *models.Order, email string)
}

// Reconciler converts a completed checkout signal into exactly one persisted
// order. Both the redirect confirmation and the webhook funnel through it,
// racing against each other; the ledger's unique index on the session id is
// what actually enforces at-most-once, the pre-checks are latency shortcuts.
type Reconciler struct {
	Gateway  Gateway
	Ledger   Ledger
	Notifier Notifier

	publish  func(*models.Order)
	cacheGet func(ctx context.Context, sessionID string) string
	cacheSet func(ctx context.Context, sessionID, orderID string)
}

func NewReconciler(g Gateway, l Ledger, n Notifier) *Reconciler {
	return &Reconciler{
		Gateway:  g,
		Ledger:   l,
		Notifier: n,
		publish:  orderfeed.PublishOrderCreated,
		cacheGet: rdx.CachedSessionOrder,
		cacheSet: rdx.CacheSessionOrder,
	}
}

// ReconcileSession is the redirect-confirmation entry: the buyer's browser
// came back with a session id. Returns the order and whether it already
// existed. Safe to call any number of times for the same session.
func (rc *Reconciler) ReconcileSession(ctx context.Context, sessionID string) (*models.Order, bool, error) {
	if rc.cacheGet != nil {
		if orderID := rc.cacheGet(ctx, sessionID); orderID != "" {
			if o, err := rc.Ledger.FindByID(ctx, orderID); err == nil {
				return o, true, nil
			}
		}
	}

	existing, err := rc.Ledger.FindByExternalID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	ses, err := rc.Gateway.RetrieveCompletedSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return rc.finish(ctx, ses)
}

// ReconcileCompleted is the webhook entry: the processor pushed the completed
// session itself, so there is no retrieve round-trip. Converges on the same
// at-most-once conclusion as ReconcileSession for the same session id.
func (rc *Reconciler) ReconcileCompleted(ctx context.Context, ses *models.CheckoutSession) (*models.Order, bool, error) {
	if !ses.Paid {
		return nil, false, ErrNotPaid
	}

	existing, err := rc.Ledger.FindByExternalID(ctx, ses.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}
	return rc.finish(ctx, ses)
}

func (rc *Reconciler) finish(ctx context.Context, ses *models.CheckoutSession) (*models.Order, bool, error) {
	lineItems, err := rc.Gateway.ListLineItems(ctx, ses.ID)
	if err != nil {
		return nil, false, err
	}

	items := make([]models.OrderItem, 0, len(lineItems))
	for _, li := range lineItems {
		item := models.OrderItem{
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Image:     li.Image,
		}
		// Attribution is best effort. The money has already moved, so a
		// stale or malformed catalog ref must never block the order; the
		// item is just persisted without a product link.
		if catalog.IsValidID(li.ProductRef) {
			item.Product = li.ProductRef
		}
		items = append(items, item)
	}

	addr := models.NAShippingAddress()
	if ses.ShippingAddress != nil {
		addr = *ses.ShippingAddress
	}

	now := time.Now()
	o := &models.Order{
		UserID:          ses.ClientReferenceID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   models.PaymentMethodCard,
		ItemsPrice:      ses.AmountSubtotal,
		ShippingPrice:   ses.AmountShipping,
		TotalPrice:      ses.AmountTotal,
		IsPaid:          true,
		PaidAt:          &now,
		PaymentResult: &models.PaymentResult{
			ExternalID: ses.ID,
			Status:     ses.PaymentStatus,
			Email:      ses.PayerEmail,
		},
	}

	created, err := rc.Ledger.Insert(ctx, o)
	if errors.Is(err, orders.ErrDuplicateExternalID) {
		// Lost the race to the other entry point. That is a success: fetch
		// what won and hand it back.
		existing, ferr := rc.Ledger.FindByExternalID(ctx, ses.ID)
		if ferr != nil || existing == nil {
			return nil, false, fmt.Errorf("order exists for session %s but could not be loaded: %v", ses.ID, ferr)
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if rc.cacheSet != nil {
		rc.cacheSet(ctx, ses.ID, created.ID)
	}
	if rc.Notifier != nil && ses.PayerEmail != "" {
		go rc.Notifier.OrderConfirmed(created, ses.PayerEmail)
	}
	if rc.publish != nil {
		go rc.publish(created)
	}
	return created, false, nil
}
