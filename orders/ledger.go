package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arcane/db"
	"arcane/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound: no order with the given id.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateExternalID: an order for this paymentResult.externalId is
	// already in the ledger. Callers treat this as "already reconciled",
	// never as a user-facing conflict.
	ErrDuplicateExternalID = errors.New("order already exists for external id")
)

// ValidationError reports user-correctable problems with an order request,
// one entry per offending field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + strings.Join(e.Fields, ", ")
}

// InvalidItemsError reports cart lines whose product ids do not resolve to
// catalog identifiers. Only the COD path raises it; card orders degrade to
// unattributed items instead.
type InvalidItemsError struct {
	Items []string
}

func (e *InvalidItemsError) Error() string {
	return fmt.Sprintf("cart contains %d invalid item(s): %s", len(e.Items), strings.Join(e.Items, ", "))
}

// ListFilter narrows the admin order listing. Nil fields mean "any".
type ListFilter struct {
	Paid      *bool
	Delivered *bool
}

// Store is the order ledger over the orders collection. It owns the order
// documents; nothing else writes them.
type Store struct{}

// Insert validates and persists a new order. The unique partial index on
// paymentResult.externalId turns a concurrent double-insert for the same
// checkout session into ErrDuplicateExternalID.
func (Store) Insert(ctx context.Context, o *models.Order) (*models.Order, error) {
	if len(o.Items) == 0 {
		return nil, &ValidationError{Fields: []string{"items"}}
	}
	if o.TotalPrice < 0 {
		return nil, &ValidationError{Fields: []string{"totalPrice"}}
	}

	if o.ID == "" {
		o.ID = primitive.NewObjectID().Hex()
	}
	o.CreatedAt = time.Now()

	if _, err := db.OrdersCollection.InsertOne(ctx, o); err != nil {
		if db.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateExternalID
		}
		return nil, err
	}
	return o, nil
}

// FindByExternalID is the idempotency lookup: nil when no order exists for
// the session id yet.
func (Store) FindByExternalID(ctx context.Context, externalID string) (*models.Order, error) {
	var o models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"paymentResult.externalId": externalID}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (Store) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByOwner returns a user's order history, newest first.
func (Store) FindByOwner(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OrdersCollection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Order{}
	}
	return out, nil
}

// ListAll returns every order for the admin console, optionally filtered by
// paid/delivered flags, newest first.
func (Store) ListAll(ctx context.Context, f ListFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Paid != nil {
		filter["isPaid"] = *f.Paid
	}
	if f.Delivered != nil {
		filter["isDelivered"] = *f.Delivered
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OrdersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Order{}
	}
	return out, nil
}

// UpdateStatus applies a partial status change and returns the updated order.
func (s Store) UpdateStatus(ctx context.Context, id string, upd models.StatusUpdate) (*models.Order, error) {
	o, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyStatusUpdate(o, upd, time.Now())

	set := bson.M{
		"isPaid":      o.IsPaid,
		"isDelivered": o.IsDelivered,
		"paidAt":      o.PaidAt,
		"deliveredAt": o.DeliveredAt,
	}
	if _, err := db.OrdersCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return o, nil
}

// applyStatusUpdate mutates o per the transition rules: only fields present
// in the request change, and setting a flag true stamps its timestamp at
// that moment. There is deliberately no guard against marking an unpaid
// order delivered; delivery confirmation may precede payment reconciliation
// for COD-like flows.
func applyStatusUpdate(o *models.Order, upd models.StatusUpdate, now time.Time) {
	if upd.IsPaid != nil {
		o.IsPaid = *upd.IsPaid
		if *upd.IsPaid {
			t := now
			o.PaidAt = &t
		}
	}
	if upd.IsDelivered != nil {
		o.IsDelivered = *upd.IsDelivered
		if *upd.IsDelivered {
			t := now
			o.DeliveredAt = &t
		}
	}
}
