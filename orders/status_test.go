package orders

import (
	"testing"
	"time"

	"arcane/models"
)

func boolPtr(b bool) *bool { return &b }

func TestApplyStatusUpdateStampsPaidAt(t *testing.T) {
	o := &models.Order{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	applyStatusUpdate(o, models.StatusUpdate{IsPaid: boolPtr(true)}, now)
	if !o.IsPaid {
		t.Fatal("isPaid not set")
	}
	if o.PaidAt == nil || !o.PaidAt.Equal(now) {
		t.Errorf("paidAt = %v, want %v", o.PaidAt, now)
	}
	if o.IsDelivered || o.DeliveredAt != nil {
		t.Error("delivered state changed by a paid-only update")
	}
}

func TestApplyStatusUpdatePaidAtUnchangedByLaterDelivery(t *testing.T) {
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &models.Order{IsPaid: true, PaidAt: &paidAt}
	later := paidAt.Add(48 * time.Hour)

	applyStatusUpdate(o, models.StatusUpdate{IsDelivered: boolPtr(true)}, later)
	if !o.IsDelivered || o.DeliveredAt == nil || !o.DeliveredAt.Equal(later) {
		t.Errorf("delivered/deliveredAt = %v/%v", o.IsDelivered, o.DeliveredAt)
	}
	if !o.PaidAt.Equal(paidAt) {
		t.Errorf("paidAt moved to %v, want %v", o.PaidAt, paidAt)
	}
}

func TestApplyStatusUpdateDeliveredBeforePaid(t *testing.T) {
	// COD orders can be confirmed delivered while still unpaid.
	o := &models.Order{PaymentMethod: models.PaymentMethodCOD}
	now := time.Now()

	applyStatusUpdate(o, models.StatusUpdate{IsDelivered: boolPtr(true)}, now)
	if !o.IsDelivered {
		t.Fatal("delivered-before-paid rejected")
	}
	if o.IsPaid || o.PaidAt != nil {
		t.Error("paid state changed by a delivered-only update")
	}
}

func TestApplyStatusUpdateBothAtOnce(t *testing.T) {
	o := &models.Order{}
	now := time.Now()

	applyStatusUpdate(o, models.StatusUpdate{IsPaid: boolPtr(true), IsDelivered: boolPtr(true)}, now)
	if !o.IsPaid || !o.IsDelivered {
		t.Fatalf("flags = %v/%v", o.IsPaid, o.IsDelivered)
	}
	if o.PaidAt == nil || o.DeliveredAt == nil {
		t.Error("timestamps not stamped with the flags")
	}
}

func TestApplyStatusUpdateNoopWhenEmpty(t *testing.T) {
	paidAt := time.Now()
	o := &models.Order{IsPaid: true, PaidAt: &paidAt}

	applyStatusUpdate(o, models.StatusUpdate{}, time.Now().Add(time.Hour))
	if !o.IsPaid || !o.PaidAt.Equal(paidAt) {
		t.Error("empty update mutated the order")
	}
}
