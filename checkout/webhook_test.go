package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	stripesdk "github.com/stripe/stripe-go/v79"
)

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	ledger := newFakeLedger()
	rc := newTestReconciler(&fakeGateway{}, ledger, nil)

	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed"}`
	req := httptest.NewRequest("POST", "/api/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()

	rc.HandleWebhook(w, req, nil)

	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ledger.inserts != 0 {
		t.Errorf("inserts = %d, want 0 after a rejected signature", ledger.inserts)
	}
}

func TestWebhookRejectsWhenSecretUnset(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	ledger := newFakeLedger()
	rc := newTestReconciler(&fakeGateway{}, ledger, nil)

	req := httptest.NewRequest("POST", "/api/webhook", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	rc.HandleWebhook(w, req, nil)

	if w.Code != 400 {
		t.Errorf("status = %d, want 400 when verification is not configured", w.Code)
	}
	if ledger.inserts != 0 {
		t.Errorf("inserts = %d, want 0", ledger.inserts)
	}
}

// signPayload builds a Stripe-Signature header the way Stripe does: a
// timestamp and an HMAC-SHA256 of "<ts>.<payload>".
func signPayload(secret, payload string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	const secret = "whsec_test"
	t.Setenv("STRIPE_WEBHOOK_SECRET", secret)

	ledger := newFakeLedger()
	rc := newTestReconciler(&fakeGateway{}, ledger, nil)

	payload := fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":%q,"type":"payment_intent.created","data":{"object":{}}}`,
		stripesdk.APIVersion)
	req := httptest.NewRequest("POST", "/api/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(secret, payload, time.Now()))
	w := httptest.NewRecorder()

	rc.HandleWebhook(w, req, nil)

	if w.Code != 200 {
		t.Errorf("status = %d, want 200 ack for an unrelated event", w.Code)
	}
	if ledger.inserts != 0 {
		t.Errorf("inserts = %d, want 0", ledger.inserts)
	}
}
