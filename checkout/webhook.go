package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
	stripesdk "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// HandleWebhook handles POST /api/webhook: Stripe pushes events here
// independently of the buyer's browser. Verification fails closed: an
// unverifiable signature rejects the request before the payload is read as
// trusted, and a 4xx tells Stripe to retry on its own schedule.
func (rc *Reconciler) HandleWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	const maxBodyBytes = 1 << 16
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		log.Println("STRIPE_WEBHOOK_SECRET not set; rejecting webhook")
		http.Error(w, "Webhook not configured", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), secret)
	if err != nil {
		log.Println("Webhook signature verification failed:", err)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	if event.Type != "checkout.session.completed" {
		// Not ours; acknowledge so Stripe stops resending it
		w.WriteHeader(http.StatusOK)
		return
	}

	var s stripesdk.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		log.Println("Webhook payload decode error:", err)
		http.Error(w, "Malformed event payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	order, already, err := rc.ReconcileCompleted(ctx, FromStripeSession(&s))
	if errors.Is(err, ErrNotPaid) {
		// Completed but not paid (async payment methods). Nothing to record;
		// acknowledge so Stripe does not retry.
		log.Printf("Webhook: session %s completed but unpaid, skipping", s.ID)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		// 5xx so Stripe retries; the reconcile is idempotent
		log.Println("Webhook reconcile error:", err)
		http.Error(w, "Failed to process event", http.StatusInternalServerError)
		return
	}
	if already {
		log.Printf("Webhook: order %s already reconciled for session %s", order.ID, s.ID)
	} else {
		log.Printf("Webhook: order %s created for session %s", order.ID, s.ID)
	}
	w.WriteHeader(http.StatusOK)
}
