package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"arcane/utils"

	"github.com/julienschmidt/httprouter"
)

type confirmRequest struct {
	SessionID string `json:"sessionId"`
}

// ConfirmOrder handles POST /api/stripe/confirm-order: the buyer's browser
// returned from the hosted page. Idempotent; the UI may fire it more than
// once and every call resolves to the same order.
func (rc *Reconciler) ConfirmOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	order, already, err := rc.ReconcileSession(ctx, req.SessionID)
	if errors.Is(err, ErrNotPaid) {
		utils.RespondWithError(w, http.StatusBadRequest, "Payment not completed")
		return
	}
	if isTimeout(err) {
		// The processor call timed out: the payment may still have gone
		// through, so this is pending/unknown, not a failure. Retrying the
		// confirmation is safe.
		log.Println("ConfirmOrder timeout:", err)
		utils.RespondWithError(w, http.StatusGatewayTimeout,
			"We could not confirm your order yet. Please retry, check your order history, or contact support.")
		return
	}
	if err != nil {
		log.Println("ConfirmOrder error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError,
			"Could not confirm your order. Please check your order history or contact support.")
		return
	}

	if already {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"message": "Order already exists",
			"order":   order,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Order created successfully",
		"order":   order,
	})
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
