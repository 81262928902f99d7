package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"arcane/models"
	"arcane/pricing"
	"arcane/utils"

	"github.com/julienschmidt/httprouter"
)

type createSessionRequest struct {
	Items []models.CartLine `json:"items"`
}

// CreateSession handles POST /api/checkout: builds a hosted-checkout session
// and hands the redirect URL back to the UI. Works for guests and logged-in
// users; only the latter get ownership attribution on the eventual order.
func (rc *Reconciler) CreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if len(req.Items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No items in cart")
		return
	}
	for _, l := range req.Items {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid item quantity or price")
			return
		}
	}

	userID := utils.GetUserIDFromRequest(r)

	redirect, err := rc.Gateway.CreateSession(ctx, req.Items, userID)
	if err != nil {
		log.Println("CreateSession error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, redirect)
}

type previewTotalsRequest struct {
	Items     []models.CartLine `json:"items"`
	PromoCode string            `json:"promoCode"`
}

// PreviewTotals handles POST /api/cart/totals: the client-side price
// preview. For card payments these numbers are display only; the session's
// totals are what get persisted.
func PreviewTotals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req previewTotalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	totals := pricing.ComputeTotals(req.Items, pricing.DefaultShipping(), pricing.DefaultDiscount(), req.PromoCode)
	utils.RespondWithJSON(w, http.StatusOK, totals)
}
