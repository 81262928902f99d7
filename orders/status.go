package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"arcane/models"
	"arcane/utils"

	"github.com/julienschmidt/httprouter"
)

// SetOrderStatus handles PUT /api/orders/:id/status (admin): a partial
// status transition. The update is durable before any notification is
// attempted; a failed email never rolls back or fails the transition.
func (api *API) SetOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var upd models.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	updated, err := api.Ledger.UpdateStatus(ctx, ps.ByName("id"), upd)
	if err == ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Println("SetOrderStatus error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	go api.notifyStatusChange(updated, upd)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Order status updated",
		"order":   updated,
	})
}

func (api *API) notifyStatusChange(o *models.Order, upd models.StatusUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	email, name := api.ownerContact(ctx, o.UserID)
	if email == "" {
		return
	}
	api.Mail.StatusChanged(o, email, name, upd)
}
