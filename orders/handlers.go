package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"strconv"
	"time"

	"arcane/db"
	"arcane/globals"
	"arcane/models"
	"arcane/notify"
	"arcane/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// API bundles the order handlers with their collaborators.
type API struct {
	Ledger Store
	Mail   *notify.Mailer
}

func NewAPI(mail *notify.Mailer) *API {
	return &API{Mail: mail}
}

// ownerContact resolves the owner's email and display name. Guest orders
// have neither.
func (api *API) ownerContact(ctx context.Context, userID string) (email, name string) {
	if userID == "" {
		return "", ""
	}
	var u models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		return "", ""
	}
	return u.Email, u.Name
}

// GetMyOrders returns the calling user's order history, newest first.
func (api *API) GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	out, err := api.Ledger.FindByOwner(ctx, userID)
	if err != nil {
		log.Println("GetMyOrders error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GetOrderByID returns one order. Owners see their own orders; admins see
// any. Guests can't address an order here at all.
func (api *API) GetOrderByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := api.Ledger.FindByID(ctx, ps.ByName("id"))
	if err == ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Println("GetOrderByID error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve order")
		return
	}

	if !canAccessOrder(r, o) {
		utils.RespondWithError(w, http.StatusForbidden, "Not your order")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, o)
}

// GetAllOrders is the admin listing with optional ?paid= and ?delivered=
// filters.
func (api *API) GetAllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var f ListFilter
	if v := r.URL.Query().Get("paid"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Paid = &b
		}
	}
	if v := r.URL.Query().Get("delivered"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Delivered = &b
		}
	}

	out, err := api.Ledger.ListAll(ctx, f)
	if err != nil {
		log.Println("GetAllOrders error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// markPaidRequest enumerates the payment-result fields the owner-facing
// mark-paid call may record.
type markPaidRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Email  string `json:"email"`
}

// MarkOrderPaid handles PUT /api/orders/:id/pay: stamps the order paid and
// records the supplied payment result.
func (api *API) MarkOrderPaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req markPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	o, err := api.Ledger.FindByID(ctx, ps.ByName("id"))
	if err == ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Println("MarkOrderPaid error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve order")
		return
	}

	if !canAccessOrder(r, o) {
		utils.RespondWithError(w, http.StatusForbidden, "Not your order")
		return
	}

	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &models.PaymentResult{ExternalID: req.ID, Status: req.Status, Email: req.Email}

	set := bson.M{"isPaid": true, "paidAt": now, "paymentResult": o.PaymentResult}
	if _, err := db.OrdersCollection.UpdateOne(ctx, bson.M{"_id": o.ID}, bson.M{"$set": set}); err != nil {
		log.Println("MarkOrderPaid update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, o)
}

func isAdmin(r *http.Request) bool {
	roles, _ := r.Context().Value(globals.RolesKey).([]string)
	return slices.Contains(roles, "admin")
}

// canAccessOrder reports whether the caller may act on o: the owner, or an
// admin. Guest orders have no owner and are admin-only through these routes.
func canAccessOrder(r *http.Request, o *models.Order) bool {
	if isAdmin(r) {
		return true
	}
	userID := utils.GetUserIDFromRequest(r)
	return userID != "" && o.UserID == userID
}
