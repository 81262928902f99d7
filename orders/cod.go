package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"arcane/catalog"
	"arcane/models"
	"arcane/orderfeed"
	"arcane/utils"

	"github.com/julienschmidt/httprouter"
)

// codOrderRequest enumerates exactly the fields a COD placement may set.
// Anything else in the body is dropped on decode.
type codOrderRequest struct {
	Items           []models.CartLine      `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

// missingAddressFields lists the required shipping fields that are empty.
func missingAddressFields(a models.ShippingAddress) []string {
	var missing []string
	if a.Address == "" {
		missing = append(missing, "address")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.PostalCode == "" {
		missing = append(missing, "postalCode")
	}
	if a.Country == "" {
		missing = append(missing, "country")
	}
	return missing
}

// invalidItemIDs lists the cart lines whose product ids are not catalog
// identifiers. COD has no external payment forcing a best-effort persist, so
// one bad line fails the whole order.
func invalidItemIDs(lines []models.CartLine) []string {
	var bad []string
	for _, l := range lines {
		if !catalog.IsValidID(l.ProductID) {
			name := l.Name
			if name == "" {
				name = l.ProductID
			}
			bad = append(bad, name)
		}
	}
	return bad
}

// badQuantityOrPrice reports whether any cart line breaks the basic
// invariants: at least one unit, non-negative unit price.
func badQuantityOrPrice(lines []models.CartLine) bool {
	for _, l := range lines {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			return true
		}
	}
	return false
}

// buildCODOrder turns validated cart lines into an unpaid order. The amounts
// are the client-computed totals: with no processor involved there is no
// other pricing oracle, an accepted trust boundary of the COD flow.
func buildCODOrder(userID string, req codOrderRequest) *models.Order {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, l := range req.Items {
		items = append(items, models.OrderItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Product:   l.ProductID,
			Image:     l.Image,
		})
	}
	return &models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
		ItemsPrice:      req.ItemsPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
	}
}

// PlaceCODOrder handles POST /api/orders: a cash-on-delivery placement by an
// authenticated user. Strict validation, then a single insert; the order is
// created unpaid.
func (api *API) PlaceCODOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req codOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("PlaceCODOrder decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if len(req.Items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No order items")
		return
	}
	if badQuantityOrPrice(req.Items) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid item quantity or price")
		return
	}
	if missing := missingAddressFields(req.ShippingAddress); len(missing) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
			"error":         "Missing required shipping fields",
			"missingFields": missing,
		})
		return
	}
	if bad := invalidItemIDs(req.Items); len(bad) > 0 {
		log.Println("PlaceCODOrder invalid product ids:", bad)
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
			"error":        "One or more items in your cart are not valid products. Please clear your cart and try adding the products again.",
			"invalidItems": bad,
		})
		return
	}

	created, err := api.Ledger.Insert(ctx, buildCODOrder(userID, req))
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
				"error":         "Invalid order",
				"missingFields": ve.Fields,
			})
			return
		}
		log.Println("PlaceCODOrder insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	// Confirmation email and feed event are fire-and-forget
	if email, _ := api.ownerContact(ctx, userID); email != "" {
		go api.Mail.OrderPlacedCOD(created, email)
	}
	go orderfeed.PublishOrderCreated(created)

	utils.RespondWithJSON(w, http.StatusCreated, created)
}
