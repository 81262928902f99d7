package routes

import (
	"arcane/catalog"
	"arcane/checkout"
	"arcane/middleware"
	"arcane/notify"
	"arcane/orderfeed"
	"arcane/orders"
	"arcane/ratelim"

	"github.com/julienschmidt/httprouter"
)

// AddCheckoutRoutes wires the card purchase path: session creation, the two
// reconciliation entry points and the cart total preview.
func AddCheckoutRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, rc *checkout.Reconciler) {
	router.POST("/api/checkout", rl.Limit(middleware.OptionalAuth(rc.CreateSession)))
	router.POST("/api/stripe/confirm-order", rl.Limit(rc.ConfirmOrder))
	router.POST("/api/webhook", rc.HandleWebhook)
	router.POST("/api/cart/totals", rl.Limit(checkout.PreviewTotals))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, api *orders.API) {
	router.POST("/api/orders", rl.Limit(middleware.Authenticate(middleware.Idempotent(api.PlaceCODOrder))))
	router.GET("/api/orders", middleware.Authenticate(middleware.RequireRoles("admin")(api.GetAllOrders)))
	router.GET("/api/orders/:id", middleware.Authenticate(api.GetOrderByID))
	router.PUT("/api/orders/:id/pay", middleware.Authenticate(api.MarkOrderPaid))
	router.PUT("/api/orders/:id/status", middleware.Authenticate(middleware.RequireRoles("admin")(api.SetOrderStatus)))
	router.GET("/api/orders/:id/invoice", middleware.Authenticate(api.PrintInvoice))
	router.GET("/api/myorders", middleware.Authenticate(api.GetMyOrders))
}

func AddCatalogRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/products/:id", rl.Limit(catalog.GetProduct))
}

func AddFeedRoutes(router *httprouter.Router, hub *orderfeed.Hub) {
	router.GET("/api/orderfeed", orderfeed.ServeWS(hub))
}

// RoutesWrapper builds the shared services and registers every route group.
func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter, hub *orderfeed.Hub) {
	mailer := notify.NewMailer()
	rc := checkout.NewReconciler(checkout.NewStripeGateway(), orders.Store{}, mailer)
	api := orders.NewAPI(mailer)

	AddCheckoutRoutes(router, rl, rc)
	AddOrderRoutes(router, rl, api)
	AddCatalogRoutes(router, rl)
	AddFeedRoutes(router, hub)
}
