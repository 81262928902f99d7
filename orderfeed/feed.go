package orderfeed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"time"

	"arcane/middleware"
	"arcane/models"
	"arcane/rdx"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// OrderEvent is the live-feed payload pushed to admin dashboards whenever an
// order reconciles.
type OrderEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalPrice    float64   `json:"totalPrice"`
	IsPaid        bool      `json:"isPaid"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PublishOrderCreated pushes an order-created event through redis so every
// server process feeds its own websocket clients. Best effort.
func PublishOrderCreated(o *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := OrderEvent{
		ID:            uuid.NewString(),
		Type:          "order_created",
		OrderID:       o.ID,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		IsPaid:        o.IsPaid,
		CreatedAt:     o.CreatedAt,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Println("orderfeed marshal error:", err)
		return
	}
	rdx.PublishOrderEvent(ctx, data)
}

// Subscribe forwards redis order events into the hub until ctx is done.
// Run it as a goroutine next to hub.Run.
func Subscribe(ctx context.Context, hub *Hub) {
	sub := rdx.Conn.Subscribe(ctx, rdx.OrderEventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			hub.Broadcast([]byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeWS handles GET /api/orderfeed. Browsers can't set an Authorization
// header on a websocket, so the admin token rides in the token query param.
func ServeWS(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.URL.Query().Get("token"))
		if err != nil || !slices.Contains(claims.Role, "admin") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("orderfeed upgrade:", err)
			return
		}

		client := &Client{Conn: conn, Send: make(chan []byte, 64)}
		hub.register <- client

		go writePump(client)
		go readPump(hub, client)
	}
}

func writePump(c *Client) {
	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.Conn.Close()
}

// readPump only exists to notice the peer going away.
func readPump(hub *Hub, c *Client) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
