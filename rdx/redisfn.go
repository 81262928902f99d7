package rdx

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn = redis.NewClient(&redis.Options{
	Addr: addr(),
})

func addr() string {
	if a := os.Getenv("REDIS_ADDR"); a != "" {
		return a
	}
	return "localhost:6379"
}

// OrderEventsChannel carries JSON order events for the admin live feed.
const OrderEventsChannel = "orders:events"

const sessionOrderTTL = 24 * time.Hour

// CacheSessionOrder remembers which order a checkout session reconciled into.
// Purely a latency shortcut for repeated confirm calls; the unique index on
// the orders collection is the correctness mechanism.
func CacheSessionOrder(ctx context.Context, sessionID, orderID string) {
	if err := Conn.Set(ctx, "checkout:session:"+sessionID, orderID, sessionOrderTTL).Err(); err != nil {
		log.Println("redis session cache set error:", err)
	}
}

// CachedSessionOrder returns the cached order id for a session, or "" on miss
// or redis trouble. Callers must fall back to the database either way.
func CachedSessionOrder(ctx context.Context, sessionID string) string {
	v, err := Conn.Get(ctx, "checkout:session:"+sessionID).Result()
	if err != nil {
		return ""
	}
	return v
}

// PublishOrderEvent pushes a serialized order event onto the live feed
// channel. Best effort: a down redis never blocks order creation.
func PublishOrderEvent(ctx context.Context, payload []byte) {
	if err := Conn.Publish(ctx, OrderEventsChannel, payload).Err(); err != nil {
		log.Println("redis publish error:", err)
	}
}
