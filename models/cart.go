package models

// CartLine is a client-owned cart entry. Carts are never persisted
// server-side; lines are reconstructed into order items at checkout time.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
	Image     string  `json:"image,omitempty"`
}
