package models

import "time"

// CartLine pairs a product snapshot with a positive quantity. Lines are keyed
// by product id; a quantity update to zero or below removes the line.
type CartLine struct {
	ProductID   string `json:"product_id" bson:"product_id"`
	ProductName string `json:"product_name" bson:"product_name"`
	Price       int64  `json:"price" bson:"price"`
	Quantity    int    `json:"quantity" bson:"quantity"`
	AddedAt     string `json:"added_at" bson:"added_at"`
}

// Subtotal is price * quantity for this line.
func (l *CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// CartSnapshot is the JSON document persisted to the durable session cache so
// a reload reconstructs the same cart.
type CartSnapshot struct {
	SessionID   string     `json:"session_id"`
	Lines       []CartLine `json:"lines"`
	TotalItems  int        `json:"total_items"`
	TotalPrice  int64      `json:"total_price"`
	LastUpdated time.Time  `json:"last_updated"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity"`
}
