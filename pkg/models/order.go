package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OrderStatus tracks an order through its delivery lifecycle.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// forward transitions; cancelled is additionally reachable from any
// non-terminal state.
var nextStatus = map[OrderStatus]OrderStatus{
	StatusPending:        StatusConfirmed,
	StatusConfirmed:      StatusPreparing,
	StatusPreparing:      StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return nextStatus[from] == to
}

// DeliveryTarget is the denormalized delivery destination frozen into an
// order: either a saved address snapshot or an ad hoc map location.
type DeliveryTarget struct {
	AddressID bson.ObjectID `json:"address_id,omitempty" bson:"address_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Line      string        `json:"line" bson:"line"`
	Phone     string        `json:"phone" bson:"phone"`
	Landmark  string        `json:"landmark,omitempty" bson:"landmark,omitempty"`
	Latitude  float64       `json:"latitude" bson:"latitude"`
	Longitude float64       `json:"longitude" bson:"longitude"`
}

// Order is the persisted result of checkout. The priced fields are copied in
// at creation and never recomputed; later cart mutations cannot change them.
type Order struct {
	ID                bson.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID           string        `json:"order_id" bson:"order_id"`
	UserID            bson.ObjectID `json:"user_id" bson:"user_id"`
	Lines             []CartLine    `json:"lines" bson:"lines" validate:"required,min=1"`
	Delivery          DeliveryTarget `json:"delivery" bson:"delivery"`
	PaymentMethod     string        `json:"payment_method" bson:"payment_method"`
	Subtotal          int64         `json:"subtotal" bson:"subtotal"`
	DeliveryCharge    int64         `json:"delivery_charge" bson:"delivery_charge"`
	DiscountAmount    int64         `json:"discount_amount" bson:"discount_amount"`
	GSTAmount         int64         `json:"gst_amount" bson:"gst_amount"`
	Tip               int64         `json:"tip" bson:"tip"`
	TotalPrice        int64         `json:"total_price" bson:"total_price"`
	AppliedPromo      string        `json:"applied_promo,omitempty" bson:"applied_promo,omitempty"`
	Status            OrderStatus   `json:"status" bson:"status"`
	EstimatedMinutes  int           `json:"estimated_minutes" bson:"estimated_minutes"`
	EstimatedDelivery time.Time     `json:"estimated_delivery" bson:"estimated_delivery"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" bson:"updated_at"`
}

func (o *Order) SetTimestamps() {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// ItemCount returns the total quantity across all order lines.
func (o *Order) ItemCount() int {
	var count int
	for _, line := range o.Lines {
		count += line.Quantity
	}
	return count
}

// CanBeCancelled reports whether cancellation is still possible.
func (o *Order) CanBeCancelled() bool {
	return !o.Status.Terminal()
}
