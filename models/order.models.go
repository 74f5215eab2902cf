package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Canonical tracking step names, in display order.
const (
	StepOrderPlaced    = "Order Placed"
	StepOrderProcessed = "Order Processed"
	StepShipped        = "Shipped"
	StepInTransit      = "In Transit"
	StepOutForDelivery = "Out for Delivery"
	StepDelivered      = "Delivered"
)

// CanonicalSteps is the fixed shipment progression used to backfill
// stages that have not been recorded yet.
var CanonicalSteps = []string{
	StepOrderPlaced,
	StepOrderProcessed,
	StepShipped,
	StepInTransit,
	StepOutForDelivery,
	StepDelivered,
}

// statusRank orders the forward lifecycle. Cancelled is off the line.
var statusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// statusStep maps a lifecycle status to the tracking event recorded when
// an order enters it.
var statusStep = map[string]string{
	OrderStatusPending:    StepOrderPlaced,
	OrderStatusProcessing: StepOrderProcessed,
	OrderStatusShipped:    StepShipped,
	OrderStatusDelivered:  StepDelivered,
}

// OrderItem is a line of a placed order. Items are immutable once the
// order exists.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// ShippingAddress is a copy of an Address taken when the order is placed.
// It is never updated when the saved address changes.
type ShippingAddress struct {
	FullName   string `bson:"fullName" json:"fullName"`
	Phone      string `bson:"phone" json:"phone"`
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// TrackingEvent is a timestamped shipment status update.
type TrackingEvent struct {
	Status      string    `bson:"status" json:"status"`
	Description string    `bson:"description" json:"description"`
	Timestamp   Timestamp `bson:"timestamp" json:"timestamp"`
}

// Order represents a user's order
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail,omitempty"`
	Status          string             `bson:"status" json:"status"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentLast4    string             `bson:"paymentLast4,omitempty" json:"paymentLast4,omitempty"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	// ShippingCost and Tax are nil when the backend did not record them.
	ShippingCost *float64        `bson:"shippingCost,omitempty" json:"shippingCost,omitempty"`
	Tax          *float64        `bson:"tax,omitempty" json:"tax,omitempty"`
	Total        float64         `bson:"total" json:"total"`
	Tracking     []TrackingEvent `bson:"tracking" json:"tracking"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	return IsCancellable(o.Status)
}

// IsCancellable reports whether an order in status may be cancelled.
func IsCancellable(status string) bool {
	return status == OrderStatusPending || status == OrderStatusProcessing
}

// IsValidOrderStatus reports whether status is a known lifecycle status.
func IsValidOrderStatus(status string) bool {
	if status == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[status]
	return ok
}

// CanAdvance reports whether to is the next status after from in the
// forward lifecycle. Steps cannot be skipped. Moving to cancelled is
// governed by IsCancellable instead.
func CanAdvance(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// StepForStatus returns the canonical tracking step recorded when an order
// enters status, or "" if none applies.
func StepForStatus(status string) string {
	return statusStep[status]
}
