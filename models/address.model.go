package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a saved delivery address
type Address struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     primitive.ObjectID `bson:"userId" json:"-"`
	FullName   string             `bson:"fullName" json:"fullName"`
	Phone      string             `bson:"phone" json:"phone"`
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	State      string             `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string             `bson:"postalCode" json:"postalCode"`
	Country    string             `bson:"country" json:"country"`
	IsDefault  bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot copies the address for embedding in an order.
func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
