package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod is a saved card summary. The full card number and CVV are
// never stored.
type PaymentMethod struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID `bson:"userId" json:"-"`
	CardBrand      string             `bson:"cardBrand" json:"cardBrand"`
	Last4          string             `bson:"last4" json:"last4"`
	ExpiryMonth    int                `bson:"expiryMonth" json:"expiryMonth"`
	ExpiryYear     int                `bson:"expiryYear" json:"expiryYear"`
	CardholderName string             `bson:"cardholderName" json:"cardholderName"`
	IsDefault      bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the card expired before the month of now.
func (p *PaymentMethod) Expired(now time.Time) bool {
	y, m, _ := now.Date()
	if p.ExpiryYear != y {
		return p.ExpiryYear < y
	}
	return p.ExpiryMonth < int(m)
}

// Summary is the display label stored on orders, e.g. "Visa".
func (p *PaymentMethod) Summary() string {
	if p.CardBrand == "" {
		return "Card"
	}
	return p.CardBrand
}
