package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Wishlist holds the products a user saved for later
type Wishlist struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     primitive.ObjectID   `bson:"userId" json:"-"`
	ProductIDs []primitive.ObjectID `bson:"productIds" json:"productIds"`
}
