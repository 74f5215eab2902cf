package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user in the system
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password,omitempty" json:"-"`
	Role              string             `bson:"role" json:"role"`
	IsVerified        bool               `bson:"isVerified" json:"isVerified"`
	VerificationToken string             `bson:"verificationToken" json:"-"`
}
