package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// MongoCarts implements Carts.
type MongoCarts struct {
	coll *mongo.Collection
}

// Get returns the user's cart, or an empty one when none exists yet.
func (s *MongoCarts) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (s *MongoCarts) Save(ctx context.Context, c *models.Cart) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := s.coll.UpdateOne(ctx, bson.M{"userId": c.UserID},
		bson.M{"$set": bson.M{"items": c.Items, "updatedAt": c.UpdatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *MongoCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
