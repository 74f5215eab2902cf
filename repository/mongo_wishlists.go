package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// MongoWishlists implements Wishlists.
type MongoWishlists struct {
	coll *mongo.Collection
}

func (s *MongoWishlists) Get(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return &models.Wishlist{UserID: userID, ProductIDs: []primitive.ObjectID{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find wishlist: %w", err)
	}
	if w.ProductIDs == nil {
		w.ProductIDs = []primitive.ObjectID{}
	}
	return &w, nil
}

func (s *MongoWishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"userId": userID},
		bson.M{"$addToSet": bson.M{"productIds": productID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

func (s *MongoWishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$pull": bson.M{"productIds": productID}})
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}
