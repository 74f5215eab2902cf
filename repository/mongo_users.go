package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-storefront/models"
)

// MongoUsers implements Users.
type MongoUsers struct {
	coll *mongo.Collection
}

func (s *MongoUsers) Create(ctx context.Context, u *models.User) error {
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *MongoUsers) Verify(ctx context.Context, token string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"verificationToken": token}, bson.M{
		"$set": bson.M{"isVerified": true, "verificationToken": ""},
	})
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
