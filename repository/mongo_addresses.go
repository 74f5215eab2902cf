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

// MongoAddresses implements Addresses.
type MongoAddresses struct {
	coll *mongo.Collection
}

func (s *MongoAddresses) List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find addresses: %w", err)
	}
	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	return addresses, nil
}

func (s *MongoAddresses) Get(ctx context.Context, id, userID primitive.ObjectID) (*models.Address, error) {
	var a models.Address
	if err := s.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *MongoAddresses) Create(ctx context.Context, a *models.Address) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	res, err := s.coll.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoAddresses) Update(ctx context.Context, a *models.Address) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": a.ID, "userId": a.UserID}, bson.M{"$set": bson.M{
		"fullName":   a.FullName,
		"phone":      a.Phone,
		"street":     a.Street,
		"city":       a.City,
		"state":      a.State,
		"postalCode": a.PostalCode,
		"country":    a.Country,
		"updatedAt":  a.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAddresses) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAddresses) SetDefault(ctx context.Context, id, userID primitive.ObjectID) error {
	return setDefault(ctx, s.coll, id, userID)
}

// setDefault flags id and clears every other document of userID.
func setDefault(ctx context.Context, coll *mongo.Collection, id, userID primitive.ObjectID) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": bson.M{"isDefault": true}})
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	_, err = coll.UpdateMany(ctx,
		bson.M{"userId": userID, "_id": bson.M{"$ne": id}},
		bson.M{"$set": bson.M{"isDefault": false}},
	)
	if err != nil {
		return fmt.Errorf("clear default: %w", err)
	}
	return nil
}
