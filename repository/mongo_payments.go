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

// MongoPaymentMethods implements PaymentMethods.
type MongoPaymentMethods struct {
	coll *mongo.Collection
}

func (s *MongoPaymentMethods) List(ctx context.Context, userID primitive.ObjectID) ([]models.PaymentMethod, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find payment methods: %w", err)
	}
	methods := []models.PaymentMethod{}
	if err := cursor.All(ctx, &methods); err != nil {
		return nil, fmt.Errorf("decode payment methods: %w", err)
	}
	return methods, nil
}

func (s *MongoPaymentMethods) Get(ctx context.Context, id, userID primitive.ObjectID) (*models.PaymentMethod, error) {
	var p models.PaymentMethod
	if err := s.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *MongoPaymentMethods) Create(ctx context.Context, p *models.PaymentMethod) error {
	p.CreatedAt = time.Now().UTC()
	res, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoPaymentMethods) Update(ctx context.Context, p *models.PaymentMethod) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": p.ID, "userId": p.UserID}, bson.M{"$set": bson.M{
		"expiryMonth":    p.ExpiryMonth,
		"expiryYear":     p.ExpiryYear,
		"cardholderName": p.CardholderName,
	}})
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPaymentMethods) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPaymentMethods) SetDefault(ctx context.Context, id, userID primitive.ObjectID) error {
	return setDefault(ctx, s.coll, id, userID)
}
