package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// MongoOrders implements Orders.
type MongoOrders struct {
	coll *mongo.Collection
}

func (s *MongoOrders) Create(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoOrders) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoOrders) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *MongoOrders) FindByNumber(ctx context.Context, number, email string) (*models.Order, error) {
	return s.findOne(ctx, bson.M{
		"orderNumber":   strings.TrimSpace(number),
		"customerEmail": strings.ToLower(strings.TrimSpace(email)),
	})
}

func (s *MongoOrders) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var o models.Order
	if err := s.coll.FindOne(ctx, filter).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *MongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoOrders) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []string, to string, ev *models.TrackingEvent) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	if ev != nil {
		update["$push"] = bson.M{"tracking": ev}
	}

	var o models.Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transition order: %w", err)
	}

	// distinguish a missing order from one in the wrong status
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusConflict
}

func (s *MongoOrders) AppendTracking(ctx context.Context, id primitive.ObjectID, ev models.TrackingEvent) (*models.Order, error) {
	var o models.Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"tracking": ev},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}
