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

// MongoProducts implements Products.
type MongoProducts struct {
	coll *mongo.Collection
}

func (s *MongoProducts) List(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetProjection(bson.M{"reviews": 0}).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (s *MongoProducts) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	res, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoProducts) Update(ctx context.Context, id primitive.ObjectID, p *models.Product) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price,
		"stock":       p.Stock,
		"image":       p.Image,
	}})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReview appends r and recomputes rating and reviewCount in the same
// document update.
func (s *MongoProducts) AddReview(ctx context.Context, id primitive.ObjectID, r models.Review) (*models.Product, error) {
	var p models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, reviewPipeline(r),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func reviewPipeline(r models.Review) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				// literal so a comment starting with $ is not read as a field path
				bson.A{bson.M{"$literal": r}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"reviewCount": bson.M{"$size": "$reviews"},
			"rating":      bson.M{"$round": bson.A{bson.M{"$avg": "$reviews.rating"}, 1}},
		}}},
	}
}

// ErrInsufficientStock is returned by ReserveStock when a product is short.
type ErrInsufficientStock struct {
	Name string
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s", e.Name)
}

func (s *MongoProducts) ReserveStock(ctx context.Context, items []models.OrderItem) error {
	reserved := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		res, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": it.ProductID, "stock": bson.M{"$gte": it.Quantity}},
			bson.M{"$inc": bson.M{"stock": -it.Quantity}},
		)
		if err == nil && res.MatchedCount == 1 {
			reserved = append(reserved, it)
			continue
		}
		if relErr := s.ReleaseStock(ctx, reserved); relErr != nil {
			return fmt.Errorf("release stock after failed reservation: %w", relErr)
		}
		if err != nil {
			return fmt.Errorf("reserve stock: %w", err)
		}
		return &ErrInsufficientStock{Name: it.Name}
	}
	return nil
}

// ReleaseStock puts back stock taken by ReserveStock.
func (s *MongoProducts) ReleaseStock(ctx context.Context, items []models.OrderItem) error {
	for _, it := range items {
		_, err := s.coll.UpdateOne(ctx, bson.M{"_id": it.ProductID}, bson.M{"$inc": bson.M{"stock": it.Quantity}})
		if err != nil {
			return fmt.Errorf("release stock for %s: %w", it.ProductID.Hex(), err)
		}
	}
	return nil
}
