package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	UsersCollection          = "users"
	ProductsCollection       = "products"
	CartsCollection          = "carts"
	OrdersCollection         = "orders"
	AddressesCollection      = "addresses"
	PaymentMethodsCollection = "payment_methods"
	WishlistsCollection      = "wishlists"
)

// Mongo bundles the Mongo-backed stores sharing one database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database

	Users          *MongoUsers
	Products       *MongoProducts
	Carts          *MongoCarts
	Orders         *MongoOrders
	Addresses      *MongoAddresses
	PaymentMethods *MongoPaymentMethods
	Wishlists      *MongoWishlists
}

// NewMongo wires every store to database.
func NewMongo(client *mongo.Client, database string) *Mongo {
	db := client.Database(database)
	return &Mongo{
		client:         client,
		db:             db,
		Users:          &MongoUsers{coll: db.Collection(UsersCollection)},
		Products:       &MongoProducts{coll: db.Collection(ProductsCollection)},
		Carts:          &MongoCarts{coll: db.Collection(CartsCollection)},
		Orders:         &MongoOrders{coll: db.Collection(OrdersCollection)},
		Addresses:      &MongoAddresses{coll: db.Collection(AddressesCollection)},
		PaymentMethods: &MongoPaymentMethods{coll: db.Collection(PaymentMethodsCollection)},
		Wishlists:      &MongoWishlists{coll: db.Collection(WishlistsCollection)},
	}
}

// Ping checks the server connection.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the stores query by.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CartsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
		},
		AddressesCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		PaymentMethodsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		WishlistsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range indexes {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
