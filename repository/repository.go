package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict is returned when a conditional status update finds
	// the order in a status it may not leave.
	ErrStatusConflict = errors.New("order status conflict")
)

// Users stores accounts.
type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Verify(ctx context.Context, token string) error
}

// Products stores the catalog.
type Products interface {
	List(ctx context.Context, category string) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddReview appends r and returns the product with refreshed aggregates.
	AddReview(ctx context.Context, id primitive.ObjectID, r models.Review) (*models.Product, error)
	// ReserveStock decrements stock for every item, or none of them when
	// any product is short.
	ReserveStock(ctx context.Context, items []models.OrderItem) error
	ReleaseStock(ctx context.Context, items []models.OrderItem) error
}

// Carts stores one cart per user.
type Carts interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// Orders stores placed orders. Orders are never deleted.
type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	FindByNumber(ctx context.Context, number, email string) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// TransitionStatus moves the order to `to` only if it is currently in one
	// of `from`, appending ev when non-nil. It returns ErrStatusConflict when
	// the order exists in another status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []string, to string, ev *models.TrackingEvent) (*models.Order, error)
	AppendTracking(ctx context.Context, id primitive.ObjectID, ev models.TrackingEvent) (*models.Order, error)
}

// Addresses stores saved addresses, scoped to a user.
type Addresses interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	Get(ctx context.Context, id, userID primitive.ObjectID) (*models.Address, error)
	Create(ctx context.Context, a *models.Address) error
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	// SetDefault marks id as the only default address of userID.
	SetDefault(ctx context.Context, id, userID primitive.ObjectID) error
}

// PaymentMethods stores masked card summaries, scoped to a user.
type PaymentMethods interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]models.PaymentMethod, error)
	Get(ctx context.Context, id, userID primitive.ObjectID) (*models.PaymentMethod, error)
	Create(ctx context.Context, p *models.PaymentMethod) error
	Update(ctx context.Context, p *models.PaymentMethod) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	SetDefault(ctx context.Context, id, userID primitive.ObjectID) error
}

// Wishlists stores saved-for-later products.
type Wishlists interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
}

// ChatSessions stores recent chat turns per session.
type ChatSessions interface {
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Append(ctx context.Context, sessionID string, msgs ...models.ChatMessage) error
}
