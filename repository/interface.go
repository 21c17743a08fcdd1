package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Company-KERL/Kerl-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateContact(ctx context.Context, id primitive.ObjectID, address, phone *string) (*models.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock removes qty units only if at least qty are in stock.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type CartRepository interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	// DeleteByUserID reports whether a cart was deleted.
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, paymentStatus string) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error)
	FindByProcessorOrderID(ctx context.Context, processorOrderID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
