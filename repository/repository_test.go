package repository

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Username: "janedoe", Email: "jane@example.com", Password: "hash"}
		require.NoError(t, repo.Create(ctx, user))
		assert.False(t, user.ID.IsZero())
		assert.False(t, user.CreatedAt.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		err := repo.Create(ctx, &models.User{Email: "jane@example.com"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "janedoe"},
			{Key: "email", Value: "jane@example.com"},
			{Key: "password", Value: "hash"},
		}))

		user, err := repo.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash", user.Password)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.users", mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("username exists", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.users", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))

		exists, err := repo.UsernameExists(ctx, "janedoe")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	mt.Run("update contact", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "address", Value: "221B Baker St"},
		}}))

		addr := "221B Baker St"
		user, err := repo.UpdateContact(ctx, id, &addr, nil)
		require.NoError(t, err)
		assert.Equal(t, "221B Baker St", user.Address)
	})
}

func TestProductRepository_Stock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("decrement succeeds", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, repo.DecrementStock(ctx, primitive.NewObjectID(), 2))
	})

	mt.Run("decrement short", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "kerl.products", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		err := repo.DecrementStock(ctx, primitive.NewObjectID(), 10)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	mt.Run("decrement missing product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "kerl.products", mtest.FirstBatch),
		)

		err := repo.DecrementStock(ctx, primitive.NewObjectID(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("increment missing product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.IncrementStock(ctx, primitive.NewObjectID(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProductRepository_Queries(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find by ids", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.products", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "name", Value: "Shirt"}},
			bson.D{{Key: "_id", Value: b}, {Key: "name", Value: "Cap"}},
		))

		found, err := repo.FindByIDs(ctx, []primitive.ObjectID{a, b, primitive.NewObjectID()})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.Equal(t, "Cap", found[b].Name)
	})

	mt.Run("find by ids empty input", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)

		found, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	mt.Run("find all empty", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.products", mtest.FirstBatch))

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Update(ctx, primitive.NewObjectID(), map[string]interface{}{"name": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(t, repo.Delete(ctx, primitive.NewObjectID()), ErrNotFound)
	})
}

func TestCartRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("save upserts", func(mt *mtest.T) {
		repo := NewCartRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: id}}}},
		))

		cart := &models.Cart{UserID: primitive.NewObjectID()}
		require.NoError(t, repo.Save(ctx, cart))
		assert.Equal(t, id, cart.ID)
	})

	mt.Run("delete reports outcome", func(mt *mtest.T) {
		repo := NewCartRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		deleted, err := repo.DeleteByUserID(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.DeleteByUserID(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	mt.Run("missing cart", func(mt *mtest.T) {
		repo := NewCartRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.carts", mtest.FirstBatch))

		_, err := repo.FindByUserID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find by user", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		userID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.orders", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "userId", Value: userID}, {Key: "totalPrice", Value: 24.0}},
		))

		orders, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, 24.0, orders[0].TotalPrice)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: models.OrderStatusShipped},
		}}))

		order, err := repo.UpdateStatus(ctx, id, models.OrderStatusShipped)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, order.Status)
	})

	mt.Run("update payment status missing", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdatePaymentStatus(ctx, primitive.NewObjectID(), models.PaymentStatusFailed)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(t, repo.Delete(ctx, primitive.NewObjectID()))
	})
}

func TestPaymentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate id", func(mt *mtest.T) {
		repo := NewPaymentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		err := repo.Create(ctx, &models.Payment{OrderID: primitive.NewObjectID()})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	mt.Run("find by processor order", func(mt *mtest.T) {
		repo := NewPaymentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kerl.payments", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "processorOrderId", Value: "order_abc"},
			{Key: "status", Value: models.PaymentStatusPending},
		}))

		p, err := repo.FindByProcessorOrderID(ctx, "order_abc")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPending, p.Status)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewPaymentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Update(ctx, &models.Payment{ID: primitive.NewObjectID()})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestIdempotencyStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
		MaxRetries: -1,
	})
	defer client.Close()

	store := NewIdempotencyStore(client, "order")
	_, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), "k", "v", time.Minute))
}
