package repository

import (
	"context"
	"errors"

	"github.com/Company-KERL/Kerl-backend/database"
	"github.com/Company-KERL/Kerl-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{coll: db.Collection(database.PaymentsCollection)}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	payment.CreatedAt = now()
	payment.UpdatedAt = payment.CreatedAt

	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = id
	}
	return nil
}

// FindByOrderID returns the most recent payment attempt for an order.
func (r *mongoPaymentRepository) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"orderId": orderID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
}

func (r *mongoPaymentRepository) FindByProcessorOrderID(ctx context.Context, processorOrderID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"processorOrderId": processorOrderID})
}

// Update persists the mutable fields of payment.
func (r *mongoPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = now()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": payment.ID},
		bson.M{"$set": bson.M{
			"status":             payment.Status,
			"processorOrderId":   payment.ProcessorOrderID,
			"processorPaymentId": payment.ProcessorPaymentID,
			"signature":          payment.Signature,
			"updatedAt":          payment.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Payment, error) {
	var payment models.Payment
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
