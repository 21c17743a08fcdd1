package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment tracks the processor-side order created for an Order.
type Payment struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID            primitive.ObjectID `bson:"orderId" json:"orderId"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	Provider           string             `bson:"provider" json:"provider"`
	ProcessorOrderID   string             `bson:"processorOrderId" json:"processorOrderId"`
	ProcessorPaymentID string             `bson:"processorPaymentId,omitempty" json:"processorPaymentId,omitempty"`
	Signature          string             `bson:"signature,omitempty" json:"signature,omitempty"`
	ClientSecret       string             `bson:"-" json:"clientSecret,omitempty"`
	Amount             int64              `bson:"amount" json:"amount"`
	Currency           string             `bson:"currency" json:"currency"`
	Receipt            string             `bson:"receipt" json:"receipt"`
	Status             string             `bson:"status" json:"status"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the payment has left the pending state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}

type CreatePaymentRequest struct {
	OrderID    string   `json:"orderId" binding:"required"`
	TotalPrice *float64 `json:"totalPrice" binding:"omitempty,gt=0"`
}

type UpdatePaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
	OrderID           string `json:"orderId" binding:"required"`
	UserID            string `json:"userId"`
}
