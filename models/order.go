package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order fulfilment statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// Payment statuses, shared by orders and payments.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// ValidOrderStatus reports whether status is a known fulfilment status.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type Address struct {
	Street string `bson:"street" json:"street" binding:"required"`
	City   string `bson:"city" json:"city" binding:"required"`
	State  string `bson:"state" json:"state" binding:"required"`
	Zip    string `bson:"zip" json:"zip" binding:"required"`
}

// Order is an immutable snapshot of purchased lines plus evolving statuses.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Items         []LineItem         `bson:"items" json:"items"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	Status        string             `bson:"status" json:"status"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	Address       Address            `bson:"address" json:"address"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderView is an order with product references resolved.
type OrderView struct {
	ID            primitive.ObjectID `json:"_id"`
	UserID        primitive.ObjectID `json:"userId"`
	Items         []ResolvedLineItem `json:"items"`
	TotalPrice    float64            `json:"totalPrice"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	Address       Address            `json:"address"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type OrderItemRequest struct {
	ProductID         string `json:"productId" binding:"required"`
	Quantity          int    `json:"quantity" binding:"required,gte=1"`
	SelectedSizeIndex *int   `json:"selectedSizeIndex" binding:"required,gte=0"`
}

type CreateOrderRequest struct {
	UserID  string             `json:"userId"`
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Address Address            `json:"address" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}
