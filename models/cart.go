package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product+size+quantity+price entry of a cart or order.
// Price is the line total (quantity times the unit price for the size).
type LineItem struct {
	ProductID         primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	Price             float64            `bson:"price" json:"price"`
	SelectedSizeIndex int                `bson:"selectedSizeIndex" json:"selectedSizeIndex"`
}

// Cart is the single mutable cart of a user. TotalPrice always equals the
// sum of item prices.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Items      []LineItem         `bson:"items" json:"items"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ResolvedLineItem is a line item with its product document attached. The
// product is nil when it has since been deleted.
type ResolvedLineItem struct {
	LineItem `bson:",inline"`
	Product  *Product `json:"product"`
}

// CartView is a cart with product references resolved.
type CartView struct {
	ID         primitive.ObjectID `json:"_id"`
	UserID     primitive.ObjectID `json:"userId"`
	Items      []ResolvedLineItem `json:"items"`
	TotalPrice float64            `json:"totalPrice"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type AddCartItemRequest struct {
	UserID            string `json:"userId"`
	ProductID         string `json:"productId" binding:"required"`
	Quantity          int    `json:"quantity" binding:"required,gte=1"`
	SelectedSizeIndex *int   `json:"selectedSizeIndex" binding:"required,gte=0"`
}

type UpdateCartItemRequest struct {
	UserID            string `json:"userId"`
	ProductID         string `json:"productId" binding:"required"`
	Quantity          int    `json:"quantity" binding:"required,gte=1"`
	SelectedSizeIndex *int   `json:"selectedSizeIndex" binding:"required,gte=0"`
}

type RemoveCartItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId" binding:"required"`
}
