package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Prices[i] is the price of Sizes[i].
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Sizes       []string           `bson:"sizes" json:"sizes"`
	Prices      []float64          `bson:"prices" json:"prices"`
	Offers      []float64          `bson:"offers,omitempty" json:"offers,omitempty"`
	Images      [][]string         `bson:"images" json:"images"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PriceFor returns the unit price for a size index.
func (p *Product) PriceFor(sizeIndex int) (float64, bool) {
	if sizeIndex < 0 || sizeIndex >= len(p.Prices) {
		return 0, false
	}
	return p.Prices[sizeIndex], true
}

type CreateProductRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Sizes       []string   `json:"sizes" binding:"required,min=1"`
	Prices      []float64  `json:"prices" binding:"required,min=1,dive,gte=0"`
	Offers      []float64  `json:"offers"`
	Images      [][]string `json:"images" binding:"required,min=1"`
	Stock       *int       `json:"stock" binding:"required,gte=0"`
}

// UpdateProductRequest replaces each present field wholesale.
type UpdateProductRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Sizes       *[]string   `json:"sizes"`
	Prices      *[]float64  `json:"prices"`
	Offers      *[]float64  `json:"offers"`
	Images      *[][]string `json:"images"`
	Stock       *int        `json:"stock"`
}

type PresignImageRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	Method    string `json:"method"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int64  `json:"expiresIn"`
}
