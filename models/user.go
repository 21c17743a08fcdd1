package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Password holds the bcrypt hash and is never
// serialized to clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type SignupRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
}

// ContactPhone prefers "phone" and falls back to the legacy "phoneNumber".
func (r *SignupRequest) ContactPhone() string {
	if r.Phone != "" {
		return r.Phone
	}
	return r.PhoneNumber
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries the mutable profile fields; nil means unchanged.
type UpdateUserRequest struct {
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}
