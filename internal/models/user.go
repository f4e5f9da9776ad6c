package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is a donor / campaign owner account.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	HPassword string             `bson:"password" json:"-"`
	CreatedOn time.Time          `bson:"created_on" json:"created_on"`
	UpdatedOn time.Time          `bson:"updated_on" json:"updated_on"`
}

// Admin is a back-office account.
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	HPassword string             `bson:"password" json:"-"`
	CreatedOn time.Time          `bson:"created_on" json:"created_on"`
	UpdatedOn time.Time          `bson:"updated_on" json:"updated_on"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the public view of an account returned by the account endpoints.
type Profile struct {
	UserID primitive.ObjectID `json:"user_id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Phone  string             `json:"phone,omitempty"`
	Role   string             `json:"role"`
}

// UserWithRole is the admin listing view of a user.
type UserWithRole struct {
	User
	Role string `json:"role"`
}
