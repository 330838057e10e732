package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

// User is the Supabase profile row. Identity and credentials live in
// Supabase auth; this is the marketplace-facing profile.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	FullName    string    `db:"fullname" json:"fullname"`
	Email       string    `db:"email" json:"email" validate:"required,email"`
	Password    string    `db:"password" json:"password,omitempty"`
	Role        string    `db:"role" json:"role" validate:"omitempty,oneof=customer agent admin"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Location    string    `db:"location" json:"location"`
	AvatarURL   string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
