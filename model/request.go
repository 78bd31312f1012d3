// file: model/request.go

package model

import "github.com/shopspring/decimal"

// RegisterRequest defines the payload for creating a new user.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
	Phone     string `json:"phone" validate:"required,e164"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,min=10,max=500"`
}

// TransferRequest moves Amount between two cards owned by the caller.
// Amount range and sign are enforced by the transfer service, not here.
type TransferRequest struct {
	FromCardID  int64           `json:"from_card_id" validate:"required,gt=0"`
	ToCardID    int64           `json:"to_card_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

// CreateCardRequest is the admin payload for issuing a card to a user.
type CreateCardRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=100"`
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
}
