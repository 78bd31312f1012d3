package service

import (
	"errors"
	"fmt"

	"card-bank-api/model"
)

var (
	ErrInvalidAmount        = errors.New("transfer amount must be greater than 0 with at most 2 decimal places")
	ErrCardNotFound         = errors.New("card not found or does not belong to user")
	ErrCardBlocked          = errors.New("card is blocked")
	ErrCardAlreadyBlocked   = model.ErrCardAlreadyBlocked
	ErrInsufficientFunds    = errors.New("insufficient funds on source card")
	ErrInvalidCardStatus    = errors.New("invalid card status")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token has expired, please log in again")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrJWTSecretMissing     = errors.New("jwt secret key is not configured")
	ErrDescriptionTooLong   = fmt.Errorf("description must be at most %d characters", model.MaxDescriptionLength)
)

// kindError is a sentinel with its own message that still matches a broader
// error kind through errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

var (
	ErrSameCardTransfer       error = &kindError{kind: ErrInvalidAmount, msg: "cannot transfer to the same card"}
	ErrSourceCardBlocked      error = &kindError{kind: ErrCardBlocked, msg: "source card is blocked"}
	ErrDestinationCardBlocked error = &kindError{kind: ErrCardBlocked, msg: "destination card is blocked"}
)

// TransferFailedError is returned when a transfer passed validation but could
// not be applied. The attempt is stored as a FAILED transaction whose id is
// TransactionID (zero if even that insert failed).
type TransferFailedError struct {
	TransactionID int64
	Err           error
}

func (e *TransferFailedError) Error() string {
	if e.TransactionID == 0 {
		return fmt.Sprintf("transfer failed: %v", e.Err)
	}
	return fmt.Sprintf("transfer failed (transaction %d): %v", e.TransactionID, e.Err)
}

func (e *TransferFailedError) Unwrap() error {
	return e.Err
}
