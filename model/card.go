package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// ErrCardAlreadyBlocked is returned by Block on a card that is already BLOCKED.
var ErrCardAlreadyBlocked = errors.New("card is already blocked")

func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return true
	}
	return false
}

type Card struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	EncryptedNumber string          `json:"-"`
	MaskedNumber    string          `json:"masked_number"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	Status          CardStatus      `json:"status"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (c *Card) IsBlocked() bool {
	return c.Status == CardStatusBlocked
}

// Block moves the card to BLOCKED.
func (c *Card) Block() error {
	if c.Status == CardStatusBlocked {
		return ErrCardAlreadyBlocked
	}
	c.Status = CardStatusBlocked
	return nil
}

// Activate is an administrative override: any status becomes ACTIVE.
func (c *Card) Activate() {
	c.Status = CardStatusActive
}
