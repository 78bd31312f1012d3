package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const TransactionTypeTransfer TransactionType = "TRANSFER"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// ErrTransactionFinalized is returned when a terminal transaction is asked to change status.
var ErrTransactionFinalized = errors.New("transaction is already finalized")

// MaxDescriptionLength bounds Transaction.Description in characters, matching
// the transactions.description column.
const MaxDescriptionLength = 255

type Transaction struct {
	ID          int64             `json:"id"`
	FromCardID  *int64            `json:"from_card_id"`
	ToCardID    *int64            `json:"to_card_id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at"`

	// Populated by history queries that join the cards table.
	FromCardMasked *string `json:"-"`
	ToCardMasked   *string `json:"-"`
}

// NewTransfer builds a PENDING transfer record between two cards.
func NewTransfer(fromCardID, toCardID int64, amount decimal.Decimal, description string, now time.Time) *Transaction {
	return &Transaction{
		FromCardID:  &fromCardID,
		ToCardID:    &toCardID,
		Type:        TransactionTypeTransfer,
		Amount:      amount,
		Description: description,
		Status:      TransactionStatusPending,
		CreatedAt:   now,
	}
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}

func (t *Transaction) MarkCompleted(at time.Time) error {
	if t.IsTerminal() {
		return ErrTransactionFinalized
	}
	t.Status = TransactionStatusCompleted
	t.CompletedAt = &at
	return nil
}

func (t *Transaction) MarkFailed() error {
	if t.IsTerminal() {
		return ErrTransactionFinalized
	}
	t.Status = TransactionStatusFailed
	t.CompletedAt = nil
	return nil
}
