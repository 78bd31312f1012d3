package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CardResponse struct {
	ID           int64           `json:"id"`
	MaskedNumber string          `json:"masked_number"`
	ExpiryDate   string          `json:"expiry_date"`
	Status       CardStatus      `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
}

func NewCardResponse(c *Card) CardResponse {
	return CardResponse{
		ID:           c.ID,
		MaskedNumber: c.MaskedNumber,
		ExpiryDate:   c.ExpiryDate.Format(time.DateOnly),
		Status:       c.Status,
		Balance:      c.Balance,
	}
}

func NewCardResponses(cards []*Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewCardResponse(c))
	}
	return out
}

type BalanceResponse struct {
	CardID       int64           `json:"card_id"`
	MaskedNumber string          `json:"masked_number"`
	Balance      decimal.Decimal `json:"balance"`
}

type TransactionResponse struct {
	ID             int64             `json:"id"`
	FromCardID     *int64            `json:"from_card_id"`
	FromCardMasked *string           `json:"from_card_masked"`
	ToCardID       *int64            `json:"to_card_id"`
	ToCardMasked   *string           `json:"to_card_masked"`
	Type           TransactionType   `json:"type"`
	Amount         decimal.Decimal   `json:"amount"`
	Description    string            `json:"description"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at"`
}

func NewTransactionResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		FromCardID:     t.FromCardID,
		FromCardMasked: t.FromCardMasked,
		ToCardID:       t.ToCardID,
		ToCardMasked:   t.ToCardMasked,
		Type:           t.Type,
		Amount:         t.Amount,
		Description:    t.Description,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

func NewTransactionResponses(txs []*Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}
