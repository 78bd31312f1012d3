package repository

import (
	"context"
	"database/sql"

	"card-bank-api/logger"
	"card-bank-api/model"

	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the contract for transaction database operations.
type ITransactionRepository interface {
	CreateTransaction(ctx context.Context, q DBTX, transaction *model.Transaction) error
	GetTransactionsByCardID(ctx context.Context, cardID int64) ([]*model.Transaction, error)
	GetTransactionsByUserID(ctx context.Context, userID int64) ([]*model.Transaction, error)
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

// CreateTransaction appends a transaction record. Records are never updated
// afterwards, so the status must already be final when it is called.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q DBTX, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"from_card_id": transaction.FromCardID,
		"to_card_id":   transaction.ToCardID,
		"amount":       transaction.Amount.StringFixed(model.MoneyScale),
		"status":       transaction.Status,
	})
	log.Info("Executing query to create a new transaction")

	query := `INSERT INTO transactions (from_card_id, to_card_id, type, amount, description, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transaction.FromCardID, transaction.ToCardID, transaction.Type, transaction.Amount,
		transaction.Description, transaction.Status, transaction.CreatedAt, transaction.CompletedAt,
	).Scan(&transaction.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

const transactionHistorySelect = `
		SELECT t.id, t.from_card_id, fc.masked_number, t.to_card_id, tc.masked_number,
		       t.type, t.amount, t.description, t.status, t.created_at, t.completed_at
		FROM transactions t
		LEFT JOIN cards fc ON fc.id = t.from_card_id
		LEFT JOIN cards tc ON tc.id = t.to_card_id`

// GetTransactionsByCardID retrieves all transactions touching a card, newest first.
func (r *TransactionRepository) GetTransactionsByCardID(ctx context.Context, cardID int64) ([]*model.Transaction, error) {
	log := logger.Log.WithField("card_id", cardID)
	log.Info("Executing query to get transactions by card ID")

	query := transactionHistorySelect + `
		WHERE t.from_card_id = $1 OR t.to_card_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTransactions(ctx, log, query, cardID)
}

// GetTransactionsByUserID retrieves all transactions touching any card of the user, newest first.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, userID int64) ([]*model.Transaction, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get transactions by user ID")

	query := transactionHistorySelect + `
		WHERE fc.user_id = $1 OR tc.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTransactions(ctx, log, query, userID)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, log *logrus.Entry, query string, arg any) ([]*model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		log.WithError(err).Error("Failed to execute transaction history query")
		return nil, err
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(
			&t.ID, &t.FromCardID, &t.FromCardMasked, &t.ToCardID, &t.ToCardMasked,
			&t.Type, &t.Amount, &t.Description, &t.Status, &t.CreatedAt, &t.CompletedAt,
		); err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
