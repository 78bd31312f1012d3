package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"card-bank-api/logger"
	"card-bank-api/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ICardRepository defines the contract for card database operations.
type ICardRepository interface {
	CreateCard(ctx context.Context, card *model.Card) error
	GetCardByID(ctx context.Context, cardID int64) (*model.Card, error)
	GetCardByIDAndUser(ctx context.Context, cardID, userID int64) (*model.Card, error)
	GetCardForUpdate(ctx context.Context, q DBTX, cardID, userID int64) (*model.Card, error)
	GetCardsByUserID(ctx context.Context, userID int64) ([]*model.Card, error)
	GetCardsByUserAndStatus(ctx context.Context, userID int64, status model.CardStatus) ([]*model.Card, error)
	SearchCardsByUser(ctx context.Context, userID int64, term string) ([]*model.Card, error)
	GetAllCards(ctx context.Context) ([]*model.Card, error)
	UpdateCardStatus(ctx context.Context, cardID int64, status model.CardStatus) error
	ActivateCard(ctx context.Context, cardID int64, expiry time.Time) error
	UpdateCardBalance(ctx context.Context, q DBTX, cardID int64, balance decimal.Decimal) error
	DeleteCard(ctx context.Context, cardID int64) error
	ExpireCards(ctx context.Context, asOf time.Time) ([]int64, error)
}

type CardRepository struct {
	DB *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{DB: db}
}

const cardColumns = `id, user_id, encrypted_number, masked_number, expiry_date, status, balance, created_at`

func scanCard(row rowScanner) (*model.Card, error) {
	var c model.Card
	err := row.Scan(&c.ID, &c.UserID, &c.EncryptedNumber, &c.MaskedNumber, &c.ExpiryDate, &c.Status, &c.Balance, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CardRepository) queryCards(ctx context.Context, log *logrus.Entry, query string, args ...any) ([]*model.Card, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute card query")
		return nil, err
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan card row")
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// CreateCard inserts a new card; the database assigns id, status, balance and created_at.
func (r *CardRepository) CreateCard(ctx context.Context, card *model.Card) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":       card.UserID,
		"masked_number": card.MaskedNumber,
	})
	log.Info("Executing query to create a new card")

	query := `INSERT INTO cards (user_id, encrypted_number, masked_number, expiry_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, balance, created_at`
	err := r.DB.QueryRowContext(ctx, query, card.UserID, card.EncryptedNumber, card.MaskedNumber, card.ExpiryDate).
		Scan(&card.ID, &card.Status, &card.Balance, &card.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create card query")
		return err
	}
	return nil
}

// GetCardByID looks a card up without an ownership filter. For admin use only.
func (r *CardRepository) GetCardByID(ctx context.Context, cardID int64) (*model.Card, error) {
	log := logger.Log.WithField("card_id", cardID)
	log.Debug("Executing query to get card by ID")

	card, err := scanCard(r.DB.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, cardID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.WithError(err).Error("Failed to execute get card by ID query")
	}
	return card, err
}

// GetCardByIDAndUser returns sql.ErrNoRows both for a missing card and for a
// card owned by someone else.
func (r *CardRepository) GetCardByIDAndUser(ctx context.Context, cardID, userID int64) (*model.Card, error) {
	log := logger.Log.WithFields(logrus.Fields{"card_id": cardID, "user_id": userID})
	log.Debug("Executing query to get card by ID and owner")

	card, err := scanCard(r.DB.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1 AND user_id = $2`, cardID, userID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.WithError(err).Error("Failed to execute get card by ID and owner query")
	}
	return card, err
}

// GetCardForUpdate is GetCardByIDAndUser with a row lock held until q's transaction ends.
func (r *CardRepository) GetCardForUpdate(ctx context.Context, q DBTX, cardID, userID int64) (*model.Card, error) {
	log := logger.Log.WithFields(logrus.Fields{"card_id": cardID, "user_id": userID})
	log.Info("Executing query to get card for update")

	card, err := scanCard(q.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1 AND user_id = $2 FOR UPDATE`, cardID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("Card not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get card for update query")
		}
		return nil, err
	}
	return card, nil
}

// GetCardsByUserID retrieves all cards for a specific user.
func (r *CardRepository) GetCardsByUserID(ctx context.Context, userID int64) ([]*model.Card, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get cards by user ID")

	return r.queryCards(ctx, log, `SELECT `+cardColumns+` FROM cards WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *CardRepository) GetCardsByUserAndStatus(ctx context.Context, userID int64, status model.CardStatus) ([]*model.Card, error) {
	log := logger.Log.WithFields(logrus.Fields{"user_id": userID, "status": status})
	log.Info("Executing query to get cards by user and status")

	return r.queryCards(ctx, log,
		`SELECT `+cardColumns+` FROM cards WHERE user_id = $1 AND status = $2 ORDER BY id`, userID, status)
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchCardsByUser matches term case-insensitively against the masked number.
// The term is matched as a literal substring.
func (r *CardRepository) SearchCardsByUser(ctx context.Context, userID int64, term string) ([]*model.Card, error) {
	log := logger.Log.WithFields(logrus.Fields{"user_id": userID, "term": term})
	log.Info("Executing query to search cards by masked number")

	return r.queryCards(ctx, log,
		`SELECT `+cardColumns+` FROM cards WHERE user_id = $1 AND masked_number ILIKE '%' || $2 || '%' ORDER BY id`,
		userID, likeEscaper.Replace(term))
}

// GetAllCards retrieves all cards from the database. For admin use only.
func (r *CardRepository) GetAllCards(ctx context.Context) ([]*model.Card, error) {
	log := logger.Log.WithContext(ctx)
	log.Info("Executing query to get all cards")

	return r.queryCards(ctx, log, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
}

func (r *CardRepository) UpdateCardStatus(ctx context.Context, cardID int64, status model.CardStatus) error {
	log := logger.Log.WithFields(logrus.Fields{"card_id": cardID, "status": status})
	log.Info("Executing query to update card status")

	res, err := r.DB.ExecContext(ctx, `UPDATE cards SET status = $1 WHERE id = $2`, status, cardID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update card status query")
		return err
	}
	return requireAffected(res)
}

// ActivateCard sets the card ACTIVE and stores expiry as its expiry date.
func (r *CardRepository) ActivateCard(ctx context.Context, cardID int64, expiry time.Time) error {
	log := logger.Log.WithFields(logrus.Fields{"card_id": cardID, "expiry_date": expiry.Format(time.DateOnly)})
	log.Info("Executing query to activate card")

	res, err := r.DB.ExecContext(ctx, `UPDATE cards SET status = $1, expiry_date = $2 WHERE id = $3`,
		model.CardStatusActive, expiry, cardID)
	if err != nil {
		log.WithError(err).Error("Failed to execute activate card query")
		return err
	}
	return requireAffected(res)
}

func (r *CardRepository) UpdateCardBalance(ctx context.Context, q DBTX, cardID int64, balance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"card_id":     cardID,
		"new_balance": balance.StringFixed(model.MoneyScale),
	})
	log.Info("Executing query to update card balance")

	res, err := q.ExecContext(ctx, `UPDATE cards SET balance = $1 WHERE id = $2`, balance, cardID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update card balance query")
		return err
	}
	return requireAffected(res)
}

func (r *CardRepository) DeleteCard(ctx context.Context, cardID int64) error {
	log := logger.Log.WithField("card_id", cardID)
	log.Info("Executing query to delete card")

	res, err := r.DB.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, cardID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete card query")
		return err
	}
	return requireAffected(res)
}

// ExpireCards marks every ACTIVE card whose expiry date is before asOf as
// EXPIRED and returns the owners of the affected cards. BLOCKED cards keep
// their status.
func (r *CardRepository) ExpireCards(ctx context.Context, asOf time.Time) ([]int64, error) {
	log := logger.Log.WithField("as_of", asOf.Format(time.DateOnly))
	log.Debug("Executing query to expire cards")

	rows, err := r.DB.QueryContext(ctx,
		`UPDATE cards SET status = $1 WHERE status = $2 AND expiry_date < $3 RETURNING user_id`,
		model.CardStatusExpired, model.CardStatusActive, asOf)
	if err != nil {
		log.WithError(err).Error("Failed to execute expire cards query")
		return nil, err
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		owners = append(owners, userID)
	}
	return owners, rows.Err()
}
