package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/repository"

	"github.com/sirupsen/logrus"
)

type TransactionService struct {
	db              *sql.DB
	cardRepo        repository.ICardRepository
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
	now             func() time.Time
}

func NewTransactionService(db *sql.DB, cardRepo repository.ICardRepository, transactionRepo repository.ITransactionRepository, cache ICacheClient) *TransactionService {
	return &TransactionService{
		db:              db,
		cardRepo:        cardRepo,
		transactionRepo: transactionRepo,
		cache:           cache,
		now:             time.Now,
	}
}

// Transfer moves req.Amount from one of the user's cards to another.
//
// Validation failures return before anything is written. Once both cards are
// locked and checked, the attempt is recorded exactly once: COMPLETED together
// with the balance updates, or FAILED in a separate write if any step after
// that point fails.
func (s *TransactionService) Transfer(ctx context.Context, userID int64, req model.TransferRequest) (result *model.Transaction, err error) {
	log := logger.Log.WithFields(logrus.Fields{
		"from_card_id": req.FromCardID,
		"to_card_id":   req.ToCardID,
		"amount":       req.Amount.String(),
		"user_id":      userID,
	})

	log.Info("Starting card transfer")

	if !req.Amount.IsPositive() || !model.HasMoneyScale(req.Amount) {
		return nil, ErrInvalidAmount
	}
	if req.FromCardID == req.ToCardID {
		return nil, ErrSameCardTransfer
	}
	if utf8.RuneCountInString(req.Description) > model.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	from, to, err := s.lockCards(ctx, tx, userID, req.FromCardID, req.ToCardID)
	if err != nil {
		return nil, err
	}
	if from.IsBlocked() {
		return nil, ErrSourceCardBlocked
	}
	if to.IsBlocked() {
		return nil, ErrDestinationCardBlocked
	}
	if from.Balance.LessThan(req.Amount) {
		log.WithField("balance", from.Balance.String()).Warn("Transfer rejected: insufficient funds")
		return nil, ErrInsufficientFunds
	}

	transfer := model.NewTransfer(from.ID, to.ID, req.Amount, req.Description, s.now())
	defer func() {
		if err != nil {
			result = nil
			err = s.recordFailure(ctx, tx, transfer, err, log)
		}
	}()

	if err = s.cardRepo.UpdateCardBalance(ctx, tx, from.ID, from.Balance.Sub(req.Amount)); err != nil {
		return nil, fmt.Errorf("could not update source card balance: %w", err)
	}
	if err = s.cardRepo.UpdateCardBalance(ctx, tx, to.ID, to.Balance.Add(req.Amount)); err != nil {
		return nil, fmt.Errorf("could not update destination card balance: %w", err)
	}

	if err = transfer.MarkCompleted(s.now()); err != nil {
		return nil, err
	}
	if err = s.transactionRepo.CreateTransaction(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	from.Balance = from.Balance.Sub(req.Amount)
	to.Balance = to.Balance.Add(req.Amount)
	transfer.FromCardMasked = &from.MaskedNumber
	transfer.ToCardMasked = &to.MaskedNumber

	invalidateCards(ctx, s.cache, userID)

	log.WithFields(logrus.Fields{
		"transaction_id": transfer.ID,
		"from_card":      from.MaskedNumber,
		"to_card":        to.MaskedNumber,
	}).Info("Card transfer completed")
	return transfer, nil
}

// lockCards loads both cards FOR UPDATE in ascending id order so concurrent
// transfers between the same pair cannot deadlock.
func (s *TransactionService) lockCards(ctx context.Context, tx *sql.Tx, userID, fromID, toID int64) (from, to *model.Card, err error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}

	a, err := s.lockCard(ctx, tx, first, userID)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.lockCard(ctx, tx, second, userID)
	if err != nil {
		return nil, nil, err
	}

	if first == fromID {
		return a, b, nil
	}
	return b, a, nil
}

func (s *TransactionService) lockCard(ctx context.Context, tx *sql.Tx, cardID, userID int64) (*model.Card, error) {
	card, err := s.cardRepo.GetCardForUpdate(ctx, tx, cardID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("could not lock card %d: %w", cardID, err)
	}
	return card, nil
}

// recordFailure rolls back tx and stores the attempt as FAILED outside of it.
// The rollback comes first: the failed record references both card rows,
// which tx still holds locked.
func (s *TransactionService) recordFailure(ctx context.Context, tx *sql.Tx, attempt *model.Transaction, cause error, log *logrus.Entry) error {
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		log.WithError(rbErr).Warn("Rollback after failed transfer returned an error")
	}

	failed := model.NewTransfer(*attempt.FromCardID, *attempt.ToCardID, attempt.Amount, attempt.Description, attempt.CreatedAt)
	_ = failed.MarkFailed()

	if err := s.transactionRepo.CreateTransaction(context.WithoutCancel(ctx), s.db, failed); err != nil {
		log.WithError(err).Error("Failed to persist FAILED transaction record")
		return &TransferFailedError{Err: errors.Join(cause, fmt.Errorf("could not record failed transfer: %w", err))}
	}

	log.WithError(cause).WithField("transaction_id", failed.ID).Error("Card transfer failed")
	return &TransferFailedError{TransactionID: failed.ID, Err: cause}
}

// ListTransactionsForCard returns the history of one of the user's cards.
func (s *TransactionService) ListTransactionsForCard(ctx context.Context, userID, cardID int64) ([]*model.Transaction, error) {
	if _, err := s.cardRepo.GetCardByIDAndUser(ctx, cardID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithFields(logrus.Fields{
				"requesting_user_id": userID,
				"target_card_id":     cardID,
			}).Warn("Transaction history requested for a card the user does not own")
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("could not load card %d: %w", cardID, err)
	}
	return s.transactionRepo.GetTransactionsByCardID(ctx, cardID)
}

// ListTransactionsForUser returns every transfer touching any of the user's cards.
func (s *TransactionService) ListTransactionsForUser(ctx context.Context, userID int64) ([]*model.Transaction, error) {
	return s.transactionRepo.GetTransactionsByUserID(ctx, userID)
}
