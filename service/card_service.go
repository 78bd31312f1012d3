package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"card-bank-api/config"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/repository"
	"card-bank-api/security"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultValidityYears = 3

// CardNumberEncrypter seals a plain card number for storage.
type CardNumberEncrypter interface {
	Encrypt(plain string) (string, error)
}

// CardService owns card lookup, issuance and status changes.
type CardService struct {
	cardRepo      repository.ICardRepository
	userRepo      repository.IUserRepository
	cipher        CardNumberEncrypter
	cache         ICacheClient
	cacheTTL      time.Duration
	validityYears int
	now           func() time.Time
}

// NewCardService creates a CardService. cache may be nil, in which case card
// lists are always read from the database.
func NewCardService(cardRepo repository.ICardRepository, userRepo repository.IUserRepository, cipher CardNumberEncrypter, cache ICacheClient) *CardService {
	ttl := config.AppConfig.Redis.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	years := config.AppConfig.Card.ValidityYears
	if years <= 0 {
		years = defaultValidityYears
	}
	return &CardService{
		cardRepo:      cardRepo,
		userRepo:      userRepo,
		cipher:        cipher,
		cache:         cache,
		cacheTTL:      ttl,
		validityYears: years,
		now:           time.Now,
	}
}

// FindCardByIDAndUser resolves a card under its owner. A card that exists but
// belongs to someone else is reported exactly like a missing one.
func (s *CardService) FindCardByIDAndUser(ctx context.Context, cardID, userID int64) (*model.Card, error) {
	card, err := s.cardRepo.GetCardByIDAndUser(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("could not load card %d: %w", cardID, err)
	}
	return card, nil
}

// ListCardsForUser returns the user's cards, served from the cache when possible.
func (s *CardService) ListCardsForUser(ctx context.Context, userID int64) ([]*model.Card, error) {
	log := logger.Log.WithField("user_id", userID)
	key := cardsCacheKey(userID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		switch {
		case err == nil:
			var cards []*model.Card
			if jsonErr := json.Unmarshal([]byte(cached), &cards); jsonErr == nil {
				log.Debug("Card list served from cache")
				return cards, nil
			}
			log.Warn("Discarding undecodable card cache entry")
		case errors.Is(err, redis.Nil):
		default:
			log.WithError(err).Warn("Card cache read failed, falling back to database")
		}
	}

	cards, err := s.cardRepo.GetCardsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list cards: %w", err)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(cards); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				log.WithError(err).Warn("Failed to cache card list")
			}
		}
	}
	return cards, nil
}

func (s *CardService) ListCardsByStatus(ctx context.Context, userID int64, status model.CardStatus) ([]*model.Card, error) {
	if !status.Valid() {
		return nil, ErrInvalidCardStatus
	}
	cards, err := s.cardRepo.GetCardsByUserAndStatus(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("could not list cards by status: %w", err)
	}
	return cards, nil
}

// SearchCards matches term against the masked card number.
func (s *CardService) SearchCards(ctx context.Context, userID int64, term string) ([]*model.Card, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListCardsForUser(ctx, userID)
	}
	cards, err := s.cardRepo.SearchCardsByUser(ctx, userID, term)
	if err != nil {
		return nil, fmt.Errorf("could not search cards: %w", err)
	}
	return cards, nil
}

func (s *CardService) GetBalance(ctx context.Context, cardID, userID int64) (*model.BalanceResponse, error) {
	card, err := s.FindCardByIDAndUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	return &model.BalanceResponse{
		CardID:       card.ID,
		MaskedNumber: card.MaskedNumber,
		Balance:      card.Balance,
	}, nil
}

// BlockCard lets an owner block one of their own cards.
func (s *CardService) BlockCard(ctx context.Context, cardID, userID int64) (*model.Card, error) {
	card, err := s.FindCardByIDAndUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	return s.block(ctx, card)
}

// AdminBlockCard blocks any card regardless of owner.
func (s *CardService) AdminBlockCard(ctx context.Context, cardID int64) (*model.Card, error) {
	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return s.block(ctx, card)
}

func (s *CardService) block(ctx context.Context, card *model.Card) (*model.Card, error) {
	if err := card.Block(); err != nil {
		return nil, err
	}
	if err := s.cardRepo.UpdateCardStatus(ctx, card.ID, card.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("could not block card: %w", err)
	}
	invalidateCards(ctx, s.cache, card.UserID)
	logger.Log.WithFields(logrus.Fields{"card_id": card.ID, "user_id": card.UserID}).Info("Card blocked")
	return card, nil
}

// ActivateCard sets any card back to ACTIVE. A card whose expiry date has
// passed gets a fresh validity period, otherwise the next expiry sweep would
// undo the activation.
func (s *CardService) ActivateCard(ctx context.Context, cardID int64) (*model.Card, error) {
	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	card.Activate()
	now := s.now()
	if card.ExpiryDate.Before(now.UTC().Truncate(24 * time.Hour)) {
		card.ExpiryDate = s.expiryFrom(now)
	}
	if err := s.cardRepo.ActivateCard(ctx, card.ID, card.ExpiryDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("could not activate card: %w", err)
	}
	invalidateCards(ctx, s.cache, card.UserID)
	logger.Log.WithFields(logrus.Fields{"card_id": card.ID, "user_id": card.UserID}).Info("Card activated")
	return card, nil
}

// CreateCard issues a new card with a random number to an existing user.
func (s *CardService) CreateCard(ctx context.Context, req model.CreateCardRequest) (*model.Card, error) {
	log := logger.Log.WithField("user_id", req.UserID)

	if _, err := s.userRepo.GetUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	number, err := security.GenerateCardNumber()
	if err != nil {
		return nil, fmt.Errorf("could not generate card number: %w", err)
	}
	encrypted, err := s.cipher.Encrypt(number)
	if err != nil {
		return nil, fmt.Errorf("could not encrypt card number: %w", err)
	}

	card := &model.Card{
		UserID:          req.UserID,
		EncryptedNumber: encrypted,
		MaskedNumber:    security.MaskCardNumber(number),
		ExpiryDate:      s.expiryFrom(s.now()),
	}
	if err := s.cardRepo.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("could not create card: %w", err)
	}

	invalidateCards(ctx, s.cache, card.UserID)
	log.WithField("card_id", card.ID).Info("Card issued")
	return card, nil
}

func (s *CardService) GetAllCards(ctx context.Context) ([]*model.Card, error) {
	cards, err := s.cardRepo.GetAllCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list cards: %w", err)
	}
	return cards, nil
}

func (s *CardService) DeleteCard(ctx context.Context, cardID int64) error {
	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return err
	}
	if err := s.cardRepo.DeleteCard(ctx, cardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCardNotFound
		}
		return fmt.Errorf("could not delete card: %w", err)
	}
	invalidateCards(ctx, s.cache, card.UserID)
	logger.Log.WithFields(logrus.Fields{"card_id": cardID, "user_id": card.UserID}).Info("Card deleted")
	return nil
}

// ExpireCards moves every ACTIVE card past its expiry date to EXPIRED and
// returns how many cards changed.
func (s *CardService) ExpireCards(ctx context.Context, asOf time.Time) (int, error) {
	owners, err := s.cardRepo.ExpireCards(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("could not expire cards: %w", err)
	}
	invalidateCards(ctx, s.cache, uniqueIDs(owners)...)
	return len(owners), nil
}

func (s *CardService) expiryFrom(t time.Time) time.Time {
	return t.UTC().AddDate(s.validityYears, 0, 0).Truncate(24 * time.Hour)
}

func (s *CardService) getCard(ctx context.Context, cardID int64) (*model.Card, error) {
	card, err := s.cardRepo.GetCardByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("could not load card %d: %w", cardID, err)
	}
	return card, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
