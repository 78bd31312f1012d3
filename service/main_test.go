package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"card-bank-api/config"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	config.AppConfig.JWT.SecretKey = "service-test-secret"
	os.Exit(m.Run())
}

// mockCardRepo is a mock for repository.ICardRepository.
type mockCardRepo struct{ mock.Mock }

func (m *mockCardRepo) CreateCard(ctx context.Context, card *model.Card) error {
	return m.Called(ctx, card).Error(0)
}
func (m *mockCardRepo) GetCardByID(ctx context.Context, cardID int64) (*model.Card, error) {
	args := m.Called(ctx, cardID)
	return cardOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) GetCardByIDAndUser(ctx context.Context, cardID, userID int64) (*model.Card, error) {
	args := m.Called(ctx, cardID, userID)
	return cardOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) GetCardForUpdate(ctx context.Context, q repository.DBTX, cardID, userID int64) (*model.Card, error) {
	args := m.Called(ctx, q, cardID, userID)
	return cardOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) GetCardsByUserID(ctx context.Context, userID int64) ([]*model.Card, error) {
	args := m.Called(ctx, userID)
	return cardsOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) GetCardsByUserAndStatus(ctx context.Context, userID int64, status model.CardStatus) ([]*model.Card, error) {
	args := m.Called(ctx, userID, status)
	return cardsOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) SearchCardsByUser(ctx context.Context, userID int64, term string) ([]*model.Card, error) {
	args := m.Called(ctx, userID, term)
	return cardsOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) GetAllCards(ctx context.Context) ([]*model.Card, error) {
	args := m.Called(ctx)
	return cardsOrNil(args.Get(0)), args.Error(1)
}
func (m *mockCardRepo) UpdateCardStatus(ctx context.Context, cardID int64, status model.CardStatus) error {
	return m.Called(ctx, cardID, status).Error(0)
}
func (m *mockCardRepo) ActivateCard(ctx context.Context, cardID int64, expiry time.Time) error {
	return m.Called(ctx, cardID, expiry).Error(0)
}
func (m *mockCardRepo) UpdateCardBalance(ctx context.Context, q repository.DBTX, cardID int64, balance decimal.Decimal) error {
	return m.Called(ctx, q, cardID, balance).Error(0)
}
func (m *mockCardRepo) DeleteCard(ctx context.Context, cardID int64) error {
	return m.Called(ctx, cardID).Error(0)
}
func (m *mockCardRepo) ExpireCards(ctx context.Context, asOf time.Time) ([]int64, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func cardOrNil(v interface{}) *model.Card {
	if v == nil {
		return nil
	}
	return v.(*model.Card)
}

func cardsOrNil(v interface{}) []*model.Card {
	if v == nil {
		return nil
	}
	return v.([]*model.Card)
}

// mockTransactionRepo is a mock for repository.ITransactionRepository.
type mockTransactionRepo struct{ mock.Mock }

func (m *mockTransactionRepo) CreateTransaction(ctx context.Context, q repository.DBTX, t *model.Transaction) error {
	return m.Called(ctx, q, t).Error(0)
}
func (m *mockTransactionRepo) GetTransactionsByCardID(ctx context.Context, cardID int64) ([]*model.Transaction, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}
func (m *mockTransactionRepo) GetTransactionsByUserID(ctx context.Context, userID int64) ([]*model.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

// mockUserRepo is a mock for repository.IUserRepository.
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) DeleteUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// mockTokenRepo is a mock for repository.ITokenRepository.
type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockTokenRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// mockCache is a mock for ICacheClient.
type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string) *redis.StringCmd {
	return m.Called(ctx, key).Get(0).(*redis.StringCmd)
}
func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return m.Called(ctx, key, value, expiration).Get(0).(*redis.StatusCmd)
}
func (m *mockCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return m.Called(ctx, keys).Get(0).(*redis.IntCmd)
}

// decEq matches a decimal argument by value rather than representation.
func decEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func onTx() interface{} {
	return mock.MatchedBy(func(q repository.DBTX) bool {
		_, ok := q.(*sql.Tx)
		return ok
	})
}

func onDB() interface{} {
	return mock.MatchedBy(func(q repository.DBTX) bool {
		_, ok := q.(*sql.DB)
		return ok
	})
}

func withStatus(status model.TransactionStatus) interface{} {
	return mock.MatchedBy(func(t *model.Transaction) bool { return t.Status == status })
}
