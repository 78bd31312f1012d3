// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"card-bank-api/model"
	"card-bank-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestAuthService_HashAndCheckPassword ensures that password hashing and verification methods work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	// Hashing needs no repositories.
	authService := NewAuthService(nil, nil)
	password := "mySecretPassword123"

	hashedPassword, err := authService.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hashedPassword)

	assert.True(t, authService.CheckPasswordHash(password, hashedPassword))
	assert.False(t, authService.CheckPasswordHash("notMyPassword", hashedPassword))
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	req := model.RegisterRequest{
		Email:     "Ada@Example.com",
		Password:  "secret123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+441234567890",
	}

	t.Run("duplicate email", func(t *testing.T) {
		userRepo, tokenRepo := new(mockUserRepo), new(mockTokenRepo)
		userRepo.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(true, nil).Once()

		_, err := NewAuthService(userRepo, tokenRepo).Register(ctx, req)

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("email registered concurrently", func(t *testing.T) {
		userRepo, tokenRepo := new(mockUserRepo), new(mockTokenRepo)
		userRepo.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(false, nil).Once()
		userRepo.On("CreateUser", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail).Once()

		_, err := NewAuthService(userRepo, tokenRepo).Register(ctx, req)

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		userRepo, tokenRepo := new(mockUserRepo), new(mockTokenRepo)
		userRepo.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(false, nil).Once()
		userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Role == model.RoleUser && u.PasswordHash != req.Password && u.Email == "ada@example.com"
		})).Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 5 }).Return(nil).Once()
		tokenRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.UserID == 5 && len(rt.TokenHash) == 64
		})).Return(nil).Once()

		pair, err := NewAuthService(userRepo, tokenRepo).Register(ctx, req)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		stored := tokenRepo.Calls[0].Arguments.Get(1).(*model.RefreshToken)
		assert.Equal(t, hashToken(pair.RefreshToken), stored.TokenHash)

		claims, err := ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(5), claims.UserID)
		assert.Equal(t, model.RoleUser, claims.Role)
		userRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(nil, nil)
	hash, err := svc.HashPassword("correct-horse")
	require.NoError(t, err)
	user := &model.User{ID: 3, Email: "bob@example.com", PasswordHash: hash, Role: model.RoleAdmin}

	t.Run("unknown email", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		userRepo.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, sql.ErrNoRows).Once()

		_, err := NewAuthService(userRepo, new(mockTokenRepo)).Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "x"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		userRepo.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(user, nil).Once()

		_, err := NewAuthService(userRepo, new(mockTokenRepo)).Login(ctx, model.LoginRequest{Email: "bob@example.com", Password: "wrong"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		userRepo, tokenRepo := new(mockUserRepo), new(mockTokenRepo)
		userRepo.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(user, nil).Once()
		tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil).Once()

		pair, err := NewAuthService(userRepo, tokenRepo).Login(ctx, model.LoginRequest{Email: "bob@example.com", Password: "correct-horse"})

		require.NoError(t, err)
		claims, err := ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
		assert.NotEmpty(t, claims.ID)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	const token = "9b2f3c1e-7d4a-4c39-9f0e-2a6d1b8c5e47"

	newSvc := func() (*AuthService, *mockUserRepo, *mockTokenRepo) {
		userRepo, tokenRepo := new(mockUserRepo), new(mockTokenRepo)
		svc := NewAuthService(userRepo, tokenRepo)
		svc.now = func() time.Time { return now }
		return svc, userRepo, tokenRepo
	}

	t.Run("unknown token", func(t *testing.T) {
		svc, _, tokenRepo := newSvc()
		tokenRepo.On("GetByTokenHash", mock.Anything, hashToken(token)).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.Refresh(ctx, token)

		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	})

	t.Run("expired token is deleted", func(t *testing.T) {
		svc, _, tokenRepo := newSvc()
		stored := &model.RefreshToken{ID: 8, UserID: 3, ExpiresAt: now.Add(-time.Minute)}
		tokenRepo.On("GetByTokenHash", mock.Anything, hashToken(token)).Return(stored, nil).Once()
		tokenRepo.On("DeleteByID", mock.Anything, int64(8)).Return(nil).Once()

		_, err := svc.Refresh(ctx, token)

		assert.ErrorIs(t, err, ErrRefreshTokenExpired)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("valid token keeps the refresh token", func(t *testing.T) {
		svc, userRepo, tokenRepo := newSvc()
		stored := &model.RefreshToken{ID: 8, UserID: 3, ExpiresAt: now.Add(time.Hour)}
		tokenRepo.On("GetByTokenHash", mock.Anything, hashToken(token)).Return(stored, nil).Once()
		userRepo.On("GetUserByID", mock.Anything, int64(3)).Return(&model.User{ID: 3, Role: model.RoleUser}, nil).Once()

		pair, err := svc.Refresh(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, token, pair.RefreshToken)
		assert.NotEmpty(t, pair.AccessToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	tokenRepo.On("DeleteByUserID", mock.Anything, int64(3)).Return(nil).Once()

	err := NewAuthService(new(mockUserRepo), tokenRepo).Logout(context.Background(), 3)

	assert.NoError(t, err)
	tokenRepo.AssertExpectations(t)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := ParseAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signed with another key", func(t *testing.T) {
		claims := &model.AppClaims{UserID: 1, Role: model.RoleAdmin}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
		require.NoError(t, err)

		_, err = ParseAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		claims := &model.AppClaims{UserID: 1, Role: model.RoleAdmin}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("service-test-secret"))
		require.NoError(t, err)

		_, err = ParseAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		svc := NewAuthService(nil, nil)
		svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
		signed, err := svc.GenerateAccessToken(&model.User{ID: 1, Role: model.RoleUser})
		require.NoError(t, err)

		_, err = ParseAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
