package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"card-bank-api/config"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 24 * time.Hour
)

func getJwtKey() ([]byte, error) {
	key := config.AppConfig.JWT.SecretKey
	if key == "" {
		return nil, ErrJWTSecretMissing
	}
	return []byte(key), nil
}

// AuthService handles registration, login and the refresh token lifecycle.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	now       func() time.Time
}

func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository) *AuthService {
	return &AuthService{userRepo: userRepo, tokenRepo: tokenRepo, now: time.Now}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a USER account and signs it in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	log := logger.Log.WithField("email", email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("could not check email: %w", err)
	}
	if exists {
		log.Warn("Registration rejected: email already in use")
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			log.Warn("Registration rejected: email registered concurrently")
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return s.issueTokenPair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	if !s.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Log.WithField("user_id", user.ID).Warn("Login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return s.issueTokenPair(ctx, user)
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself is returned unchanged; an expired one is deleted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	stored, err := s.tokenRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("could not load refresh token: %w", err)
	}

	if stored.IsExpired(s.now()) {
		if err := s.tokenRepo.DeleteByID(ctx, stored.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithError(err).WithField("token_id", stored.ID).Warn("Failed to delete expired refresh token")
		}
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	access, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Logout revokes every refresh token of the user.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("could not revoke refresh tokens: %w", err)
	}
	logger.Log.WithField("user_id", userID).Info("User logged out")
	return nil
}

// GenerateAccessToken signs an HS256 access token carrying the user's id and role.
func (s *AuthService) GenerateAccessToken(user *model.User) (string, error) {
	key, err := getJwtKey()
	if err != nil {
		return "", err
	}

	ttl := config.AppConfig.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	now := s.now()

	claims := &model.AppClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

// ParseAccessToken validates an access token and returns its claims.
func ParseAccessToken(tokenString string) (*model.AppClaims, error) {
	key, err := getJwtKey()
	if err != nil {
		return nil, err
	}

	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	access, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	ttl := config.AppConfig.JWT.RefreshTokenTTL
	if ttl <= 0 {
		ttl = defaultRefreshTokenTTL
	}
	refresh := uuid.NewString()
	stored := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.tokenRepo.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// hashToken is the lookup key stored for a refresh token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
