package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/repository"
)

// UserService handles admin user management.
type UserService struct {
	userRepo repository.IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of req. Changing the email to one
// that is already taken fails with ErrUserAlreadyExists.
func (s *UserService) UpdateUser(ctx context.Context, userID int64, req model.UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("could not check email: %w", err)
			}
			if exists {
				return nil, ErrUserAlreadyExists
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("could not update user: %w", err)
	}
	logger.Log.WithField("user_id", userID).Info("User updated")
	return user, nil
}

// DeleteUser removes the user; their cards and refresh tokens cascade.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("could not delete user: %w", err)
	}
	logger.Log.WithField("user_id", userID).Info("User deleted")
	return nil
}
