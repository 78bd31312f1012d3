package repository

import (
	"context"
	"database/sql"
	"errors"

	"card-bank-api/logger"
	"card-bank-api/model"

	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when a write hits the unique email constraint.
var ErrDuplicateEmail = errors.New("email already in use")

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, userID int64) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (email, password_hash, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			logger.Log.WithField("email", user.Email).Warn("Create user hit the unique email constraint")
			return ErrDuplicateEmail
		}
		logger.Log.WithError(err).WithField("email", user.Email).Error("Failed to execute create user query")
	}
	return err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all users")
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes the mutable profile fields of user.
func (r *UserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email = $1, first_name = $2, last_name = $3, phone = $4 WHERE id = $5`,
		user.Email, user.FirstName, user.LastName, user.Phone, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to execute update user query")
		return err
	}
	return requireAffected(res)
}

func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to execute delete user query")
		}
		return err
	}
	return requireAffected(res)
}
