package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xiniluca/skillswap/internal/models"
)

// UserRepository persists marketplace users keyed by Telegram id.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create registers a user, updating name/username/role on re-registration.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, name, username string, role models.Role) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (telegram_id, name, username, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET name = $2, username = $3, role = $4
		RETURNING id
	`, telegramID, name, username, role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("users: create: %w", err)
	}
	return id, nil
}

// GetByID returns the user with the given internal id.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: get by id: %w", err)
	}
	return &u, nil
}

// GetByTelegramID returns the user registered under the given Telegram id.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: get: %w", err)
	}
	return &u, nil
}
