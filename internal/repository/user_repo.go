package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"grape-monitor/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrDuplicateEmail is returned when an email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

const userColumns = `id, name, email, password_hash, phone, location, receive_email_notifications, created_at`

// UserRepository stores accounts
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// CreateUser inserts u and sets its ID and creation time
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = time.Now().UTC()

	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, phone, location, receive_email_notifications, created_at)
		VALUES (:name, :email, :password_hash, :phone, :location, :receive_email_notifications, :created_at)`, u)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail matches case-insensitively
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateSettings overwrites the profile fields of a user
func (r *UserRepository) UpdateSettings(ctx context.Context, id int64, s *models.SettingsRequest) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, email = ?, phone = ?, location = ?, receive_email_notifications = ?
		WHERE id = ?`,
		s.Name, strings.ToLower(strings.TrimSpace(s.Email)), s.Phone, s.Location, s.ReceiveEmailNotifications, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
