package repositories

import (
	"context"
	"errors"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user directory operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUserID(ctx context.Context, userID string) (*models.User, error)
	IsUserIDTaken(ctx context.Context, userID string) (bool, error)
	UpdatePassword(ctx context.Context, userID, hashedPassword string) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a new account; a taken user id is reported as a duplicate
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return withRetry(func() error {
		err := r.db.WithContext(ctx).Create(user).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateUserID
		}
		return err
	})
}

// GetUserByUserID retrieves an account by its public user id
func (r *PostgresUserRepository) GetUserByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsUserIDTaken reports whether an account already uses the given user id
func (r *PostgresUserRepository) IsUserIDTaken(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Where("user_id = ?", userID).Count(&count).Error
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdatePassword replaces the stored password hash for a user
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	return withRetry(func() error {
		res := r.db.WithContext(ctx).Model(&models.User{}).
			Where("user_id = ?", userID).
			Update("password", hashedPassword)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		return nil
	})
}

// UpdateUser persists profile changes to an existing account
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return withRetry(func() error {
		return r.db.WithContext(ctx).Save(user).Error
	})
}
