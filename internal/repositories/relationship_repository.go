package repositories

import (
	"context"
	"errors"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/models"
	"gorm.io/gorm"
)

// RelationshipRepository defines the storage contract for relationship
// records. Every operation is atomic for its unordered pair: of two
// concurrent conflicting calls, exactly one applies and the other observes
// the first one's post-condition.
type RelationshipRepository interface {
	CreatePending(ctx context.Context, requesterID, targetID string) error
	PromotePending(ctx context.Context, requesterID, targetID string) error
	DeletePending(ctx context.Context, requesterID, targetID string) error
	DeleteAccepted(ctx context.Context, userA, userB string) error
	GetByPair(ctx context.Context, userA, userB string) (*models.Relationship, error)
}

// PostgresRelationshipRepository implements RelationshipRepository on GORM.
// Atomicity comes from the unique pair index (inserts) and from conditional
// single-statement writes checked via RowsAffected (updates and deletes), so
// no lock is held across a read-check-write sequence.
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

// NewPostgresRelationshipRepository creates a new PostgresRelationshipRepository
func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// withRetry runs op, retrying once when the failure looks transient.
// Business outcomes and cancellations are returned as-is; a second failure
// surfaces to the caller and becomes a 5xx, never a not-found.
func withRetry(op func() error) error {
	err := op()
	if err == nil || isFinal(err) {
		return err
	}
	return op()
}

func isFinal(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, apperrors.ErrDuplicateRequest) ||
		errors.Is(err, apperrors.ErrRelationshipNotFound) ||
		errors.Is(err, apperrors.ErrDuplicateUserID) ||
		errors.Is(err, apperrors.ErrUserNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// CreatePending inserts a new pending relationship. A concurrent or earlier
// record for the same pair, in any status and either direction, trips the
// unique pair index and is reported as a duplicate request.
func (r *PostgresRelationshipRepository) CreatePending(ctx context.Context, requesterID, targetID string) error {
	low, high := models.NormalizePair(requesterID, targetID)
	return withRetry(func() error {
		rel := models.Relationship{
			RequesterID: requesterID,
			TargetID:    targetID,
			PairLow:     low,
			PairHigh:    high,
			Status:      models.RelationshipPending,
		}
		err := r.db.WithContext(ctx).Create(&rel).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateRequest
		}
		return err
	})
}

// PromotePending flips a pending request to accepted. The WHERE clause pins
// the direction and status, so a request that was cancelled, already
// accepted, or sent the other way reports not-found.
func (r *PostgresRelationshipRepository) PromotePending(ctx context.Context, requesterID, targetID string) error {
	return withRetry(func() error {
		res := r.db.WithContext(ctx).Model(&models.Relationship{}).
			Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, models.RelationshipPending).
			Update("status", models.RelationshipAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrRelationshipNotFound
		}
		return nil
	})
}

// DeletePending removes a pending request sent by requesterID to targetID.
func (r *PostgresRelationshipRepository) DeletePending(ctx context.Context, requesterID, targetID string) error {
	return withRetry(func() error {
		res := r.db.WithContext(ctx).
			Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, models.RelationshipPending).
			Delete(&models.Relationship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrRelationshipNotFound
		}
		return nil
	})
}

// DeleteAccepted removes an accepted relationship regardless of which side
// originally sent the request.
func (r *PostgresRelationshipRepository) DeleteAccepted(ctx context.Context, userA, userB string) error {
	low, high := models.NormalizePair(userA, userB)
	return withRetry(func() error {
		res := r.db.WithContext(ctx).
			Where("pair_low = ? AND pair_high = ? AND status = ?", low, high, models.RelationshipAccepted).
			Delete(&models.Relationship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrRelationshipNotFound
		}
		return nil
	})
}

// GetByPair retrieves the relationship record for an unordered pair.
func (r *PostgresRelationshipRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Relationship, error) {
	low, high := models.NormalizePair(userA, userB)
	var rel models.Relationship
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("pair_low = ? AND pair_high = ?", low, high).
			First(&rel).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}
