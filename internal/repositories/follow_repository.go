package repositories

import (
	"context"

	"github.com/picstream/backend/internal/models"
	"gorm.io/gorm"
)

// PostgresFollowRepository implements FollowRepository for PostgreSQL.
// One row per edge keeps follower/following symmetric by construction.
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) Follow(ctx context.Context, followerID, targetID string) error {
	exists, err := r.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}
	follow := &models.Follow{FollowerID: followerID, FollowingID: targetID}
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *PostgresFollowRepository) Unfollow(ctx context.Context, followerID, targetID string) error {
	// Deleting an absent edge affects zero rows, which is the documented
	// silent-success behavior.
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("created_at ASC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC").
		Pluck("following_id", &ids).Error
	return ids, err
}
