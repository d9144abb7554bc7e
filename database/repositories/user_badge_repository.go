package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/uptrace/bun"
)

type UserBadgeRepository interface {
	GetEarnedIDs(ctx context.Context, userID string) (map[int64]bool, error)
	GetAllByUserID(ctx context.Context, userID string) ([]*models.UserBadge, error)
	Insert(ctx context.Context, ub *models.UserBadge) (bool, error)
}

type userBadgeRepository struct {
	db *bun.DB
}

func NewUserBadgeRepository(db *bun.DB) UserBadgeRepository {
	return &userBadgeRepository{db: db}
}

func (r *userBadgeRepository) GetEarnedIDs(ctx context.Context, userID string) (map[int64]bool, error) {
	var badgeIDs []int64
	err := r.db.NewSelect().
		Model((*models.UserBadge)(nil)).
		Column("badge_id").
		Where("user_id = ?", userID).
		Scan(ctx, &badgeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get earned badges: %w", err)
	}

	earned := make(map[int64]bool, len(badgeIDs))
	for _, id := range badgeIDs {
		earned[id] = true
	}
	return earned, nil
}

func (r *userBadgeRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	var userBadges []*models.UserBadge
	err := r.db.NewSelect().
		Model(&userBadges).
		Relation("Badge").
		Where("ub.user_id = ?", userID).
		Order("ub.earned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}
	return userBadges, nil
}

// Insert records an unlock. A concurrent duplicate hits the
// (user_id, badge_id) uniqueness constraint and becomes a no-op; the
// returned bool reports whether this call actually created the row, so
// callers only grant XP once.
func (r *userBadgeRepository) Insert(ctx context.Context, ub *models.UserBadge) (bool, error) {
	if ub.EarnedAt.IsZero() {
		ub.EarnedAt = time.Now()
	}

	res, err := r.db.NewInsert().
		Model(ub).
		On("CONFLICT (user_id, badge_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert user badge: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}
