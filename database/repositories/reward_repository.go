package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/uptrace/bun"
)

type RewardRepository interface {
	Insert(ctx context.Context, reward *models.Reward) error
	GetAllByUserID(ctx context.Context, userID string, limit int) ([]*models.Reward, error)
	Totals(ctx context.Context, userID string) (earned int64, spent int64, err error)
}

type rewardRepository struct {
	db *bun.DB
}

func NewRewardRepository(db *bun.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Insert(ctx context.Context, reward *models.Reward) error {
	reward.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(reward).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (r *rewardRepository) GetAllByUserID(ctx context.Context, userID string, limit int) ([]*models.Reward, error) {
	var rewards []*models.Reward
	q := r.db.NewSelect().
		Model(&rewards).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return rewards, nil
}

// Totals sums the ledger by entry type so the running balance can be
// re-derived independently of the profile counters.
func (r *rewardRepository) Totals(ctx context.Context, userID string) (int64, int64, error) {
	var totals struct {
		Earned int64 `bun:"earned"`
		Spent  int64 `bun:"spent"`
	}

	err := r.db.NewSelect().
		Model((*models.Reward)(nil)).
		ColumnExpr("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS earned", models.RewardTypeEarn).
		ColumnExpr("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS spent", models.RewardTypeSpend).
		Where("user_id = ?", userID).
		Scan(ctx, &totals)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return totals.Earned, totals.Spent, nil
}
