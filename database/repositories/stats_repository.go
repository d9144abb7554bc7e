package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/uptrace/bun"
)

type StatsRepository interface {
	GetByDay(ctx context.Context, userID, day string) (*models.DailyStat, error)
	UpsertDay(ctx context.Context, stat *models.DailyStat) (*models.DailyStat, error)
	GetAllByUserID(ctx context.Context, userID string) ([]*models.DailyStat, error)
}

type statsRepository struct {
	db *bun.DB
}

func NewStatsRepository(db *bun.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetByDay(ctx context.Context, userID, day string) (*models.DailyStat, error) {
	stat := new(models.DailyStat)
	err := r.db.NewSelect().
		Model(stat).
		Where("user_id = ? AND day = ?", userID, day).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily stat: %w", err)
	}
	return stat, nil
}

// UpsertDay adds the increments in stat to the (user_id, day) row,
// creating it if missing. The arithmetic happens inside the ON
// CONFLICT clause so concurrent calls for the same day never lose an
// update; streak is overwritten, not summed. Returns the resulting row.
func (r *statsRepository) UpsertDay(ctx context.Context, stat *models.DailyStat) (*models.DailyStat, error) {
	stat.CreatedAt = time.Now()
	stat.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(stat).
		On("CONFLICT (user_id, day) DO UPDATE").
		Set("minutes_focused = ds.minutes_focused + EXCLUDED.minutes_focused").
		Set("tasks_done = ds.tasks_done + EXCLUDED.tasks_done").
		Set("streak = EXCLUDED.streak").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return stat, nil
}

// GetAllByUserID returns the user's stat rows, most recent day first.
func (r *statsRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.DailyStat, error) {
	var stats []*models.DailyStat
	err := r.db.NewSelect().
		Model(&stats).
		Where("user_id = ?", userID).
		Order("day DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return stats, nil
}
