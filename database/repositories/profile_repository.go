package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/uptrace/bun"
)

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error)
	AddXP(ctx context.Context, userID string, delta int, normalize bool) (*models.UserProfile, error)
}

type profileRepository struct {
	db *bun.DB
}

func NewProfileRepository(db *bun.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile := new(models.UserProfile)
	err := r.db.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// ensure inserts the default profile row if it is missing. Safe under
// concurrent callers via the user_id uniqueness constraint.
func (r *profileRepository) ensure(ctx context.Context, userID string) error {
	profile := &models.UserProfile{
		UserID:    userID,
		XPTotal:   0,
		Level:     1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(profile).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// AddXP applies an XP delta under a row lock so two concurrent grants
// never read the same stale total. With normalize set the level
// roll-over loop runs; without it the delta lands raw (badge grants).
func (r *profileRepository) AddXP(ctx context.Context, userID string, delta int, normalize bool) (*models.UserProfile, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}

	profile := new(models.UserProfile)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(profile).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to lock profile: %w", err)
		}

		profile.AddXP(delta, normalize)
		profile.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().
			Model(profile).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Profile XP updated",
		slog.String("type", "db"),
		slog.String("user_id", userID),
		slog.Int("delta", delta),
		slog.Bool("normalize", normalize),
		slog.Int("xp_total", profile.XPTotal),
		slog.Int("level", profile.Level))

	return profile, nil
}
