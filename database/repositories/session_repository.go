package repositories

import (
	"context"
	"fmt"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/uptrace/bun"
)

type SessionRepository interface {
	GetAllByUserID(ctx context.Context, userID string) ([]*models.FocusSession, error)
	CountCompleted(ctx context.Context, userID string) (int, error)
}

type sessionRepository struct {
	db *bun.DB
}

func NewSessionRepository(db *bun.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.FocusSession, error) {
	var sessions []*models.FocusSession
	err := r.db.NewSelect().
		Model(&sessions).
		Where("user_id = ?", userID).
		Order("started_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get focus sessions: %w", err)
	}
	return sessions, nil
}

// CountCompleted counts the user's non-abandoned focus sessions.
func (r *sessionRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.FocusSession)(nil)).
		Where("user_id = ? AND abandoned = false", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count focus sessions: %w", err)
	}
	return count, nil
}
