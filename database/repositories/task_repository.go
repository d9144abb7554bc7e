package repositories

import (
	"context"
	"fmt"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/uptrace/bun"
)

type TaskRepository interface {
	GetAllByUserID(ctx context.Context, userID string) ([]*models.Task, error)
}

type taskRepository struct {
	db *bun.DB
}

func NewTaskRepository(db *bun.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.NewSelect().
		Model(&tasks).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	return tasks, nil
}
