package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64      `bun:"id,pk,autoincrement"`
	UserID      string     `bun:"user_id,notnull"`
	Title       string     `bun:"title,notnull"`
	Difficulty  string     `bun:"difficulty,notnull,default:'easy'"`
	Status      string     `bun:"status,notnull,default:'todo'"`
	CompletedAt *time.Time `bun:"completed_at"`
	DueDate     *time.Time `bun:"due_date"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Task status constants
const (
	TaskStatusTodo     = "todo"
	TaskStatusDone     = "done"
	TaskStatusArchived = "archived"
)

// Task difficulty constants
const (
	DifficultyEasy = "easy"
	DifficultyMed  = "med"
	DifficultyHard = "hard"
)

// IsDone reports whether the task counts as a completed task for
// scoring and badge evaluation.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// CompletedOn reports whether the task was completed on the given
// calendar day.
func (t *Task) CompletedOn(day string) bool {
	return t.IsDone() && t.CompletedAt != nil && DayOf(*t.CompletedAt) == day
}

// CompletedEarly reports whether the task was completed before its due
// date. Both timestamps must be present.
func (t *Task) CompletedEarly() bool {
	return t.IsDone() && t.CompletedAt != nil && t.DueDate != nil && t.CompletedAt.Before(*t.DueDate)
}
