package models

import (
	"time"

	"github.com/uptrace/bun"
)

// FocusSession is a single timer run. Terminal once EndedAt is set;
// sessions are never reopened.
type FocusSession struct {
	bun.BaseModel `bun:"table:focus_sessions,alias:fs"`

	ID        int64      `bun:"id,pk,autoincrement"`
	UserID    string     `bun:"user_id,notnull"`
	TaskID    *int64     `bun:"task_id"`
	StartedAt time.Time  `bun:"started_at,notnull"`
	EndedAt   *time.Time `bun:"ended_at"`
	Minutes   int        `bun:"minutes,notnull,default:0"`
	Abandoned bool       `bun:"abandoned,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// StartedOn reports whether the session started on the given calendar day.
func (f *FocusSession) StartedOn(day string) bool {
	return DayOf(f.StartedAt) == day
}
