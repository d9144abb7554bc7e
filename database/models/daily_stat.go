package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyStat holds one user's aggregate counters for one calendar day.
// There is exactly one row per (user_id, day); the scoring service
// increments it with a single atomic upsert.
type DailyStat struct {
	bun.BaseModel `bun:"table:daily_stats,alias:ds"`

	ID             int64  `bun:"id,pk,autoincrement"`
	UserID         string `bun:"user_id,notnull,unique:daily_stats_user_day_key"`
	Day            string `bun:"day,notnull,unique:daily_stats_user_day_key"`
	MinutesFocused int    `bun:"minutes_focused,notnull,default:0"`
	TasksDone      int    `bun:"tasks_done,notnull,default:0"`
	Streak         int    `bun:"streak,notnull,default:1"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// DayOf formats a timestamp as the calendar-day key used by daily_stats.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}
