package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserProfile is the authoritative XP/level counter for a user.
// XPTotal is the remainder after all completed level roll-overs, so
// XPTotal < 100*Level always holds after a normalized update.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`

	ID      int64  `bun:"id,pk,autoincrement"`
	UserID  string `bun:"user_id,notnull,unique"`
	XPTotal int    `bun:"xp_total,notnull,default:0"`
	Level   int    `bun:"level,notnull,default:1"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// XPPerLevel is the linear growth factor: level n needs 100*n XP to clear.
const XPPerLevel = 100

// AddXP adds delta XP to the profile. When normalize is set the level
// roll-over loop runs: while the total reaches the current level's
// threshold, the threshold is subtracted and the level increments.
// Badge grants call this with normalize=false (see the achievement
// evaluator), which leaves the level untouched.
func (p *UserProfile) AddXP(delta int, normalize bool) {
	p.XPTotal += delta
	if !normalize {
		return
	}
	if p.Level < 1 {
		p.Level = 1
	}
	for p.XPTotal >= XPPerLevel*p.Level {
		p.XPTotal -= XPPerLevel * p.Level
		p.Level++
	}
}
