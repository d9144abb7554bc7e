package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Badge is a catalog entry. The unlock condition is a closed tagged
// rule stored as JSONB: adding a rule kind means adding a constant
// here plus one case in the evaluator's switch.
type Badge struct {
	bun.BaseModel `bun:"table:badges,alias:b"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Slug        string    `bun:"slug,notnull,unique"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,notnull"`
	XPReward    int       `bun:"xp_reward,notnull,default:0"`
	Rule        BadgeRule `bun:"rule,type:jsonb"`
	IconPath    string    `bun:"icon_path"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// FirstFocusSlug is the badge unlocked inline by the scoring service
// when a user's first non-abandoned focus session lands.
const FirstFocusSlug = "first-focus"

type RuleKind string

const (
	RuleTasksCompleted   RuleKind = "tasks_completed"
	RuleTasksPerDay      RuleKind = "tasks_per_day"
	RuleStreakDays       RuleKind = "streak_days"
	RuleFocusCompleted   RuleKind = "focus_completed"
	RuleFocusPerDay      RuleKind = "focus_per_day"
	RuleLevel            RuleKind = "level"
	RuleWeeklyMinutes    RuleKind = "weekly_minutes"
	RulePerfectDays      RuleKind = "perfect_days"
	RuleNoAbandonDays    RuleKind = "no_abandon_days"
	RuleEarlyCompletions RuleKind = "early_completions"
)

// BadgeRule is the tagged unlock predicate. Every kind compares an
// aggregate against Count.
type BadgeRule struct {
	Kind  RuleKind `json:"type"`
	Count int      `json:"count"`
}

// Validate rejects unknown rule kinds and non-positive thresholds so a
// malformed catalog row fails loudly instead of silently never firing.
func (r BadgeRule) Validate() error {
	switch r.Kind {
	case RuleTasksCompleted, RuleTasksPerDay, RuleStreakDays,
		RuleFocusCompleted, RuleFocusPerDay, RuleLevel,
		RuleWeeklyMinutes, RulePerfectDays, RuleNoAbandonDays,
		RuleEarlyCompletions:
	default:
		return fmt.Errorf("unknown badge rule type: %q", r.Kind)
	}
	if r.Count <= 0 {
		return fmt.Errorf("badge rule %q requires a positive count, got %d", r.Kind, r.Count)
	}
	return nil
}

// UserBadge records one unlock. The (user_id, badge_id) pair is unique
// at the storage layer; that constraint is the sole idempotency
// mechanism for concurrent evaluator calls.
type UserBadge struct {
	bun.BaseModel `bun:"table:user_badges,alias:ub"`

	ID       int64     `bun:"id,pk,autoincrement"`
	UserID   string    `bun:"user_id,notnull,unique:user_badges_user_badge_key"`
	BadgeID  int64     `bun:"badge_id,notnull,unique:user_badges_user_badge_key"`
	EarnedAt time.Time `bun:"earned_at,notnull"`
	Notified bool      `bun:"notified,notnull,default:false"`

	// Relations
	Badge *Badge `bun:"rel:belongs-to,join:badge_id=id"`
}
