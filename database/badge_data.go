package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/focoapp/foco-backend/database/models"
)

// InitializeBadgeData upserts the built-in badge catalog. Seeding is
// keyed by slug so redeploys update names/rewards without duplicating
// rows or re-granting anything.
func (db *DB) InitializeBadgeData(ctx context.Context) error {
	badges := []models.Badge{
		{Slug: models.FirstFocusSlug, Name: "First Focus", Description: "Finish your first focus session", XPReward: 10,
			Rule: models.BadgeRule{Kind: models.RuleFocusCompleted, Count: 1}},
		{Slug: "task-starter", Name: "Task Starter", Description: "Complete your first task", XPReward: 10,
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 1}},
		{Slug: "task-grinder", Name: "Task Grinder", Description: "Complete 25 tasks", XPReward: 40,
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 25}},
		{Slug: "task-centurion", Name: "Centurion", Description: "Complete 100 tasks", XPReward: 120,
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 100}},
		{Slug: "busy-bee", Name: "Busy Bee", Description: "Complete 5 tasks in a single day", XPReward: 30,
			Rule: models.BadgeRule{Kind: models.RuleTasksPerDay, Count: 5}},
		{Slug: "streak-3", Name: "Warming Up", Description: "Keep a 3-day streak", XPReward: 20,
			Rule: models.BadgeRule{Kind: models.RuleStreakDays, Count: 3}},
		{Slug: "streak-7", Name: "One Full Week", Description: "Keep a 7-day streak", XPReward: 50,
			Rule: models.BadgeRule{Kind: models.RuleStreakDays, Count: 7}},
		{Slug: "streak-30", Name: "Unstoppable", Description: "Keep a 30-day streak", XPReward: 200,
			Rule: models.BadgeRule{Kind: models.RuleStreakDays, Count: 30}},
		{Slug: "deep-diver", Name: "Deep Diver", Description: "Finish 50 focus sessions", XPReward: 80,
			Rule: models.BadgeRule{Kind: models.RuleFocusCompleted, Count: 50}},
		{Slug: "focus-marathon", Name: "Focus Marathon", Description: "Finish 4 focus sessions in one day", XPReward: 30,
			Rule: models.BadgeRule{Kind: models.RuleFocusPerDay, Count: 4}},
		{Slug: "level-5", Name: "Climber", Description: "Reach level 5", XPReward: 50,
			Rule: models.BadgeRule{Kind: models.RuleLevel, Count: 5}},
		{Slug: "level-10", Name: "High Achiever", Description: "Reach level 10", XPReward: 150,
			Rule: models.BadgeRule{Kind: models.RuleLevel, Count: 10}},
		{Slug: "weekly-300", Name: "Time Well Spent", Description: "Focus for 300 minutes in a week", XPReward: 60,
			Rule: models.BadgeRule{Kind: models.RuleWeeklyMinutes, Count: 300}},
		{Slug: "perfectionist", Name: "Perfectionist", Description: "3 perfect days in a row", XPReward: 70,
			Rule: models.BadgeRule{Kind: models.RulePerfectDays, Count: 3}},
		{Slug: "iron-will", Name: "Iron Will", Description: "7 recent days without abandoning a session", XPReward: 90,
			Rule: models.BadgeRule{Kind: models.RuleNoAbandonDays, Count: 7}},
		{Slug: "early-bird", Name: "Early Bird", Description: "Finish 5 tasks before their due date", XPReward: 40,
			Rule: models.BadgeRule{Kind: models.RuleEarlyCompletions, Count: 5}},
	}

	for i := range badges {
		b := &badges[i]
		if err := b.Rule.Validate(); err != nil {
			return fmt.Errorf("invalid seed badge %s: %w", b.Slug, err)
		}
		b.CreatedAt = time.Now()
		b.UpdatedAt = time.Now()

		_, err := db.bunDB.NewInsert().
			Model(b).
			On("CONFLICT (slug) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("description = EXCLUDED.description").
			Set("xp_reward = EXCLUDED.xp_reward").
			Set("rule = EXCLUDED.rule").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert badge %s: %w", b.Slug, err)
		}
	}

	slog.Info("Badge catalog initialized", slog.Int("count", len(badges)))
	return nil
}
