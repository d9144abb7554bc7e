package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/focoapp/foco-backend/database/models"
)

func newTestAchievementService() (*testRepos, *AchievementService) {
	tr, repos := newTestRepos()
	svc := NewAchievementService(repos)
	svc.now = fixedNow
	return tr, svc
}

func dayTime(day string) time.Time {
	t, _ := time.Parse("2006-01-02", day)
	return t.Add(10 * time.Hour)
}

func doneTask(userID, day string) *models.Task {
	completed := dayTime(day)
	return &models.Task{
		UserID:      userID,
		Status:      models.TaskStatusDone,
		CompletedAt: &completed,
	}
}

func TestActivitySnapshot_Satisfies(t *testing.T) {
	early := dayTime("2025-03-10")
	due := dayTime("2025-03-20")

	tests := []struct {
		name     string
		rule     models.BadgeRule
		snapshot *activitySnapshot
		want     bool
	}{
		{
			name: "tasks completed meets threshold",
			rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				nil,
				[]*models.Task{
					doneTask("u1", "2025-03-10"),
					doneTask("u1", "2025-03-12"),
					{UserID: "u1", Status: models.TaskStatusTodo},
				},
				nil, testNow),
			want: true,
		},
		{
			name: "tasks completed below threshold",
			rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 3},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				nil,
				[]*models.Task{doneTask("u1", "2025-03-10")},
				nil, testNow),
			want: false,
		},
		{
			name: "tasks per day counts only today",
			rule: models.BadgeRule{Kind: models.RuleTasksPerDay, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				nil,
				[]*models.Task{
					doneTask("u1", "2025-03-14"),
					doneTask("u1", "2025-03-14"),
					doneTask("u1", "2025-03-13"),
				},
				nil, testNow),
			want: true,
		},
		{
			name: "streak reads latest stat",
			rule: models.BadgeRule{Kind: models.RuleStreakDays, Count: 7},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				[]*models.DailyStat{
					{Day: "2025-03-14", Streak: 7},
					{Day: "2025-03-13", Streak: 6},
				},
				nil, nil, testNow),
			want: true,
		},
		{
			name: "streak with no stats",
			rule: models.BadgeRule{Kind: models.RuleStreakDays, Count: 1},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1}, nil, nil, nil, testNow),
			want: false,
		},
		{
			name: "focus completed ignores abandoned",
			rule: models.BadgeRule{Kind: models.RuleFocusCompleted, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1}, nil, nil,
				[]*models.FocusSession{
					{UserID: "u1", StartedAt: dayTime("2025-03-10")},
					{UserID: "u1", StartedAt: dayTime("2025-03-11")},
					{UserID: "u1", StartedAt: dayTime("2025-03-12"), Abandoned: true},
				},
				testNow),
			want: true,
		},
		{
			name: "focus per day counts only today",
			rule: models.BadgeRule{Kind: models.RuleFocusPerDay, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1}, nil, nil,
				[]*models.FocusSession{
					{UserID: "u1", StartedAt: dayTime("2025-03-14")},
					{UserID: "u1", StartedAt: dayTime("2025-03-13")},
				},
				testNow),
			want: false,
		},
		{
			name: "level gate",
			rule: models.BadgeRule{Kind: models.RuleLevel, Count: 5},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 5}, nil, nil, nil, testNow),
			want: true,
		},
		{
			name: "weekly minutes sums trailing seven days",
			rule: models.BadgeRule{Kind: models.RuleWeeklyMinutes, Count: 300},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				[]*models.DailyStat{
					{Day: "2025-03-14", MinutesFocused: 100},
					{Day: "2025-03-12", MinutesFocused: 100},
					{Day: "2025-03-08", MinutesFocused: 100},
					// Outside the window; must not count.
					{Day: "2025-03-07", MinutesFocused: 500},
				},
				nil, nil, testNow),
			want: true,
		},
		{
			name: "perfect days run breaks on imperfect day",
			rule: models.BadgeRule{Kind: models.RulePerfectDays, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				[]*models.DailyStat{
					{Day: "2025-03-14", TasksDone: 1},
					{Day: "2025-03-13", TasksDone: 2},
					{Day: "2025-03-12", TasksDone: 3},
				},
				[]*models.Task{
					doneTask("u1", "2025-03-14"),
					doneTask("u1", "2025-03-13"),
					doneTask("u1", "2025-03-13"),
					// Only one of three recorded on the 12th; run stops there.
					doneTask("u1", "2025-03-12"),
				},
				nil, testNow),
			want: true,
		},
		{
			name: "no abandon window clean",
			rule: models.BadgeRule{Kind: models.RuleNoAbandonDays, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				[]*models.DailyStat{
					{Day: "2025-03-14", TasksDone: 1},
					{Day: "2025-03-13", TasksDone: 1},
					{Day: "2025-03-12", TasksDone: 1},
				},
				nil,
				[]*models.FocusSession{
					{UserID: "u1", StartedAt: dayTime("2025-03-14")},
					// Abandoned outside the two-day window; ignored.
					{UserID: "u1", StartedAt: dayTime("2025-03-12"), Abandoned: true},
				},
				testNow),
			want: true,
		},
		{
			name: "no abandon window tainted",
			rule: models.BadgeRule{Kind: models.RuleNoAbandonDays, Count: 2},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				[]*models.DailyStat{
					{Day: "2025-03-14", TasksDone: 1},
					{Day: "2025-03-13", TasksDone: 1},
				},
				nil,
				[]*models.FocusSession{
					{UserID: "u1", StartedAt: dayTime("2025-03-13"), Abandoned: true},
				},
				testNow),
			want: false,
		},
		{
			name: "no abandon window not yet filled",
			rule: models.BadgeRule{Kind: models.RuleNoAbandonDays, Count: 5},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1},
				[]*models.DailyStat{
					{Day: "2025-03-14", TasksDone: 1},
				},
				nil, nil, testNow),
			want: false,
		},
		{
			name: "early completions",
			rule: models.BadgeRule{Kind: models.RuleEarlyCompletions, Count: 1},
			snapshot: newActivitySnapshot(
				&models.UserProfile{Level: 1}, nil,
				[]*models.Task{
					{UserID: "u1", Status: models.TaskStatusDone, CompletedAt: &early, DueDate: &due},
				},
				nil, testNow),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.satisfies(tt.rule); got != tt.want {
				t.Errorf("satisfies(%v) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestAchievementService_Evaluate(t *testing.T) {
	tr, svc := newTestAchievementService()
	tr.badges.badges = []*models.Badge{
		{ID: 1, Slug: "task-10", Name: "Ten Tasks", XPReward: 25,
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 10}},
		{ID: 2, Slug: "task-1", Name: "First Task", XPReward: 10,
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 1}},
	}
	tr.profile.profiles["u1"] = &models.UserProfile{UserID: "u1", XPTotal: 95, Level: 1}
	tr.tasks.tasks = []*models.Task{doneTask("u1", "2025-03-14")}

	result, err := svc.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.NewBadges) != 1 {
		t.Fatalf("NewBadges = %d, want 1", len(result.NewBadges))
	}
	if result.NewBadges[0].Slug != "task-1" {
		t.Errorf("unlocked %q, want task-1", result.NewBadges[0].Slug)
	}

	// Badge XP lands flat, without level roll-over.
	profile, _ := tr.profile.Get(context.Background(), "u1")
	if profile.XPTotal != 105 || profile.Level != 1 {
		t.Errorf("profile = %d XP level %d, want 105 XP level 1", profile.XPTotal, profile.Level)
	}

	if len(tr.rewards.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(tr.rewards.entries))
	}
	if tr.rewards.entries[0].Amount != 10 {
		t.Errorf("ledger amount = %d, want 10", tr.rewards.entries[0].Amount)
	}
}

func TestAchievementService_Evaluate_Idempotent(t *testing.T) {
	tr, svc := newTestAchievementService()
	tr.badges.badges = []*models.Badge{
		{ID: 1, Slug: "task-1", Name: "First Task", XPReward: 10,
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 1}},
	}
	tr.tasks.tasks = []*models.Task{doneTask("u1", "2025-03-14")}

	first, err := svc.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}
	if len(first.NewBadges) != 1 {
		t.Fatalf("first run NewBadges = %d, want 1", len(first.NewBadges))
	}

	second, err := svc.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}
	if len(second.NewBadges) != 0 {
		t.Errorf("second run NewBadges = %d, want 0", len(second.NewBadges))
	}

	// XP granted exactly once.
	profile, _ := tr.profile.Get(context.Background(), "u1")
	if profile.XPTotal != 10 {
		t.Errorf("XPTotal = %d, want 10", profile.XPTotal)
	}
	if len(tr.rewards.entries) != 1 {
		t.Errorf("ledger entries = %d, want 1", len(tr.rewards.entries))
	}
}

func TestAchievementService_Evaluate_SkipsInvalidRule(t *testing.T) {
	tr, svc := newTestAchievementService()
	tr.badges.badges = []*models.Badge{
		{ID: 1, Slug: "broken", Name: "Broken",
			Rule: models.BadgeRule{Kind: "mystery", Count: 1}},
		{ID: 2, Slug: "task-1", Name: "First Task",
			Rule: models.BadgeRule{Kind: models.RuleTasksCompleted, Count: 1}},
	}
	tr.tasks.tasks = []*models.Task{doneTask("u1", "2025-03-14")}

	result, err := svc.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.NewBadges) != 1 || result.NewBadges[0].Slug != "task-1" {
		t.Errorf("NewBadges = %+v, want only task-1", result.NewBadges)
	}
}

func TestAchievementService_Evaluate_NoProfile(t *testing.T) {
	tr, svc := newTestAchievementService()
	tr.badges.badges = []*models.Badge{
		{ID: 1, Slug: "level-1", Name: "Level One",
			Rule: models.BadgeRule{Kind: models.RuleLevel, Count: 1}},
		{ID: 2, Slug: "level-5", Name: "Level Five",
			Rule: models.BadgeRule{Kind: models.RuleLevel, Count: 5}},
	}

	result, err := svc.Evaluate(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.NewBadges) != 1 || result.NewBadges[0].Slug != "level-1" {
		t.Errorf("NewBadges = %+v, want only level-1", result.NewBadges)
	}
}

func TestAchievementService_Evaluate_Errors(t *testing.T) {
	t.Run("missing user id", func(t *testing.T) {
		_, svc := newTestAchievementService()
		_, err := svc.Evaluate(context.Background(), "")
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("Evaluate() error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		tr, svc := newTestAchievementService()
		tr.badges.err = errors.New("connection refused")
		_, err := svc.Evaluate(context.Background(), "u1")
		if !errors.Is(err, ErrEvaluationFailed) {
			t.Fatalf("Evaluate() error = %v, want ErrEvaluationFailed", err)
		}
	})
}
