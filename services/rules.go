package services

import (
	"time"

	"github.com/focoapp/foco-backend/database/models"
)

// activitySnapshot is a point-in-time read of everything the badge
// rules look at. All predicates below are pure functions of the
// snapshot; the evaluator builds it once per run so every rule sees
// the same world.
type activitySnapshot struct {
	profile  *models.UserProfile
	stats    []*models.DailyStat // ordered most recent day first
	tasks    []*models.Task
	sessions []*models.FocusSession
	today    string
	weekAgo  string
}

func newActivitySnapshot(
	profile *models.UserProfile,
	stats []*models.DailyStat,
	tasks []*models.Task,
	sessions []*models.FocusSession,
	now time.Time,
) *activitySnapshot {
	return &activitySnapshot{
		profile:  profile,
		stats:    stats,
		tasks:    tasks,
		sessions: sessions,
		today:    models.DayOf(now),
		weekAgo:  models.DayOf(now.AddDate(0, 0, -7)),
	}
}

// satisfies evaluates one rule against the snapshot. The switch is
// exhaustive over the rule kinds accepted by BadgeRule.Validate.
func (a *activitySnapshot) satisfies(rule models.BadgeRule) bool {
	switch rule.Kind {
	case models.RuleTasksCompleted:
		return a.tasksCompleted() >= rule.Count
	case models.RuleTasksPerDay:
		return a.tasksCompletedOn(a.today) >= rule.Count
	case models.RuleStreakDays:
		return a.currentStreak() >= rule.Count
	case models.RuleFocusCompleted:
		return a.focusCompleted() >= rule.Count
	case models.RuleFocusPerDay:
		return a.focusCompletedOn(a.today) >= rule.Count
	case models.RuleLevel:
		return a.profile.Level >= rule.Count
	case models.RuleWeeklyMinutes:
		return a.weeklyMinutes() >= rule.Count
	case models.RulePerfectDays:
		return a.perfectRun() >= rule.Count
	case models.RuleNoAbandonDays:
		return a.noAbandonWindow(rule.Count)
	case models.RuleEarlyCompletions:
		return a.earlyCompletions() >= rule.Count
	}
	return false
}

func (a *activitySnapshot) tasksCompleted() int {
	n := 0
	for _, t := range a.tasks {
		if t.IsDone() {
			n++
		}
	}
	return n
}

func (a *activitySnapshot) tasksCompletedOn(day string) int {
	n := 0
	for _, t := range a.tasks {
		if t.CompletedOn(day) {
			n++
		}
	}
	return n
}

func (a *activitySnapshot) focusCompleted() int {
	n := 0
	for _, s := range a.sessions {
		if !s.Abandoned {
			n++
		}
	}
	return n
}

func (a *activitySnapshot) focusCompletedOn(day string) int {
	n := 0
	for _, s := range a.sessions {
		if !s.Abandoned && s.StartedOn(day) {
			n++
		}
	}
	return n
}

func (a *activitySnapshot) earlyCompletions() int {
	n := 0
	for _, t := range a.tasks {
		if t.CompletedEarly() {
			n++
		}
	}
	return n
}

// currentStreak reads the streak off the most recent daily stat. The
// scoring service already handles reset-vs-continue when it writes the
// row, so the evaluator just trusts the latest value.
func (a *activitySnapshot) currentStreak() int {
	if len(a.stats) == 0 {
		return 0
	}
	return a.stats[0].Streak
}

// weeklyMinutes sums focused minutes over the trailing seven days. Day
// keys sort lexicographically in date order, so a string compare is
// enough.
func (a *activitySnapshot) weeklyMinutes() int {
	total := 0
	for _, st := range a.stats {
		if st.Day > a.weekAgo {
			total += st.MinutesFocused
		}
	}
	return total
}

// perfectRun counts consecutive recent active days where at least one
// task landed and the day's stat counter agrees with the per-task
// completion records. The run breaks at the first day that falls short.
func (a *activitySnapshot) perfectRun() int {
	run := 0
	for _, st := range a.stats {
		if st.TasksDone > 0 && st.TasksDone == a.tasksCompletedOn(st.Day) {
			run++
		} else {
			break
		}
	}
	return run
}

// noAbandonWindow reports whether the user's latest `days` active days
// contain no abandoned session. Fewer than `days` active days on
// record means the window hasn't been filled yet.
func (a *activitySnapshot) noAbandonWindow(days int) bool {
	if len(a.stats) < days {
		return false
	}
	window := a.stats[:days]
	for _, s := range a.sessions {
		if !s.Abandoned {
			continue
		}
		for _, st := range window {
			if s.StartedOn(st.Day) {
				return false
			}
		}
	}
	return true
}
