package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/focoapp/foco-backend/database/repositories"
)

// Base XP awarded per task difficulty.
var xpBase = map[string]int{
	models.DifficultyEasy: 10,
	models.DifficultyMed:  20,
	models.DifficultyHard: 35,
}

const (
	// streakBonusPerDay * min(streak, streakBonusCap) is added on top
	// of the base award; the cap bounds runaway scoring on long streaks.
	streakBonusPerDay = 5
	streakBonusCap    = 10
)

// AwardRequest is one completed activity: a finished task, a finished
// focus session, or an abandoned one.
type AwardRequest struct {
	UserID     string `json:"user_id"`
	TaskID     *int64 `json:"task_id"`
	Difficulty string `json:"difficulty"`
	Abandoned  bool   `json:"abandoned"`
	Minutes    int    `json:"minutes"`
}

type AwardResult struct {
	XPAwarded int `json:"xp_awarded"`
	Streak    int `json:"streak"`
	NewLevel  int `json:"new_level"`
	XPTotal   int `json:"xp_total"`
}

// ScoringService turns activity events into XP, streak and level
// updates plus a ledger entry. It is advisory, not transactional:
// a failure mid-flow leaves earlier writes committed.
type ScoringService struct {
	repos *repositories.Repositories
	now   func() time.Time
}

func NewScoringService(repos *repositories.Repositories) *ScoringService {
	return &ScoringService{
		repos: repos,
		now:   time.Now,
	}
}

// Award computes and applies the XP for one activity event.
//
// The daily-stat increment is a single atomic upsert and the profile
// update runs under a row lock, so concurrent awards for the same user
// never lose an update. Yesterday's streak, if any, continues; a
// missed day resets to 1.
func (s *ScoringService) Award(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	if req.UserID == "" {
		return nil, invalidRequest("missing user_id")
	}
	if req.Minutes < 0 {
		return nil, invalidRequest("minutes must be non-negative")
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}
	base, ok := xpBase[difficulty]
	if !ok {
		return nil, invalidRequest("unknown difficulty " + difficulty)
	}

	xp := base + req.Minutes/10
	if req.Abandoned {
		// Abandonment halves the activity credit but never zeroes it;
		// the streak bonus below is added unhalved.
		xp /= 2
	}

	now := s.now()
	today := models.DayOf(now)
	yesterday := models.DayOf(now.AddDate(0, 0, -1))

	yStat, err := s.repos.Stats.GetByDay(ctx, req.UserID, yesterday)
	if err != nil {
		return nil, scoringError("resolve yesterday", err)
	}
	newStreak := 1
	if yStat != nil && yStat.Streak > 0 {
		newStreak = yStat.Streak + 1
	}

	tasksDone := 1
	if req.Abandoned {
		tasksDone = 0
	}
	stat, err := s.repos.Stats.UpsertDay(ctx, &models.DailyStat{
		UserID:         req.UserID,
		Day:            today,
		MinutesFocused: req.Minutes,
		TasksDone:      tasksDone,
		Streak:         newStreak,
	})
	if err != nil {
		return nil, scoringError("upsert daily stat", err)
	}

	streakBonus := streakBonusPerDay * min(stat.Streak, streakBonusCap)
	xp += streakBonus

	profile, err := s.repos.Profile.AddXP(ctx, req.UserID, xp, true)
	if err != nil {
		return nil, scoringError("update profile", err)
	}

	if err := s.repos.Reward.Insert(ctx, &models.Reward{
		UserID: req.UserID,
		Type:   models.RewardTypeEarn,
		Amount: xp,
		Meta: map[string]interface{}{
			"task_id":      req.TaskID,
			"difficulty":   difficulty,
			"minutes":      req.Minutes,
			"streak_bonus": streakBonus,
		},
	}); err != nil {
		return nil, scoringError("append ledger", err)
	}

	if err := s.unlockFirstFocus(ctx, req.UserID); err != nil {
		return nil, scoringError("first focus badge", err)
	}

	slog.Info("XP awarded",
		slog.String("type", "svc"),
		slog.String("user_id", req.UserID),
		slog.String("difficulty", difficulty),
		slog.Int("xp", xp),
		slog.Int("streak", stat.Streak),
		slog.Int("level", profile.Level))

	return &AwardResult{
		XPAwarded: xp,
		Streak:    stat.Streak,
		NewLevel:  profile.Level,
		XPTotal:   profile.XPTotal,
	}, nil
}

// unlockFirstFocus special-cases the first-focus badge: it fires when
// the non-abandoned session count crosses exactly 1, which the general
// rule table cannot observe cheaply on every award. The uniqueness
// constraint keeps a re-fire harmless.
func (s *ScoringService) unlockFirstFocus(ctx context.Context, userID string) error {
	count, err := s.repos.Session.CountCompleted(ctx, userID)
	if err != nil {
		return err
	}
	if count != 1 {
		return nil
	}

	badge, err := s.repos.Badge.GetBySlug(ctx, models.FirstFocusSlug)
	if err != nil {
		return err
	}
	if badge == nil {
		return nil
	}

	inserted, err := s.repos.UserBadge.Insert(ctx, &models.UserBadge{
		UserID:   userID,
		BadgeID:  badge.ID,
		EarnedAt: s.now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	// Same grant shape as the achievement evaluator: flat XP, no level
	// roll-over, plus a ledger entry.
	if badge.XPReward > 0 {
		if _, err := s.repos.Profile.AddXP(ctx, userID, badge.XPReward, false); err != nil {
			return err
		}
		if err := s.repos.Reward.Insert(ctx, &models.Reward{
			UserID: userID,
			Type:   models.RewardTypeEarn,
			Amount: badge.XPReward,
			Meta: map[string]interface{}{
				"badge_id":   badge.ID,
				"badge_slug": badge.Slug,
			},
		}); err != nil {
			return err
		}
	}

	slog.Info("First focus badge unlocked",
		slog.String("type", "svc"),
		slog.String("user_id", userID))
	return nil
}
