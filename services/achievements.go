package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/focoapp/foco-backend/database/repositories"
)

// UnlockedBadge is one badge granted during an evaluator run.
type UnlockedBadge struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`
}

type EvaluateResult struct {
	NewBadges []UnlockedBadge `json:"new_badges"`
	Count     int             `json:"count"`
}

// AchievementService checks the badge catalog against a user's
// activity and persists any new unlocks, granting the badge's XP
// reward as a flat bonus.
type AchievementService struct {
	repos *repositories.Repositories
	now   func() time.Time
}

func NewAchievementService(repos *repositories.Repositories) *AchievementService {
	return &AchievementService{
		repos: repos,
		now:   time.Now,
	}
}

// Evaluate runs every unearned catalog rule against a fresh activity
// snapshot. Each unlock commits independently: a failure partway
// through leaves earlier unlocks in place and reports
// ErrEvaluationFailed. Re-running is always safe because the
// (user, badge) uniqueness constraint absorbs duplicates.
func (s *AchievementService) Evaluate(ctx context.Context, userID string) (*EvaluateResult, error) {
	if userID == "" {
		return nil, invalidRequest("missing user_id")
	}

	var (
		catalog  []*models.Badge
		earned   map[int64]bool
		profile  *models.UserProfile
		stats    []*models.DailyStat
		tasks    []*models.Task
		sessions []*models.FocusSession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		catalog, err = s.repos.Badge.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		earned, err = s.repos.UserBadge.GetEarnedIDs(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.repos.Profile.Get(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.repos.Stats.GetAllByUserID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.repos.Task.GetAllByUserID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.repos.Session.GetAllByUserID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, evaluationError("load activity", err)
	}

	if profile == nil {
		// No profile yet: the user has never earned XP. Level-gated
		// rules see level 1, everything else sees empty activity.
		profile = &models.UserProfile{UserID: userID, Level: 1}
	}

	snap := newActivitySnapshot(profile, stats, tasks, sessions, s.now())

	result := &EvaluateResult{NewBadges: []UnlockedBadge{}}
	for _, badge := range catalog {
		if earned[badge.ID] {
			continue
		}
		if err := badge.Rule.Validate(); err != nil {
			slog.Warn("Skipping badge with invalid rule",
				slog.String("type", "svc"),
				slog.String("slug", badge.Slug),
				slog.String("error", err.Error()))
			continue
		}
		if !snap.satisfies(badge.Rule) {
			continue
		}

		if err := s.grant(ctx, userID, badge); err != nil {
			return nil, err
		}

		result.NewBadges = append(result.NewBadges, UnlockedBadge{
			ID:          badge.ID,
			Slug:        badge.Slug,
			Name:        badge.Name,
			Description: badge.Description,
			XPReward:    badge.XPReward,
		})
	}

	result.Count = len(result.NewBadges)
	if len(result.NewBadges) > 0 {
		slog.Info("Badges unlocked",
			slog.String("type", "svc"),
			slog.String("user_id", userID),
			slog.Int("count", len(result.NewBadges)))
	}
	return result, nil
}

// grant persists one unlock and its XP reward. Badge XP is added
// without level roll-over so the bonus stacks the same regardless of
// how close the user sits to the next level; the next scoring award
// normalizes the total.
func (s *AchievementService) grant(ctx context.Context, userID string, badge *models.Badge) error {
	inserted, err := s.repos.UserBadge.Insert(ctx, &models.UserBadge{
		UserID:   userID,
		BadgeID:  badge.ID,
		EarnedAt: s.now(),
	})
	if err != nil {
		return evaluationError("insert unlock", err)
	}
	if !inserted {
		// A concurrent evaluator beat us to it; it also granted the XP.
		return nil
	}

	if badge.XPReward > 0 {
		if _, err := s.repos.Profile.AddXP(ctx, userID, badge.XPReward, false); err != nil {
			return evaluationError("grant badge xp", err)
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
			return evaluationError("append ledger", err)
		}
	}
	return nil
}
