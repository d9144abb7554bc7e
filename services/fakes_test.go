package services

import (
	"context"
	"sort"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/focoapp/foco-backend/database/repositories"
)

// In-memory repository fakes mirroring the SQL semantics the services
// rely on: additive daily-stat upserts, row-locked XP updates and the
// unique (user, badge) constraint.

type fakeProfileRepo struct {
	profiles map[string]*models.UserProfile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.UserProfile)}
}

func (f *fakeProfileRepo) ensure(userID string) *models.UserProfile {
	if p, ok := f.profiles[userID]; ok {
		return p
	}
	p := &models.UserProfile{UserID: userID, Level: 1}
	f.profiles[userID] = p
	return p
}

func (f *fakeProfileRepo) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) GetOrCreate(_ context.Context, userID string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.ensure(userID)
	return &cp, nil
}

func (f *fakeProfileRepo) AddXP(_ context.Context, userID string, delta int, normalize bool) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.ensure(userID)
	p.AddXP(delta, normalize)
	cp := *p
	return &cp, nil
}

type fakeStatsRepo struct {
	stats map[string]*models.DailyStat // key: userID + "|" + day
	err   error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[string]*models.DailyStat)}
}

func (f *fakeStatsRepo) set(stat *models.DailyStat) {
	f.stats[stat.UserID+"|"+stat.Day] = stat
}

func (f *fakeStatsRepo) GetByDay(_ context.Context, userID, day string) (*models.DailyStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	st, ok := f.stats[userID+"|"+day]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStatsRepo) UpsertDay(_ context.Context, stat *models.DailyStat) (*models.DailyStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := stat.UserID + "|" + stat.Day
	if existing, ok := f.stats[key]; ok {
		existing.MinutesFocused += stat.MinutesFocused
		existing.TasksDone += stat.TasksDone
		existing.Streak = stat.Streak
		cp := *existing
		return &cp, nil
	}
	cp := *stat
	f.stats[key] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStatsRepo) GetAllByUserID(_ context.Context, userID string) ([]*models.DailyStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.DailyStat
	for _, st := range f.stats {
		if st.UserID == userID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

type fakeTaskRepo struct {
	tasks []*models.Task
	err   error
}

func (f *fakeTaskRepo) GetAllByUserID(_ context.Context, userID string) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions []*models.FocusSession
	err      error
}

func (f *fakeSessionRepo) GetAllByUserID(_ context.Context, userID string) ([]*models.FocusSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.FocusSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) CountCompleted(_ context.Context, userID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, s := range f.sessions {
		if s.UserID == userID && !s.Abandoned {
			n++
		}
	}
	return n, nil
}

type fakeBadgeRepo struct {
	badges []*models.Badge
	err    error
}

func (f *fakeBadgeRepo) GetAll(_ context.Context) ([]*models.Badge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.badges, nil
}

func (f *fakeBadgeRepo) GetBySlug(_ context.Context, slug string) (*models.Badge, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.badges {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBadgeRepo) SetIconPath(_ context.Context, slug, iconPath string) error {
	if f.err != nil {
		return f.err
	}
	for _, b := range f.badges {
		if b.Slug == slug {
			b.IconPath = iconPath
		}
	}
	return nil
}

type fakeUserBadgeRepo struct {
	unlocks []*models.UserBadge
	err     error
}

func (f *fakeUserBadgeRepo) GetEarnedIDs(_ context.Context, userID string) (map[int64]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	earned := make(map[int64]bool)
	for _, ub := range f.unlocks {
		if ub.UserID == userID {
			earned[ub.BadgeID] = true
		}
	}
	return earned, nil
}

func (f *fakeUserBadgeRepo) GetAllByUserID(_ context.Context, userID string) ([]*models.UserBadge, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.UserBadge
	for _, ub := range f.unlocks {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out, nil
}

func (f *fakeUserBadgeRepo) Insert(_ context.Context, ub *models.UserBadge) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, existing := range f.unlocks {
		if existing.UserID == ub.UserID && existing.BadgeID == ub.BadgeID {
			return false, nil
		}
	}
	f.unlocks = append(f.unlocks, ub)
	return true, nil
}

type fakeRewardRepo struct {
	entries []*models.Reward
	err     error
}

func (f *fakeRewardRepo) Insert(_ context.Context, reward *models.Reward) error {
	if f.err != nil {
		return f.err
	}
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, reward)
	return nil
}

func (f *fakeRewardRepo) GetAllByUserID(_ context.Context, userID string, limit int) ([]*models.Reward, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Reward
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].UserID == userID {
			out = append(out, f.entries[i])
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRewardRepo) Totals(_ context.Context, userID string) (int64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	var earned, spent int64
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		switch e.Type {
		case models.RewardTypeEarn:
			earned += int64(e.Amount)
		case models.RewardTypeSpend:
			spent += int64(e.Amount)
		}
	}
	return earned, spent, nil
}

type testRepos struct {
	profile   *fakeProfileRepo
	stats     *fakeStatsRepo
	tasks     *fakeTaskRepo
	sessions  *fakeSessionRepo
	badges    *fakeBadgeRepo
	userBadge *fakeUserBadgeRepo
	rewards   *fakeRewardRepo
}

func newTestRepos() (*testRepos, *repositories.Repositories) {
	tr := &testRepos{
		profile:   newFakeProfileRepo(),
		stats:     newFakeStatsRepo(),
		tasks:     &fakeTaskRepo{},
		sessions:  &fakeSessionRepo{},
		badges:    &fakeBadgeRepo{},
		userBadge: &fakeUserBadgeRepo{},
		rewards:   &fakeRewardRepo{},
	}
	return tr, &repositories.Repositories{
		Profile:   tr.profile,
		Stats:     tr.stats,
		Task:      tr.tasks,
		Session:   tr.sessions,
		Badge:     tr.badges,
		UserBadge: tr.userBadge,
		Reward:    tr.rewards,
	}
}

// fixedNow pins the clock so day arithmetic is deterministic:
// today is 2025-03-14, yesterday 2025-03-13.
var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }
