package repositories

import "github.com/uptrace/bun"

// Repositories bundles every repository for wiring through the
// handlers and services.
type Repositories struct {
	Profile   ProfileRepository
	Stats     StatsRepository
	Task      TaskRepository
	Session   SessionRepository
	Badge     BadgeRepository
	UserBadge UserBadgeRepository
	Reward    RewardRepository
}

func NewRepositories(db *bun.DB) *Repositories {
	return &Repositories{
		Profile:   NewProfileRepository(db),
		Stats:     NewStatsRepository(db),
		Task:      NewTaskRepository(db),
		Session:   NewSessionRepository(db),
		Badge:     NewBadgeRepository(db),
		UserBadge: NewUserBadgeRepository(db),
		Reward:    NewRewardRepository(db),
	}
}
