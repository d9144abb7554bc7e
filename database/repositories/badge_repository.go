package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/focoapp/foco-backend/database/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"
)

const badgeCacheSize = 256

type BadgeRepository interface {
	GetAll(ctx context.Context) ([]*models.Badge, error)
	GetBySlug(ctx context.Context, slug string) (*models.Badge, error)
	SetIconPath(ctx context.Context, slug, iconPath string) error
}

type badgeRepository struct {
	db    *bun.DB
	cache *lru.Cache // slug -> *models.Badge
}

func NewBadgeRepository(db *bun.DB) BadgeRepository {
	cache, _ := lru.New(badgeCacheSize)
	return &badgeRepository{db: db, cache: cache}
}

// GetAll returns the full catalog in catalog order. The evaluator
// iterates badges in this order; no dependency ordering exists between
// rules.
func (r *badgeRepository) GetAll(ctx context.Context) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := r.db.NewSelect().
		Model(&badges).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}
	return badges, nil
}

func (r *badgeRepository) GetBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	if cached, ok := r.cache.Get(slug); ok {
		return cached.(*models.Badge), nil
	}

	badge := new(models.Badge)
	err := r.db.NewSelect().
		Model(badge).
		Where("slug = ?", slug).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge %s: %w", slug, err)
	}

	r.cache.Add(slug, badge)
	return badge, nil
}

func (r *badgeRepository) SetIconPath(ctx context.Context, slug, iconPath string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Badge)(nil)).
		Set("icon_path = ?", iconPath).
		Set("updated_at = ?", time.Now()).
		Where("slug = ?", slug).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set badge icon: %w", err)
	}
	r.cache.Remove(slug)
	return nil
}
