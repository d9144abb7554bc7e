package services

import (
	"context"

	"github.com/sahilm/fuzzy"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/focoapp/foco-backend/database/repositories"
)

// BadgeSearchService fuzzy-matches catalog badges by name and slug.
type BadgeSearchService struct {
	badges repositories.BadgeRepository
}

func NewBadgeSearchService(badges repositories.BadgeRepository) *BadgeSearchService {
	return &BadgeSearchService{badges: badges}
}

// badgeSource adapts the catalog to fuzzy's search interface.
type badgeSource []*models.Badge

func (s badgeSource) String(i int) string { return s[i].Name + " " + s[i].Slug }
func (s badgeSource) Len() int            { return len(s) }

// Search ranks catalog badges against the query. An empty query
// returns the whole catalog in its natural order.
func (s *BadgeSearchService) Search(ctx context.Context, query string, limit int) ([]*models.Badge, error) {
	catalog, err := s.badges.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if query == "" {
		if limit > 0 && len(catalog) > limit {
			catalog = catalog[:limit]
		}
		return catalog, nil
	}

	matches := fuzzy.FindFrom(query, badgeSource(catalog))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*models.Badge, 0, len(matches))
	for _, m := range matches {
		results = append(results, catalog[m.Index])
	}
	return results, nil
}
