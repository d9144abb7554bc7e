package services

import (
	"context"
	"testing"

	"github.com/focoapp/foco-backend/database/models"
)

func TestBadgeSearchService_Search(t *testing.T) {
	repo := &fakeBadgeRepo{badges: []*models.Badge{
		{ID: 1, Slug: "first-focus", Name: "First Focus"},
		{ID: 2, Slug: "streak-7", Name: "Week Warrior"},
		{ID: 3, Slug: "night-owl", Name: "Night Owl"},
	}}
	svc := NewBadgeSearchService(repo)

	t.Run("empty query returns catalog", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("Search() returned %d badges, want 3", len(got))
		}
	})

	t.Run("fuzzy match on name", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "warrior", 10)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) == 0 || got[0].Slug != "streak-7" {
			t.Errorf("Search(warrior) = %+v, want streak-7 first", got)
		}
	})

	t.Run("fuzzy match on slug", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "focus", 10)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) == 0 || got[0].Slug != "first-focus" {
			t.Errorf("Search(focus) = %+v, want first-focus first", got)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "", 1)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("Search() returned %d badges, want 1", len(got))
		}
	})
}
