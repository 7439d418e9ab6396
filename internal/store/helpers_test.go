package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newsCatalog() *domain.Catalog {
	return &domain.Catalog{
		Kind: domain.KindNews,
		Categories: []*domain.Category{
			{ID: "tech", Name: "Technology"},
			{ID: "sport", Name: "Sport"},
		},
		Items: []*domain.Item{
			{ID: "1", Title: "Chip shortage ends", CategoryID: "tech", ReviewCount: 40, Rating: domain.Rating{Overall: 4.5}},
			{ID: "2", Title: "Local derby recap", CategoryID: "sport", ReviewCount: 5, Rating: domain.Rating{Overall: 3.0}},
			{ID: "3", Title: "New phone launch", CategoryID: "tech", ReviewCount: 12, Rating: domain.Rating{Overall: 4.8}, Popular: true},
			{ID: "4", Title: "Marathon season", CategoryID: "sport", ReviewCount: 30, Rating: domain.Rating{Overall: 4.0}, Popular: true},
		},
	}
}

func newTestCollection(t *testing.T, kind domain.Kind, cat *domain.Catalog) (*Collection, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	c := New(kind, Options{Now: clock.Now, NewID: sequentialIDs()})
	if cat != nil {
		if err := c.ReplaceCatalog(cat); err != nil {
			t.Fatalf("ReplaceCatalog: %v", err)
		}
	}
	return c, clock
}

type staticSource struct {
	cat *domain.Catalog
	err error
}

func (s staticSource) Catalog(_ context.Context, _ domain.Kind) (*domain.Catalog, error) {
	return s.cat, s.err
}

func itemIDs(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
