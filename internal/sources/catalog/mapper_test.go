package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

func fixedMapper() *Mapper {
	return &Mapper{now: func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }}
}

func TestMapCatalogs(t *testing.T) {
	seed := &SeedFile{Stores: map[string]StoreSeed{
		"Auto": {
			Categories: []CategorySeed{{ID: "suv"}},
			Items: []ItemSeed{
				{ID: "c1", Title: "Compact", Category: "suv", Price: 21000, Rating: 4.2, RatingCount: 8, Views: 3},
			},
		},
	}}

	set, err := fixedMapper().MapCatalogs(seed)
	if err != nil {
		t.Fatalf("MapCatalogs() error = %v", err)
	}

	cat, ok := set[domain.KindAuto]
	if !ok {
		t.Fatalf("MapCatalogs() kinds = %v, want auto", set)
	}
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	want := &domain.Catalog{
		Kind:       domain.KindAuto,
		Categories: []*domain.Category{{ID: "suv", Name: "suv"}},
		Items: []*domain.Item{{
			ID:         "c1",
			Kind:       domain.KindAuto,
			Title:      "Compact",
			CategoryID: "suv",
			Price:      21000,
			Rating:     domain.Rating{Overall: 4.2, Count: 8},
			ViewCount:  3,
			CreatedAt:  created,
			UpdatedAt:  created,
		}},
	}
	if diff := cmp.Diff(want, cat); diff != "" {
		t.Errorf("MapCatalogs() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapCatalogsRejects(t *testing.T) {
	tests := []struct {
		name  string
		store StoreSeed
		kind  string
	}{
		{name: "unknown kind", kind: "weather"},
		{name: "duplicate item", kind: "news", store: StoreSeed{Items: []ItemSeed{{ID: "a", Title: "x"}, {ID: "a", Title: "y"}}}},
		{name: "duplicate category", kind: "news", store: StoreSeed{Categories: []CategorySeed{{ID: "c"}, {ID: "c"}}}},
		{name: "unknown category", kind: "news", store: StoreSeed{Items: []ItemSeed{{ID: "a", Title: "x", Category: "ghost"}}}},
		{name: "missing title", kind: "news", store: StoreSeed{Items: []ItemSeed{{ID: "a"}}}},
		{name: "rating out of range", kind: "news", store: StoreSeed{Items: []ItemSeed{{ID: "a", Title: "x", Rating: 7}}}},
		{name: "negative price", kind: "news", store: StoreSeed{Items: []ItemSeed{{ID: "a", Title: "x", Price: -1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := &SeedFile{Stores: map[string]StoreSeed{tt.kind: tt.store}}
			if _, err := fixedMapper().MapCatalogs(seed); !errors.Is(err, ErrInvalidSeed) {
				t.Errorf("MapCatalogs() error = %v, want ErrInvalidSeed", err)
			}
		})
	}

	if _, err := fixedMapper().MapCatalogs(&SeedFile{}); !errors.Is(err, ErrInvalidSeed) {
		t.Errorf("MapCatalogs(empty) error = %v, want ErrInvalidSeed", err)
	}
}
