package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

// Mapper converts a SeedFile into per-kind domain catalogs
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapCatalogs validates the seed and converts every store. The whole
// seed is rejected on the first invalid entry so a half-valid file never
// replaces a good catalog.
func (m *Mapper) MapCatalogs(seed *SeedFile) (Set, error) {
	if seed == nil || len(seed.Stores) == 0 {
		return nil, fmt.Errorf("%w: no stores defined", ErrInvalidSeed)
	}

	set := make(Set, len(seed.Stores))
	for name, store := range seed.Stores {
		kind, err := domain.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
		if _, dup := set[kind]; dup {
			return nil, fmt.Errorf("%w: store %s defined twice", ErrInvalidSeed, kind)
		}

		cat, err := m.mapStore(kind, store)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSeed, kind, err)
		}
		set[kind] = cat
	}
	return set, nil
}

func (m *Mapper) mapStore(kind domain.Kind, seed StoreSeed) (*domain.Catalog, error) {
	now := m.now()
	cat := &domain.Catalog{
		Kind:       kind,
		Categories: make([]*domain.Category, 0, len(seed.Categories)),
		Items:      make([]*domain.Item, 0, len(seed.Items)),
	}

	categories := make(map[string]bool, len(seed.Categories))
	for _, c := range seed.Categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("category without id")
		}
		if categories[id] {
			return nil, fmt.Errorf("duplicate category %q", id)
		}
		categories[id] = true

		name := c.Name
		if name == "" {
			name = id
		}
		cat.Categories = append(cat.Categories, &domain.Category{ID: id, Name: name, Description: c.Description})
	}

	items := make(map[string]bool, len(seed.Items))
	for _, it := range seed.Items {
		id := strings.TrimSpace(it.ID)
		switch {
		case id == "":
			return nil, fmt.Errorf("item without id")
		case items[id]:
			return nil, fmt.Errorf("duplicate item %q", id)
		case strings.TrimSpace(it.Title) == "":
			return nil, fmt.Errorf("item %q has no title", id)
		case it.Category != "" && !categories[it.Category]:
			return nil, fmt.Errorf("item %q references unknown category %q", id, it.Category)
		case it.Price < 0:
			return nil, fmt.Errorf("item %q has a negative price", id)
		case it.Rating < 0 || it.Rating > 5:
			return nil, fmt.Errorf("item %q rating %.1f out of 0..5", id, it.Rating)
		case it.Duration < 0:
			return nil, fmt.Errorf("item %q has a negative duration", id)
		}
		items[id] = true

		created := it.CreatedAt
		if created.IsZero() {
			created = now
		}
		cat.Items = append(cat.Items, &domain.Item{
			ID:          id,
			Kind:        kind,
			Title:       it.Title,
			Description: it.Description,
			CategoryID:  it.Category,
			Tags:        it.Tags,
			Price:       it.Price,
			Attributes:  it.Attributes,
			Duration:    it.Duration,
			Rating:      domain.Rating{Overall: it.Rating, Count: it.RatingCount},
			ReviewCount: it.ReviewCount,
			ViewCount:   it.Views,
			LikeCount:   it.Likes,
			Popular:     it.Popular,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return cat, nil
}
