package store

import (
	"fmt"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

func checkLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: negative limit", domain.ErrInvalidInput)
	}
	return nil
}

// Recommended ranks items the user has not favorited. When the user has
// history or favorites, only items of those categories are candidates.
func (c *Collection) Recommended(userID string, limit int) ([]*domain.Item, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	favorites := c.relations[userID][domain.RelationFavorite]
	excluded := make(map[string]bool, len(favorites))
	for _, r := range favorites {
		excluded[r.ItemID] = true
	}

	preferred := make(map[string]bool)
	for _, kind := range []domain.RelationKind{domain.RelationHistory, domain.RelationFavorite} {
		for _, r := range c.relations[userID][kind] {
			if cat := c.categoryOfLocked(r); cat != "" {
				preferred[cat] = true
			}
		}
	}

	ranked := domain.RankRecommended(c.items, excluded, preferred, c.opts.Weights, limit)
	return cloneItems(ranked), nil
}

// categoryOfLocked resolves the live category of a relation's item,
// falling back to the snapshot for items no longer in the catalog.
func (c *Collection) categoryOfLocked(r *domain.Relation) string {
	if live, ok := c.itemIndex[r.ItemID]; ok {
		return live.CategoryID
	}
	if r.Snapshot != nil {
		return r.Snapshot.CategoryID
	}
	return ""
}

// Popular ranks every item by review count and rating.
func (c *Collection) Popular(limit int) ([]*domain.Item, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return cloneItems(domain.RankPopular(c.items, c.opts.Weights, limit)), nil
}
