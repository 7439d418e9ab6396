package store

import "github.com/MrSnakeDoc/lifehub/internal/domain"

// ItemUsage holds view and like counts of one item.
type ItemUsage struct {
	Views int64 `json:"views,omitempty"`
	Likes int64 `json:"likes,omitempty"`
}

// bumpLocked adds to the usage deltas of itemID and refreshes the live
// item counters. Deltas are kept for items missing from the catalog so
// they apply again once the item comes back.
func (c *Collection) bumpLocked(itemID string, views, likes int64) {
	u, ok := c.usage[itemID]
	if !ok {
		u = &ItemUsage{}
		c.usage[itemID] = u
	}
	u.Views += views
	u.Likes += likes
	if *u == (ItemUsage{}) {
		delete(c.usage, itemID)
	}

	if item, ok := c.itemIndex[itemID]; ok {
		c.applyUsageLocked(item)
		item.UpdatedAt = c.opts.Now()
	}
}

// applyUsageLocked sets the item counters to seed + delta.
func (c *Collection) applyUsageLocked(item *domain.Item) {
	seed := c.seeded[item.ID]
	var delta ItemUsage
	if u, ok := c.usage[item.ID]; ok {
		delta = *u
	}
	item.ViewCount = max(seed.Views+delta.Views, 0)
	item.LikeCount = max(seed.Likes+delta.Likes, 0)
}

func (c *Collection) applyAllUsageLocked() {
	for _, it := range c.items {
		c.applyUsageLocked(it)
	}
}
