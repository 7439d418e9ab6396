package store

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

func (c *Collection) userRelationsLocked(userID string) map[domain.RelationKind][]*domain.Relation {
	byKind, ok := c.relations[userID]
	if !ok {
		byKind = make(map[domain.RelationKind][]*domain.Relation)
		c.relations[userID] = byKind
	}
	return byKind
}

func indexOfRelation(list []*domain.Relation, itemID string) int {
	for i, r := range list {
		if r.ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddRelation links userID to itemID. It returns a NotFound error when
// the item is not in the catalog and nil when the relation already
// exists. History entries go through RecordView.
func (c *Collection) AddRelation(userID string, kind domain.RelationKind, itemID string) error {
	return c.mutate("add_"+string(kind), func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}
		if kind == domain.RelationHistory {
			return false, fmt.Errorf("%w: history is written by RecordView", domain.ErrInvalidInput)
		}

		item, ok := c.itemIndex[itemID]
		if !ok {
			return false, domain.NotFound("item", itemID)
		}

		byKind := c.userRelationsLocked(userID)
		if indexOfRelation(byKind[kind], itemID) >= 0 {
			return false, nil
		}

		now := c.opts.Now()
		byKind[kind] = append(byKind[kind], &domain.Relation{
			ID:        c.opts.NewID(),
			UserID:    userID,
			ItemID:    itemID,
			Kind:      kind,
			Snapshot:  item.Clone(),
			Timestamp: now,
		})
		if kind == domain.RelationLike {
			c.bumpLocked(itemID, 0, 1)
		}
		return true, nil
	})
}

// RemoveRelation drops the relation if present. Removing an absent
// relation is not an error.
func (c *Collection) RemoveRelation(userID string, kind domain.RelationKind, itemID string) error {
	return c.mutate("remove_"+string(kind), func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}

		byKind := c.relations[userID]
		if byKind == nil {
			return false, nil
		}
		list := byKind[kind]
		idx := indexOfRelation(list, itemID)
		if idx < 0 {
			return false, nil
		}

		kept := make([]*domain.Relation, 0, len(list)-1)
		for _, r := range list {
			if r.ItemID != itemID {
				kept = append(kept, r)
			}
		}
		byKind[kind] = kept

		if kind == domain.RelationLike {
			c.bumpLocked(itemID, 0, -1)
		}
		return true, nil
	})
}

// HasRelation reports whether the relation exists.
func (c *Collection) HasRelation(userID string, kind domain.RelationKind, itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return indexOfRelation(c.relations[userID][kind], itemID) >= 0
}

// Relations lists a user's relations of one kind in insertion order
// (most recent first for history).
//
// Each view carries the live catalog item. When the item has left the
// catalog the snapshot taken at creation time is served and Stale is set.
func (c *Collection) Relations(userID string, kind domain.RelationKind) []*domain.RelationView {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.relations[userID][kind]
	out := make([]*domain.RelationView, 0, len(list))
	for _, r := range list {
		cp := *r
		cp.Snapshot = r.Snapshot.Clone()
		view := &domain.RelationView{Relation: &cp}
		if live, ok := c.itemIndex[r.ItemID]; ok {
			view.Item = live.Clone()
		} else {
			view.Item = r.Snapshot.Clone()
			view.Stale = true
		}
		out = append(out, view)
	}
	return out
}

// RecordView upserts a history entry. An existing entry is overwritten
// in place; a new one is prepended. After every write only the most
// recent HistoryLimit entries are kept.
func (c *Collection) RecordView(userID, itemID string, duration time.Duration) error {
	return c.recordHistory("record_view", userID, itemID, duration, 0)
}

// RecordRead is RecordView for articles, storing the reading time.
func (c *Collection) RecordRead(userID, itemID string, readTime time.Duration) error {
	return c.recordHistory("record_read", userID, itemID, 0, readTime)
}

func (c *Collection) recordHistory(op, userID, itemID string, duration, readTime time.Duration) error {
	return c.mutate(op, func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}
		if duration < 0 || readTime < 0 {
			return false, fmt.Errorf("%w: negative duration", domain.ErrInvalidInput)
		}
		item, ok := c.itemIndex[itemID]
		if !ok {
			return false, domain.NotFound("item", itemID)
		}

		now := c.opts.Now()
		byKind := c.userRelationsLocked(userID)
		history := byKind[domain.RelationHistory]

		if idx := indexOfRelation(history, itemID); idx >= 0 {
			entry := history[idx]
			entry.Timestamp = now
			entry.Duration = duration
			entry.ReadTime = readTime
		} else {
			entry := &domain.Relation{
				ID:        c.opts.NewID(),
				UserID:    userID,
				ItemID:    itemID,
				Kind:      domain.RelationHistory,
				Snapshot:  item.Clone(),
				Timestamp: now,
				Duration:  duration,
				ReadTime:  readTime,
			}
			history = append([]*domain.Relation{entry}, history...)
		}

		if len(history) > c.opts.HistoryLimit {
			history = history[:c.opts.HistoryLimit]
		}
		byKind[domain.RelationHistory] = history

		c.bumpLocked(itemID, 1, 0)
		return true, nil
	})
}

// History is a shortcut for Relations(userID, RelationHistory).
func (c *Collection) History(userID string) []*domain.RelationView {
	return c.Relations(userID, domain.RelationHistory)
}
