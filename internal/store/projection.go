package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

// ProjectionVersion is bumped when the persisted layout changes.
const ProjectionVersion = 1

// Projection is the persisted subset of a collection. The catalog is
// never part of it: it is reloaded from the seed on every start.
type Projection struct {
	Version     int                           `json:"version"`
	Kind        domain.Kind                   `json:"kind"`
	SavedAt     time.Time                     `json:"savedAt"`
	Relations   []*domain.Relation            `json:"relations"`
	History     []*domain.Relation            `json:"history"`
	Bookings    []*domain.Booking             `json:"bookings"`
	Requests    []*domain.ServiceRequest      `json:"requests"`
	Reviews     []*domain.Review              `json:"reviews"`
	Preferences map[string]domain.Preferences `json:"preferences"`
	Usage       map[string]ItemUsage          `json:"usage,omitempty"` // view/like deltas over the seed
}

// Snapshot encodes the projection as JSON.
func (c *Collection) Snapshot() ([]byte, error) {
	c.mu.Lock()
	p := c.projectionLocked()
	c.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s projection: %w", c.kind, err)
	}
	return data, nil
}

func (c *Collection) projectionLocked() *Projection {
	p := &Projection{
		Version:     ProjectionVersion,
		Kind:        c.kind,
		SavedAt:     c.opts.Now(),
		Relations:   []*domain.Relation{},
		History:     []*domain.Relation{},
		Bookings:    make([]*domain.Booking, 0, len(c.bookings)),
		Requests:    make([]*domain.ServiceRequest, 0, len(c.requests)),
		Reviews:     make([]*domain.Review, 0, len(c.reviews)),
		Preferences: make(map[string]domain.Preferences, len(c.prefs)),
		Usage:       make(map[string]ItemUsage, len(c.usage)),
	}

	for _, byKind := range c.relations {
		for kind, list := range byKind {
			for _, r := range list {
				cp := *r
				cp.Snapshot = r.Snapshot.Clone()
				if kind == domain.RelationHistory {
					p.History = append(p.History, &cp)
				} else {
					p.Relations = append(p.Relations, &cp)
				}
			}
		}
	}
	for _, b := range c.bookings {
		p.Bookings = append(p.Bookings, b.Clone())
	}
	for _, r := range c.requests {
		cp := *r
		p.Requests = append(p.Requests, &cp)
	}
	for _, r := range c.reviews {
		cp := *r
		p.Reviews = append(p.Reviews, &cp)
	}
	for user, prefs := range c.prefs {
		p.Preferences[user] = prefs.Merge(nil)
	}
	for id, u := range c.usage {
		p.Usage[id] = *u
	}
	return p
}

// Restore replaces the projection with data. Empty data resets to
// defaults. Undecodable data also resets to defaults and returns an error
// wrapping ErrCorruptProjection; the collection stays usable either way.
func (c *Collection) Restore(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.applyAllUsageLocked()

	c.resetLocked()
	if len(data) == 0 {
		return nil
	}

	var p Projection
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptProjection, c.kind, err)
	}
	if p.Version != ProjectionVersion {
		return fmt.Errorf("%w: %s: unsupported version %d", domain.ErrCorruptProjection, c.kind, p.Version)
	}
	if p.Kind != "" && p.Kind != c.kind {
		return fmt.Errorf("%w: projection of %s loaded into %s", domain.ErrCorruptProjection, p.Kind, c.kind)
	}

	c.restoreLocked(&p)
	return nil
}

// restoreLocked loads a decoded projection, dropping nil, unknown and
// duplicate entries and re-applying the uniqueness and history-cap
// invariants.
func (c *Collection) restoreLocked(p *Projection) {
	for _, r := range p.Relations {
		if r == nil || r.UserID == "" {
			continue
		}
		kind, err := domain.ParseRelationKind(string(r.Kind))
		if err != nil || kind == domain.RelationHistory {
			continue
		}
		r.Kind = kind
		byKind := c.userRelationsLocked(r.UserID)
		if indexOfRelation(byKind[kind], r.ItemID) >= 0 {
			continue
		}
		byKind[kind] = append(byKind[kind], r)
	}

	for _, r := range p.History {
		if r == nil || r.UserID == "" {
			continue
		}
		r.Kind = domain.RelationHistory
		byKind := c.userRelationsLocked(r.UserID)
		history := byKind[domain.RelationHistory]
		if indexOfRelation(history, r.ItemID) >= 0 || len(history) >= c.opts.HistoryLimit {
			continue
		}
		byKind[domain.RelationHistory] = append(history, r)
	}

	seen := make(map[string]bool, len(p.Bookings)+len(p.Requests)+len(p.Reviews))
	for _, b := range p.Bookings {
		if b != nil && b.ID != "" && !seen["b:"+b.ID] {
			seen["b:"+b.ID] = true
			c.bookings = append(c.bookings, b)
		}
	}
	for _, r := range p.Requests {
		if r != nil && r.ID != "" && !seen["q:"+r.ID] {
			seen["q:"+r.ID] = true
			c.requests = append(c.requests, r)
		}
	}
	for _, r := range p.Reviews {
		if r != nil && r.ID != "" && !seen["r:"+r.ID] {
			seen["r:"+r.ID] = true
			c.reviews = append(c.reviews, r)
		}
	}
	for user, prefs := range p.Preferences {
		if user != "" && prefs != nil {
			c.prefs[user] = prefs
		}
	}
	for id, u := range p.Usage {
		if id != "" && u != (ItemUsage{}) {
			cp := u
			c.usage[id] = &cp
		}
	}
}
