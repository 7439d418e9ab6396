package domain

import (
	"fmt"
	"strings"
	"time"
)

// RelationKind is the type of a user-to-item association.
type RelationKind string

const (
	RelationFavorite RelationKind = "favorite"
	RelationBookmark RelationKind = "bookmark"
	RelationLike     RelationKind = "like"
	RelationHistory  RelationKind = "history"
)

// ParseRelationKind accepts singular or plural names ("favorites").
func ParseRelationKind(s string) (RelationKind, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch RelationKind(s) {
	case RelationFavorite, RelationBookmark, RelationLike, RelationHistory:
		return RelationKind(s), nil
	case "historie":
		return RelationHistory, nil
	}
	return "", fmt.Errorf("%w: unknown relation %q", ErrInvalidInput, s)
}

// Relation links a user to an item.
//
// There is at most one relation of a given kind per (UserID, ItemID).
// The store enforces it with an existence check before insert.
type Relation struct {
	ID     string       `json:"id"`
	UserID string       `json:"userId"`
	ItemID string       `json:"itemId"`
	Kind   RelationKind `json:"kind"`

	// Snapshot is the item as it was when the relation was created.
	Snapshot *Item `json:"snapshot,omitempty"`

	// Timestamp is the creation time, or the last view time for history.
	Timestamp time.Time `json:"timestamp"`

	// Duration and ReadTime are optional engagement metrics.
	Duration time.Duration `json:"duration,omitempty"`
	ReadTime time.Duration `json:"readTime,omitempty"`
}

// RelationView is a relation joined with the current catalog entry.
// Item is the live item when it still exists, the snapshot otherwise;
// Stale reports the fallback.
type RelationView struct {
	*Relation
	Item  *Item `json:"item"`
	Stale bool  `json:"stale"`
}

// Preferences is a per-user settings document. Updates overlay the
// given keys and keep the others.
type Preferences map[string]any

// Merge returns p with patch overlaid. Neither input is modified.
func (p Preferences) Merge(patch Preferences) Preferences {
	out := make(Preferences, len(p)+len(patch))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
