package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind names a domain store. Each kind owns one catalog, one set of
// user collections and one persistence key.
type Kind string

const (
	KindNews  Kind = "news"
	KindMusic Kind = "music"
	KindAuto  Kind = "auto"
	KindLife  Kind = "life"
	KindGroup Kind = "group"
)

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindNews, KindMusic, KindAuto, KindLife, KindGroup}
}

// ParseKind validates a raw kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, s)
}

// Category groups items of a kind.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Rating is the aggregated rating of an item.
type Rating struct {
	Overall float64 `json:"overall"`
	Count   int     `json:"count"`
}

// Item is a catalog entry: an article, a track, a vehicle, a service
// or a group-buy offer depending on its Kind.
//
// Items reference their category by id only. The category is resolved
// against the authoritative category list when a view is built, so a
// renamed category is never served stale.
type Item struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique within the catalog of its kind.
	ID string `json:"id"`

	// Kind is the store the item belongs to.
	Kind Kind `json:"kind"`

	// ─────────────────────────────
	// Functional description
	// (overwritten by catalog reload)
	// ─────────────────────────────

	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	CategoryID  string            `json:"categoryId"`
	Tags        []string          `json:"tags,omitempty"`
	Price       float64           `json:"price,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`

	// Duration is the playable length of a track. Zero for other kinds.
	Duration time.Duration `json:"duration,omitempty"`

	// ─────────────────────────────
	// Counters
	// ─────────────────────────────

	Rating      Rating `json:"rating"`
	ReviewCount int    `json:"reviewCount"`
	ViewCount   int64  `json:"viewCount"`
	LikeCount   int64  `json:"likeCount"`

	// Popular flags editorially promoted items.
	Popular bool `json:"popular"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so snapshots never alias catalog state.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	cp := *it
	if it.Tags != nil {
		cp.Tags = append([]string(nil), it.Tags...)
	}
	if it.Attributes != nil {
		cp.Attributes = make(map[string]string, len(it.Attributes))
		for k, v := range it.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

// ItemView is an item joined with its live category.
type ItemView struct {
	*Item
	Category *Category `json:"category,omitempty"`
}

// Catalog is the read-only seed of one kind.
type Catalog struct {
	Kind       Kind
	Categories []*Category
	Items      []*Item
}
