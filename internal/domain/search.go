package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// Lexical relevance weights
	ScoreExactTitle       = 100.0
	ScorePrefixTitle      = 75.0
	ScoreSubstringTitle   = 50.0
	ScoreDescriptionMatch = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0
)

// SortKey orders search results.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortPopular   SortKey = "popular"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps a raw value to a SortKey. Empty means relevance.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortPopular, SortNewest:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, s)
}

// Filters narrows a search. Zero values do not filter.
type Filters struct {
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Sort     SortKey  `json:"sort,omitempty"`
}

// Validate rejects inverted or negative price ranges.
func (f Filters) Validate() error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: min price is negative", ErrInvalidInput)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min price above max price", ErrInvalidInput)
	}
	return nil
}

// NormalizeQuery trims and lowercases free text.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Relevance scores an item against a normalized query. Zero means the
// query is neither in the title nor in the description. An empty query
// matches everything with a zero-but-accepted score, see MatchQuery.
func Relevance(query string, item *Item) float64 {
	if item == nil || query == "" {
		return 0.0
	}

	title := strings.ToLower(item.Title)

	if title == query {
		return ScoreExactTitle + ScorePositionBonus
	}
	if strings.HasPrefix(title, query) {
		return ScorePrefixTitle + ScorePositionBonus
	}
	if idx := strings.Index(title, query); idx >= 0 {
		// Earlier substring matches get higher score
		return ScoreSubstringTitle + ScorePositionBonus*(1.0-float64(idx)/float64(len(title)))
	}

	desc := strings.ToLower(item.Description)
	if idx := strings.Index(desc, query); idx >= 0 {
		return ScoreDescriptionMatch + ScorePositionBonus*math.Exp(-float64(idx)*0.01)
	}

	return 0.0
}

// MatchQuery reports whether item contains the query, case-insensitively,
// in its title or description.
func MatchQuery(query string, item *Item) bool {
	if query == "" {
		return true
	}
	return Relevance(query, item) > 0
}

func (f Filters) accept(item *Item) bool {
	if f.Category != "" && !strings.EqualFold(item.CategoryID, f.Category) {
		return false
	}
	if f.MinPrice != nil && item.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && item.Price > *f.MaxPrice {
		return false
	}
	return true
}

// ApplySearch filters and sorts items. The input slice is not modified.
func ApplySearch(items []*Item, query string, f Filters, w Weights) []*Item {
	query = NormalizeQuery(query)

	candidates := make([]*Candidate, 0, len(items))
	for _, item := range items {
		if !f.accept(item) || !MatchQuery(query, item) {
			continue
		}
		candidates = append(candidates, &Candidate{Item: item, Score: Relevance(query, item)})
	}

	less := sortFunc(candidates, f.Sort, w)
	if less != nil {
		sort.SliceStable(candidates, less)
	}

	out := make([]*Item, len(candidates))
	for i, c := range candidates {
		out[i] = c.Item
	}
	return out
}

func sortFunc(c []*Candidate, key SortKey, w Weights) func(i, j int) bool {
	switch key {
	case SortPriceAsc:
		return func(i, j int) bool { return c[i].Item.Price < c[j].Item.Price }
	case SortPriceDesc:
		return func(i, j int) bool { return c[i].Item.Price > c[j].Item.Price }
	case SortRating:
		return func(i, j int) bool { return c[i].Item.Rating.Overall > c[j].Item.Rating.Overall }
	case SortPopular:
		return func(i, j int) bool { return PopularScore(c[i].Item, w) > PopularScore(c[j].Item, w) }
	case SortNewest:
		return func(i, j int) bool { return c[i].Item.CreatedAt.After(c[j].Item.CreatedAt) }
	case SortRelevance, "":
		return func(i, j int) bool { return c[i].Score > c[j].Score }
	}
	return nil
}
