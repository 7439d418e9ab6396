package domain

import "sort"

const (
	// Default recommendation weights
	DefaultQualityWeight    = 0.7
	DefaultPopularityWeight = 0.3

	// Default popularity weights
	DefaultReviewsWeight = 0.6
	DefaultRatingWeight  = 0.4
)

// Weights parameterises the ranking scores. The defaults are placeholders,
// not tuned values.
type Weights struct {
	// Recommended: rating.overall*Quality + popular*Popularity
	Quality    float64
	Popularity float64

	// Popular: reviewCount*Reviews + rating.overall*Rating
	Reviews float64
	Rating  float64
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return Weights{
		Quality:    DefaultQualityWeight,
		Popularity: DefaultPopularityWeight,
		Reviews:    DefaultReviewsWeight,
		Rating:     DefaultRatingWeight,
	}
}

// Candidate is an item with its ranking score.
type Candidate struct {
	Item  *Item
	Score float64
}

// RecommendScore scores an item for recommendation.
func RecommendScore(item *Item, w Weights) float64 {
	popular := 0.0
	if item.Popular {
		popular = 1.0
	}
	return item.Rating.Overall*w.Quality + popular*w.Popularity
}

// PopularScore scores an item for the popular list.
func PopularScore(item *Item, w Weights) float64 {
	return float64(item.ReviewCount)*w.Reviews + item.Rating.Overall*w.Rating
}

// RankRecommended returns at most limit items not in excluded. When
// preferred is non-empty only items of those categories are kept.
func RankRecommended(items []*Item, excluded, preferred map[string]bool, w Weights, limit int) []*Item {
	candidates := make([]*Candidate, 0, len(items))
	for _, item := range items {
		if excluded[item.ID] {
			continue
		}
		if len(preferred) > 0 && !preferred[item.CategoryID] {
			continue
		}
		candidates = append(candidates, &Candidate{Item: item, Score: RecommendScore(item, w)})
	}
	return topN(candidates, limit)
}

// RankPopular returns the limit highest-scoring items.
func RankPopular(items []*Item, w Weights, limit int) []*Item {
	candidates := make([]*Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, &Candidate{Item: item, Score: PopularScore(item, w)})
	}
	return topN(candidates, limit)
}

// topN sorts candidates by score (descending). Ties keep input order.
func topN(candidates []*Candidate, limit int) []*Item {
	sortCandidates(candidates)
	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]*Item, len(candidates))
	for i, c := range candidates {
		out[i] = c.Item
	}
	return out
}

func sortCandidates(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
