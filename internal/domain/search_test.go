package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func price(v float64) *float64 { return &v }

func TestRelevance(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		item           *Item
		expectPositive bool
	}{
		{
			name:           "exact title",
			query:          "electric cars",
			item:           &Item{Title: "Electric Cars"},
			expectPositive: true,
		},
		{
			name:           "prefix title",
			query:          "elec",
			item:           &Item{Title: "Electric Cars"},
			expectPositive: true,
		},
		{
			name:           "substring title",
			query:          "cars",
			item:           &Item{Title: "Electric Cars"},
			expectPositive: true,
		},
		{
			name:           "description only",
			query:          "battery",
			item:           &Item{Title: "Electric Cars", Description: "Battery range compared"},
			expectPositive: true,
		},
		{
			name:           "no match",
			query:          "jazz",
			item:           &Item{Title: "Electric Cars", Description: "Battery range compared"},
			expectPositive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Relevance(NormalizeQuery(tt.query), tt.item)

			if tt.expectPositive && score <= 0 {
				t.Errorf("Expected positive score, got %f", score)
			}
			if !tt.expectPositive && score > 0 {
				t.Errorf("Expected zero score, got %f", score)
			}
		})
	}
}

func TestRelevance_Ordering(t *testing.T) {
	q := "jazz"
	exact := Relevance(q, &Item{Title: "Jazz"})
	prefix := Relevance(q, &Item{Title: "Jazz Classics"})
	substring := Relevance(q, &Item{Title: "Smooth Jazz"})
	desc := Relevance(q, &Item{Title: "Evening", Description: "late night jazz"})

	if !(exact > prefix && prefix > substring && substring > desc) {
		t.Errorf("unexpected ordering: exact=%f prefix=%f substring=%f desc=%f", exact, prefix, substring, desc)
	}
}

func TestApplySearch(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []*Item{
		{ID: "1", Title: "City Car Wash", CategoryID: "clean", Price: 30, Rating: Rating{Overall: 4.1}, CreatedAt: now},
		{ID: "2", Title: "Home Cleaning", Description: "Deep clean for your car and home", CategoryID: "clean", Price: 80, Rating: Rating{Overall: 4.9}, CreatedAt: now.Add(time.Hour)},
		{ID: "3", Title: "Car Repair", CategoryID: "repair", Price: 150, Rating: Rating{Overall: 3.5}, CreatedAt: now.Add(2 * time.Hour)},
		{ID: "4", Title: "Yoga Class", CategoryID: "fitness", Price: 20, CreatedAt: now.Add(3 * time.Hour)},
	}

	tests := []struct {
		name    string
		query   string
		filters Filters
		want    []string
	}{
		{
			name:  "case-insensitive relevance",
			query: "CAR",
			want:  []string{"3", "1", "2"},
		},
		{
			name:    "category filter",
			query:   "car",
			filters: Filters{Category: "clean"},
			want:    []string{"1", "2"},
		},
		{
			name:    "price range",
			query:   "",
			filters: Filters{MinPrice: price(25), MaxPrice: price(100)},
			want:    []string{"1", "2"},
		},
		{
			name:    "price descending",
			query:   "car",
			filters: Filters{Sort: SortPriceDesc},
			want:    []string{"3", "2", "1"},
		},
		{
			name:    "rating",
			query:   "",
			filters: Filters{Sort: SortRating},
			want:    []string{"2", "1", "3", "4"},
		},
		{
			name:    "newest",
			query:   "",
			filters: Filters{Sort: SortNewest},
			want:    []string{"4", "3", "2", "1"},
		},
		{
			name:  "no match",
			query: "piano",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySearch(items, tt.query, tt.filters, DefaultWeights())
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("ApplySearch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFiltersValidate(t *testing.T) {
	if err := (Filters{MinPrice: price(10), MaxPrice: price(5)}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() = %v, want ErrInvalidInput", err)
	}
	if err := (Filters{MinPrice: price(-1)}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() = %v, want ErrInvalidInput", err)
	}
	if err := (Filters{MinPrice: price(1), MaxPrice: price(5)}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortRelevance {
		t.Errorf("ParseSortKey(\"\") = %v, %v", k, err)
	}
	if k, err := ParseSortKey("PRICE_ASC"); err != nil || k != SortPriceAsc {
		t.Errorf("ParseSortKey(PRICE_ASC) = %v, %v", k, err)
	}
	if _, err := ParseSortKey("cheapest"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseSortKey(cheapest) error = %v, want ErrInvalidInput", err)
	}
}
