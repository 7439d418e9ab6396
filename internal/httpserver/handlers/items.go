package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
)

type itemsResponse struct {
	Kind       domain.Kind        `json:"kind"`
	Categories []*domain.Category `json:"categories"`
	Items      []*domain.ItemView `json:"items"`
}

type rankedResponse struct {
	Kind  domain.Kind    `json:"kind"`
	Items []*domain.Item `json:"items"`
}

func Items(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, itemsResponse{
			Kind:       c.Kind(),
			Categories: c.Categories(),
			Items:      c.Items(),
		})
	}
}

func Item(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		it, err := c.Item(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

func Popular(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		limit, err := parseLimit(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		items, err := c.Popular(limit)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rankedResponse{Kind: c.Kind(), Items: items})
	}
}

// Recommended ranks items for the calling user. Anonymous callers get
// the unpersonalized ranking.
func Recommended(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		limit, err := parseLimit(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		user, _ := userID(r)
		items, err := c.Recommended(user, limit)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rankedResponse{Kind: c.Kind(), Items: items})
	}
}

type searchResponse struct {
	Kind    domain.Kind    `json:"kind"`
	Query   string         `json:"query"`
	Filters domain.Filters `json:"filters"`
	Items   []*domain.Item `json:"items"`
}

func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		q := r.URL.Query()
		filters, err := parseFilters(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		items, err := c.Search(r.Context(), q.Get("q"), filters)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{
			Kind:    c.Kind(),
			Query:   q.Get("q"),
			Filters: filters,
			Items:   items,
		})
	}
}

func parseFilters(r *http.Request) (domain.Filters, error) {
	q := r.URL.Query()
	sort, err := domain.ParseSortKey(q.Get("sort"))
	if err != nil {
		return domain.Filters{}, err
	}
	minPrice, err := parseFloat(r, "min_price")
	if err != nil {
		return domain.Filters{}, err
	}
	maxPrice, err := parseFloat(r, "max_price")
	if err != nil {
		return domain.Filters{}, err
	}
	return domain.Filters{
		Category: q.Get("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     sort,
	}, nil
}
