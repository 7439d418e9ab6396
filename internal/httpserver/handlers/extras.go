package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
)

type requestView struct {
	*domain.ServiceRequest
	Expired bool `json:"expired"`
}

type requestsResponse struct {
	Kind     domain.Kind    `json:"kind"`
	Requests []*requestView `json:"requests"`
}

type createRequestBody struct {
	ItemID      string `json:"itemId"`
	Description string `json:"description"`
}

// Requests lists the caller's service requests with their expiry
// evaluated now.
func Requests(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		now := d.Now()
		list := c.Requests(user)
		out := make([]*requestView, len(list))
		for i, req := range list {
			out[i] = &requestView{ServiceRequest: req, Expired: req.Expired(now)}
		}
		writeJSON(w, http.StatusOK, requestsResponse{Kind: c.Kind(), Requests: out})
	}
}

func CreateRequest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var body createRequestBody
		if err := decode(r, &body); err != nil {
			writeError(w, r, d, err)
			return
		}
		req, err := c.CreateRequest(user, body.ItemID, body.Description)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, requestView{ServiceRequest: req})
	}
}

type reviewsResponse struct {
	ItemID  string           `json:"itemId"`
	Summary domain.Rating    `json:"summary"`
	Reviews []*domain.Review `json:"reviews"`
}

type addReviewBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func Reviews(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		itemID := chi.URLParam(r, "id")
		if _, err := c.Item(itemID); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, reviewsResponse{
			ItemID:  itemID,
			Summary: c.ReviewSummary(itemID),
			Reviews: c.Reviews(itemID),
		})
	}
}

func AddReview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var body addReviewBody
		if err := decode(r, &body); err != nil {
			writeError(w, r, d, err)
			return
		}
		review, err := c.AddReview(user, chi.URLParam(r, "id"), body.Rating, body.Comment)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, review)
	}
}

func Preferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, c.Preferences(user))
	}
}

// UpdatePreferences overlays the body keys on the stored preferences.
func UpdatePreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var patch domain.Preferences
		if err := decode(r, &patch); err != nil {
			writeError(w, r, d, err)
			return
		}
		merged, err := c.UpdatePreferences(user, patch)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, merged)
	}
}
