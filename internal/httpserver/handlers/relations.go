package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/store"
)

type relationsResponse struct {
	Kind     domain.Kind            `json:"kind"`
	Relation domain.RelationKind    `json:"relation"`
	Items    []*domain.RelationView `json:"items"`
}

type relationStatus struct {
	Relation domain.RelationKind `json:"relation"`
	ItemID   string              `json:"itemId"`
	Active   bool                `json:"active"`
}

// relationTarget resolves the collection, the caller and the relation
// kind shared by every relation route.
func relationTarget(d deps.Deps, r *http.Request) (*store.Collection, string, domain.RelationKind, error) {
	c, err := collection(d, r)
	if err != nil {
		return nil, "", "", err
	}
	user, err := userID(r)
	if err != nil {
		return nil, "", "", err
	}
	kind, err := domain.ParseRelationKind(chi.URLParam(r, "relation"))
	if err != nil {
		return nil, "", "", err
	}
	return c, user, kind, nil
}

func Relations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, kind, err := relationTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, relationsResponse{
			Kind:     c.Kind(),
			Relation: kind,
			Items:    c.Relations(user, kind),
		})
	}
}

func HasRelation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, kind, err := relationTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		itemID := chi.URLParam(r, "itemID")
		writeJSON(w, http.StatusOK, relationStatus{
			Relation: kind,
			ItemID:   itemID,
			Active:   c.HasRelation(user, kind, itemID),
		})
	}
}

func AddRelation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, kind, err := relationTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		itemID := chi.URLParam(r, "itemID")
		if err := c.AddRelation(user, kind, itemID); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, relationStatus{Relation: kind, ItemID: itemID, Active: true})
	}
}

func RemoveRelation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, kind, err := relationTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		itemID := chi.URLParam(r, "itemID")
		if err := c.RemoveRelation(user, kind, itemID); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, relationStatus{Relation: kind, ItemID: itemID, Active: false})
	}
}

func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		user, err := userID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, relationsResponse{
			Kind:     c.Kind(),
			Relation: domain.RelationHistory,
			Items:    c.History(user),
		})
	}
}

type recordViewRequest struct {
	DurationSeconds float64 `json:"durationSeconds"`
	ReadTimeSeconds float64 `json:"readTimeSeconds"`
}

// RecordView upserts a history entry. A read time marks an article read;
// the body is optional.
func RecordView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		user, err := userID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		var req recordViewRequest
		if r.ContentLength != 0 {
			if err := decode(r, &req); err != nil {
				writeError(w, r, d, err)
				return
			}
		}

		itemID := chi.URLParam(r, "itemID")
		if req.ReadTimeSeconds > 0 {
			var readTime time.Duration
			if readTime, err = seconds("readTimeSeconds", req.ReadTimeSeconds); err == nil {
				err = c.RecordRead(user, itemID, readTime)
			}
		} else {
			var duration time.Duration
			if duration, err = seconds("durationSeconds", req.DurationSeconds); err == nil {
				err = c.RecordView(user, itemID, duration)
			}
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, relationStatus{Relation: domain.RelationHistory, ItemID: itemID, Active: true})
	}
}

// maxSeconds bounds durations and positions sent in seconds.
const maxSeconds = 24 * 60 * 60

// seconds converts a body field in seconds, rejecting values outside
// [0, maxSeconds].
func seconds(field string, s float64) (time.Duration, error) {
	if s < 0 || s > maxSeconds {
		return 0, fmt.Errorf("%w: %s must be between 0 and %d", domain.ErrInvalidInput, field, maxSeconds)
	}
	return time.Duration(s * float64(time.Second)), nil
}
