package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/store"
)

type bookingsResponse struct {
	Kind     domain.Kind       `json:"kind"`
	Bookings []*domain.Booking `json:"bookings"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// userTarget resolves the collection and the caller.
func userTarget(d deps.Deps, r *http.Request) (*store.Collection, string, error) {
	c, err := collection(d, r)
	if err != nil {
		return nil, "", err
	}
	user, err := userID(r)
	if err != nil {
		return nil, "", err
	}
	return c, user, nil
}

func Bookings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, bookingsResponse{Kind: c.Kind(), Bookings: c.Bookings(user)})
	}
}

func Booking(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := collection(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		b, err := c.Booking(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// CreateBooking books an item for the caller. The X-User-ID header wins
// over any userId in the body.
func CreateBooking(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var in domain.BookingInput
		if err := decode(r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		in.UserID = user

		b, err := c.CreateBooking(in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func UpdateBooking(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var patch domain.BookingPatch
		if err := decode(r, &patch); err != nil {
			writeError(w, r, d, err)
			return
		}
		if patch.Actor == "" {
			patch.Actor = user
		}

		b, err := c.UpdateBooking(chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CancelBooking(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var req cancelRequest
		if r.ContentLength != 0 {
			if err := decode(r, &req); err != nil {
				writeError(w, r, d, err)
				return
			}
		}

		b, err := c.CancelBooking(chi.URLParam(r, "id"), req.Reason, user)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func JoinSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, user, err := userTarget(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		b, err := c.JoinSession(chi.URLParam(r, "id"), user)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
