package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/mw"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		MaxEntries:        10000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	})

	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), limit).Route("/api/{kind}", func(r chi.Router) {
		// catalog
		r.Get("/items", handlers.Items(d))
		r.Get("/items/{id}", handlers.Item(d))
		r.Get("/popular", handlers.Popular(d))
		r.Get("/recommended", handlers.Recommended(d))
		r.Get("/search", handlers.Search(d))

		// relations
		r.Get("/relations/{relation}", handlers.Relations(d))
		r.Get("/relations/{relation}/{itemID}", handlers.HasRelation(d))
		r.Post("/relations/{relation}/{itemID}", handlers.AddRelation(d))
		r.Delete("/relations/{relation}/{itemID}", handlers.RemoveRelation(d))
		r.Get("/history", handlers.History(d))
		r.Post("/history/{itemID}", handlers.RecordView(d))

		// bookings
		r.Get("/bookings", handlers.Bookings(d))
		r.Post("/bookings", handlers.CreateBooking(d))
		r.Get("/bookings/{id}", handlers.Booking(d))
		r.Patch("/bookings/{id}", handlers.UpdateBooking(d))
		r.Post("/bookings/{id}/cancel", handlers.CancelBooking(d))
		r.Post("/bookings/{id}/join", handlers.JoinSession(d))

		// requests, reviews, preferences
		r.Get("/requests", handlers.Requests(d))
		r.Post("/requests", handlers.CreateRequest(d))
		r.Get("/items/{id}/reviews", handlers.Reviews(d))
		r.Post("/items/{id}/reviews", handlers.AddReview(d))
		r.Get("/preferences", handlers.Preferences(d))
		r.Patch("/preferences", handlers.UpdatePreferences(d))

		registerPlayer(r, d)
	})
}
