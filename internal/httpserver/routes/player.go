package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/handlers"
)

// registerPlayer mounts the player under /api/{kind}. Only music answers.
func registerPlayer(r chi.Router, d deps.Deps) {
	r.Route("/player", func(r chi.Router) {
		r.Get("/", handlers.PlayerState(d))
		r.Post("/load", handlers.PlayerLoad(d))
		r.Post("/play/{id}", handlers.PlayerPlay(d))
		r.Post("/pause", handlers.PlayerPause(d))
		r.Post("/resume", handlers.PlayerResume(d))
		r.Post("/seek", handlers.PlayerSeek(d))
		r.Post("/progress", handlers.PlayerProgress(d))
		r.Post("/next", handlers.PlayerNext(d))
		r.Post("/previous", handlers.PlayerPrevious(d))
		r.Post("/repeat", handlers.PlayerRepeat(d))
	})
}
