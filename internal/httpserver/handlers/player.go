package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/player"
)

type loadRequest struct {
	TrackIDs []string `json:"trackIds"`
}

type positionRequest struct {
	PositionSeconds float64 `json:"positionSeconds"`
}

type repeatRequest struct {
	Mode string `json:"mode"`
}

// playerFor returns the player of the caller. Only the music store has
// one.
func playerFor(d deps.Deps, r *http.Request) (*player.Player, error) {
	if kind := chi.URLParam(r, "kind"); kind != string(domain.KindMusic) {
		return nil, domain.NotFound("player", kind)
	}
	user, err := userID(r)
	if err != nil {
		return nil, err
	}
	return d.Players.Get(user), nil
}

// playerAction adapts a player operation to a handler answering with the
// resulting state.
func playerAction(d deps.Deps, op func(p *player.Player, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := playerFor(d, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if op != nil {
			if err := op(p, r); err != nil {
				writeError(w, r, d, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, p.State())
	}
}

func PlayerState(d deps.Deps) http.HandlerFunc {
	return playerAction(d, nil)
}

// PlayerLoad replaces the queue with tracks of the music catalog.
func PlayerLoad(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, r *http.Request) error {
		var req loadRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		music, err := d.Registry.Collection(domain.KindMusic)
		if err != nil {
			return err
		}
		queue := make([]*domain.Item, 0, len(req.TrackIDs))
		for _, id := range req.TrackIDs {
			v, err := music.Item(id)
			if err != nil {
				return err
			}
			queue = append(queue, v.Item)
		}
		return p.Load(queue)
	})
}

func PlayerPlay(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, r *http.Request) error {
		return p.Play(chi.URLParam(r, "id"))
	})
}

func PlayerPause(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, _ *http.Request) error { return p.Pause() })
}

func PlayerResume(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, _ *http.Request) error { return p.Resume() })
}

func PlayerNext(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, _ *http.Request) error { return p.Next() })
}

func PlayerPrevious(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, _ *http.Request) error { return p.Previous() })
}

func PlayerSeek(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, r *http.Request) error {
		var req positionRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		pos, err := seconds("positionSeconds", req.PositionSeconds)
		if err != nil {
			return err
		}
		return p.Seek(pos)
	})
}

// PlayerProgress is called by the playback engine as the track plays.
func PlayerProgress(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, r *http.Request) error {
		var req positionRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		pos, err := seconds("positionSeconds", req.PositionSeconds)
		if err != nil {
			return err
		}
		return p.OnProgress(pos)
	})
}

func PlayerRepeat(d deps.Deps) http.HandlerFunc {
	return playerAction(d, func(p *player.Player, r *http.Request) error {
		var req repeatRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		mode, err := player.ParseRepeatMode(req.Mode)
		if err != nil {
			return err
		}
		return p.SetRepeat(mode)
	})
}
