package player

import (
	"sync"

	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

// Sessions holds one Player per user, created on first use.
type Sessions struct {
	mu       sync.Mutex
	players  map[string]*Player // userID -> player
	recorder ViewRecorder
	log      logger.Logger
}

// NewSessions creates an empty session table. Every player reports its
// listens to recorder.
func NewSessions(recorder ViewRecorder, log logger.Logger) *Sessions {
	return &Sessions{
		players:  make(map[string]*Player),
		recorder: recorder,
		log:      log,
	}
}

// Get returns the player of userID.
func (s *Sessions) Get(userID string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[userID]
	if !ok {
		p = New(userID, s.recorder, s.log)
		s.players[userID] = p
	}
	return p
}

// Len returns the number of players.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.players)
}
