// Package player keeps the playback queue of the music store. It has no
// clock of its own: the playback engine reports position changes through
// OnProgress and the player reacts, so position never drifts from what
// is actually heard.
package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

// RestartThreshold is how far into a track Previous restarts it instead
// of going back one track.
const RestartThreshold = 3 * time.Second

// RepeatMode controls what happens when a track ends.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatOne RepeatMode = "one"
	RepeatAll RepeatMode = "all"
)

// ParseRepeatMode validates a raw repeat mode.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch m := RepeatMode(s); m {
	case RepeatOff, RepeatOne, RepeatAll:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown repeat mode %q", domain.ErrInvalidInput, s)
}

// Status is the playback status.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// ViewRecorder receives finished listens. *store.Collection implements it.
type ViewRecorder interface {
	RecordView(userID, itemID string, duration time.Duration) error
}

// State is a snapshot of the player.
type State struct {
	Status   Status        `json:"status"`
	Repeat   RepeatMode    `json:"repeat"`
	Queue    []string      `json:"queue"`
	Index    int           `json:"index"`
	Current  *domain.Item  `json:"current,omitempty"`
	Position time.Duration `json:"position"`
}

type listen struct {
	itemID   string
	duration time.Duration
}

// Player is the queue and position of one user.
type Player struct {
	mu       sync.Mutex
	userID   string
	recorder ViewRecorder
	log      logger.Logger

	queue    []*domain.Item
	index    int
	position time.Duration
	status   Status
	repeat   RepeatMode
}

// New creates an idle player. recorder may be nil.
func New(userID string, recorder ViewRecorder, log logger.Logger) *Player {
	if log == nil {
		log = logger.NewNop()
	}
	return &Player{
		userID:   userID,
		recorder: recorder,
		log:      log,
		status:   StatusIdle,
		repeat:   RepeatOff,
	}
}

// Load replaces the queue and stops playback at the first track.
func (p *Player) Load(queue []*domain.Item) error {
	if len(queue) == 0 {
		return fmt.Errorf("%w: empty queue", domain.ErrInvalidInput)
	}
	tracks := make([]*domain.Item, len(queue))
	for i, it := range queue {
		if it == nil {
			return fmt.Errorf("%w: nil track at %d", domain.ErrInvalidInput, i)
		}
		tracks[i] = it.Clone()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue = tracks
	p.index = 0
	p.position = 0
	p.status = StatusIdle
	return nil
}

// Play starts trackID from the beginning. The track must be queued.
func (p *Player) Play(trackID string) error {
	p.mu.Lock()
	idx := -1
	for i, t := range p.queue {
		if t.ID == trackID {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return domain.NotFound("track", trackID)
	}

	done := p.leaveLocked()
	p.index = idx
	p.position = 0
	p.status = StatusPlaying
	p.mu.Unlock()

	p.record(done)
	return nil
}

// Pause pauses a playing track.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusPlaying {
		return fmt.Errorf("%w: cannot pause while %s", domain.ErrInvalidTransition, p.status)
	}
	p.status = StatusPaused
	return nil
}

// Resume continues a paused track.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusPaused {
		return fmt.Errorf("%w: cannot resume while %s", domain.ErrInvalidTransition, p.status)
	}
	p.status = StatusPlaying
	return nil
}

// Seek moves within the current track.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.currentLocked()
	if cur == nil {
		return fmt.Errorf("%w: nothing loaded", domain.ErrInvalidTransition)
	}
	if pos < 0 || (cur.Duration > 0 && pos > cur.Duration) {
		return fmt.Errorf("%w: position %v outside 0..%v", domain.ErrInvalidInput, pos, cur.Duration)
	}
	p.position = pos
	return nil
}

// OnProgress is called by the playback engine with the current position.
// Reaching the track duration finishes the track and moves on according
// to the repeat mode. Progress while not playing is ignored.
func (p *Player) OnProgress(pos time.Duration) error {
	if pos < 0 {
		return fmt.Errorf("%w: negative position", domain.ErrInvalidInput)
	}

	p.mu.Lock()
	if p.status != StatusPlaying {
		p.mu.Unlock()
		return nil
	}
	cur := p.currentLocked()
	p.position = pos
	if cur.Duration <= 0 || pos < cur.Duration {
		p.mu.Unlock()
		return nil
	}

	done := &listen{itemID: cur.ID, duration: cur.Duration}
	p.finishLocked()
	p.mu.Unlock()

	p.record(done)
	return nil
}

// Next skips to the next track. Repeat one does not hold a manual skip;
// repeat all wraps around; otherwise skipping past the end ends playback.
func (p *Player) Next() error {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: nothing loaded", domain.ErrInvalidTransition)
	}

	done := p.leaveLocked()
	p.advanceLocked()
	p.mu.Unlock()

	p.record(done)
	return nil
}

// Previous restarts the current track when past RestartThreshold, and
// otherwise goes back one track (wrapping with repeat all).
func (p *Player) Previous() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return fmt.Errorf("%w: nothing loaded", domain.ErrInvalidTransition)
	}

	switch {
	case p.position > RestartThreshold:
	case p.index > 0:
		p.index--
	case p.repeat == RepeatAll:
		p.index = len(p.queue) - 1
	}
	p.position = 0
	if p.status == StatusEnded || p.status == StatusIdle {
		p.status = StatusPlaying
	}
	return nil
}

// SetRepeat changes the repeat mode.
func (p *Player) SetRepeat(mode RepeatMode) error {
	if _, err := ParseRepeatMode(string(mode)); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.repeat = mode
	return nil
}

// State returns a snapshot of the player.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		Status:   p.status,
		Repeat:   p.repeat,
		Queue:    make([]string, len(p.queue)),
		Index:    p.index,
		Position: p.position,
	}
	for i, t := range p.queue {
		st.Queue[i] = t.ID
	}
	if cur := p.currentLocked(); cur != nil {
		st.Current = cur.Clone()
	}
	return st
}

func (p *Player) currentLocked() *domain.Item {
	if p.index < 0 || p.index >= len(p.queue) {
		return nil
	}
	return p.queue[p.index]
}

// leaveLocked returns the partial listen of the current track, if any.
func (p *Player) leaveLocked() *listen {
	cur := p.currentLocked()
	if cur == nil || p.position <= 0 || p.status == StatusEnded {
		return nil
	}
	return &listen{itemID: cur.ID, duration: p.position}
}

// finishLocked handles the natural end of the current track.
func (p *Player) finishLocked() {
	switch {
	case p.repeat == RepeatOne:
		p.position = 0
	case p.index < len(p.queue)-1 || p.repeat == RepeatAll:
		p.advanceLocked()
	default:
		p.status = StatusEnded
	}
}

func (p *Player) advanceLocked() {
	p.position = 0
	switch {
	case p.index < len(p.queue)-1:
		p.index++
		p.status = StatusPlaying
	case p.repeat == RepeatAll:
		p.index = 0
		p.status = StatusPlaying
	default:
		p.status = StatusEnded
	}
}

func (p *Player) record(l *listen) {
	if l == nil || p.recorder == nil {
		return
	}
	if err := p.recorder.RecordView(p.userID, l.itemID, l.duration); err != nil {
		p.log.Warn("failed to record listen",
			logger.String("user", p.userID),
			logger.String("track", l.itemID),
			logger.Error(err))
	}
}
