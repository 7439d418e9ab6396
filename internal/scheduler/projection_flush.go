package scheduler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/index"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/metrics"
)

const (
	// DefaultFlushInterval is how often dirty projections are retried
	// when no change arrives
	DefaultFlushInterval = 30 * time.Second
	// finalFlushTimeout bounds the flush run by Stop
	finalFlushTimeout = 5 * time.Second
)

// ProjectionFlusher persists collection projections after they change.
// Notifications are coalesced: any number of changes between two
// flushes costs one write per kind.
type ProjectionFlusher struct {
	store    ProjectionStore
	registry *index.Registry
	logger   logger.Logger
	metrics  *metrics.Metrics
	interval time.Duration

	mu    sync.Mutex
	dirty map[domain.Kind]bool

	notify  chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// NewProjectionFlusher creates a new projection flusher
func NewProjectionFlusher(
	store ProjectionStore,
	registry *index.Registry,
	log logger.Logger,
	m *metrics.Metrics,
	interval time.Duration,
) *ProjectionFlusher {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	return &ProjectionFlusher{
		store:    store,
		registry: registry,
		logger:   log,
		metrics:  m,
		interval: interval,
		dirty:    make(map[domain.Kind]bool),
		notify:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Notify marks kind dirty. It never blocks, so it is safe to use as a
// collection change hook.
func (pf *ProjectionFlusher) Notify(kind domain.Kind) {
	pf.mu.Lock()
	pf.dirty[kind] = true
	pf.mu.Unlock()

	select {
	case pf.notify <- struct{}{}:
	default:
	}
}

// Start runs the flush loop until Stop or ctx is done.
func (pf *ProjectionFlusher) Start(ctx context.Context) error {
	if !pf.started.CompareAndSwap(false, true) {
		return nil
	}

	ticker := time.NewTicker(pf.interval)
	go func() {
		defer close(pf.done)
		defer ticker.Stop()
		for {
			select {
			case <-pf.notify:
				pf.flushLogged(ctx)
			case <-ticker.C:
				pf.flushLogged(ctx)
			case <-pf.stopCh:
				pf.finalFlush()
				return
			case <-ctx.Done():
				pf.finalFlush()
				return
			}
		}
	}()

	return nil
}

// Stop flushes pending changes and stops the loop. It waits for the
// final flush to finish.
func (pf *ProjectionFlusher) Stop() {
	pf.once.Do(func() { close(pf.stopCh) })
	if pf.started.Load() {
		<-pf.done
	}
}

// finalFlush writes what is left on a fresh context, since the loop's
// own context may already be done.
func (pf *ProjectionFlusher) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()
	pf.flushLogged(ctx)
}

func (pf *ProjectionFlusher) flushLogged(ctx context.Context) {
	if err := pf.Flush(ctx); err != nil {
		pf.logger.Warn("failed to persist projections, will retry",
			logger.Error(err))
	}
}

// Flush writes every dirty projection in one batch. On failure the kinds
// stay dirty for the next attempt.
func (pf *ProjectionFlusher) Flush(ctx context.Context) error {
	kinds := pf.takeDirty()
	if len(kinds) == 0 {
		return nil
	}

	batch := make(map[domain.Kind][]byte, len(kinds))
	for _, kind := range kinds {
		c, err := pf.registry.Collection(kind)
		if err != nil {
			continue
		}
		data, err := c.Snapshot()
		if err != nil {
			pf.logger.Error("failed to snapshot projection",
				logger.String("kind", string(kind)),
				logger.Error(err))
			pf.metrics.Flush(kind, err)
			continue
		}
		batch[kind] = data
	}

	err := pf.store.SaveMany(ctx, batch)
	for kind := range batch {
		pf.metrics.Flush(kind, err)
	}
	if err != nil {
		pf.markDirty(kinds)
		return err
	}

	pf.logger.Debug("projections persisted",
		logger.Int("count", len(batch)))
	return nil
}

// Pending returns the kinds waiting to be flushed, sorted.
func (pf *ProjectionFlusher) Pending() []domain.Kind {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	kinds := make([]domain.Kind, 0, len(pf.dirty))
	for kind := range pf.dirty {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func (pf *ProjectionFlusher) takeDirty() []domain.Kind {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	kinds := make([]domain.Kind, 0, len(pf.dirty))
	for kind := range pf.dirty {
		kinds = append(kinds, kind)
	}
	pf.dirty = make(map[domain.Kind]bool)
	return kinds
}

func (pf *ProjectionFlusher) markDirty(kinds []domain.Kind) {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	for _, kind := range kinds {
		pf.dirty[kind] = true
	}
}
