package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/index"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/store"
)

// SyncRetry bounds the retries of one projection read.
type SyncRetry struct {
	Attempts uint64        // retries after the first read
	Initial  time.Duration // first wait, doubled on each retry
	MaxWait  time.Duration // cap of a single wait
}

// DefaultSyncRetry returns the stock retry policy.
func DefaultSyncRetry() SyncRetry {
	return SyncRetry{Attempts: 3, Initial: 500 * time.Millisecond, MaxWait: 5 * time.Second}
}

// ProjectionSyncer restores persisted projections into the registry on
// startup
type ProjectionSyncer struct {
	store    ProjectionStore
	registry *index.Registry
	logger   logger.Logger
	retry    SyncRetry
}

// NewProjectionSyncer creates a new projection syncer
func NewProjectionSyncer(
	store ProjectionStore,
	registry *index.Registry,
	log logger.Logger,
	opts SyncRetry,
) *ProjectionSyncer {
	return &ProjectionSyncer{
		store:    store,
		registry: registry,
		logger:   log,
		retry:    opts,
	}
}

func (ps *ProjectionSyncer) backoff() retry.Backoff {
	initial := ps.retry.Initial
	if initial <= 0 {
		initial = DefaultSyncRetry().Initial
	}
	b := retry.NewExponential(initial)
	b = retry.WithJitterPercent(10, b)
	if ps.retry.MaxWait > 0 {
		b = retry.WithCappedDuration(ps.retry.MaxWait, b)
	}
	return retry.WithMaxRetries(ps.retry.Attempts, b)
}

// Sync loads the projection of every kind. A missing or corrupt
// projection leaves that collection at its defaults and a corrupt one is
// deleted. A kind whose projection cannot be read after the retries is
// reported in the returned error; the other kinds are still restored.
// Callers must not persist a kind that failed, or its stored state
// would be overwritten with defaults.
func (ps *ProjectionSyncer) Sync(ctx context.Context) error {
	ps.logger.Info("restoring projections from redis")

	var errs []error
	restored := 0
	ps.registry.Each(func(c *store.Collection) {
		data, err := ps.load(ctx, c.Kind())
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s projection: %w", c.Kind(), err))
			return
		}
		if data == nil {
			ps.logger.Debug("no projection stored", logger.String("kind", string(c.Kind())))
			return
		}

		if err := c.Restore(data); err != nil {
			ps.logger.Warn("discarding unreadable projection, starting from defaults",
				logger.String("kind", string(c.Kind())),
				logger.Error(err))
			if err := ps.store.DeleteProjection(ctx, c.Kind()); err != nil {
				ps.logger.Warn("failed to delete unreadable projection",
					logger.String("kind", string(c.Kind())),
					logger.Error(err))
			}
			return
		}
		restored++
	})
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	ps.logger.Info("restored projections from redis",
		logger.Int("count", restored))
	return nil
}

// load reads one projection, retrying backend failures.
func (ps *ProjectionSyncer) load(ctx context.Context, kind domain.Kind) ([]byte, error) {
	var data []byte
	attempt := 0

	err := retry.Do(ctx, ps.backoff(), func(ctx context.Context) error {
		attempt++

		var err error
		data, err = ps.store.LoadProjection(ctx, kind)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		}

		ps.logger.Warn("projection read failed, retrying",
			logger.String("kind", string(kind)),
			logger.Int("attempt", attempt),
			logger.Error(err))
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
