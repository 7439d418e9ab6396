package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

// Set is a loaded seed: one catalog per kind. It satisfies
// store.CatalogSource; kinds absent from the seed get an empty catalog.
type Set map[domain.Kind]*domain.Catalog

// Catalog returns the catalog of kind.
func (s Set) Catalog(_ context.Context, kind domain.Kind) (*domain.Catalog, error) {
	if cat, ok := s[kind]; ok {
		return cat, nil
	}
	return &domain.Catalog{Kind: kind}, nil
}

// Count returns the number of items across every kind.
func (s Set) Count() int {
	n := 0
	for _, cat := range s {
		n += len(cat.Items)
	}
	return n
}

type seedLoader interface {
	Load(ctx context.Context) (*SeedFile, error)
}

// RetryOptions bounds the retries of one load.
type RetryOptions struct {
	Attempts uint64        // retries after the first attempt
	Initial  time.Duration // first wait, doubled on each retry
	MaxWait  time.Duration // cap of a single wait
}

// DefaultRetryOptions returns the stock retry policy.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{Attempts: 4, Initial: 200 * time.Millisecond, MaxWait: 5 * time.Second}
}

// Source loads and validates the seed file. Read failures are retried
// with capped exponential backoff; an invalid seed fails at once.
type Source struct {
	loader seedLoader
	mapper *Mapper
	retry  RetryOptions
	log    logger.Logger
}

// NewSource creates a source reading path.
func NewSource(path string, opts RetryOptions, log logger.Logger) *Source {
	return &Source{
		loader: NewLoader(path),
		mapper: NewMapper(),
		retry:  opts,
		log:    log,
	}
}

func (s *Source) backoff() retry.Backoff {
	initial := s.retry.Initial
	if initial <= 0 {
		initial = DefaultRetryOptions().Initial
	}
	b := retry.NewExponential(initial)
	b = retry.WithJitterPercent(10, b)
	if s.retry.MaxWait > 0 {
		b = retry.WithCappedDuration(s.retry.MaxWait, b)
	}
	return retry.WithMaxRetries(s.retry.Attempts, b)
}

// Load reads the seed once, retrying transient failures.
func (s *Source) Load(ctx context.Context) (Set, error) {
	var set Set
	attempt := 0

	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++

		seed, err := s.loader.Load(ctx)
		if err == nil {
			set, err = s.mapper.MapCatalogs(seed)
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrInvalidSeed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		}

		s.log.Warn("catalog load failed, retrying",
			logger.Int("attempt", attempt),
			logger.Error(err))
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}

	if attempt > 1 {
		s.log.Info("catalog loaded after retry", logger.Int("attempts", attempt))
	}
	return set, nil
}
