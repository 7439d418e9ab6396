package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

// SearchState is the last published search.
type SearchState struct {
	Query     string         `json:"query"`
	Filters   domain.Filters `json:"filters"`
	Results   []*domain.Item `json:"results"`
	Loading   bool           `json:"loading"`
	Err       string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt,omitempty"`
}

type searchRun struct {
	seq    uint64
	cancel context.CancelFunc
}

// Search filters and sorts the catalog. The latest call wins: starting a
// search cancels the one in flight, which then returns ErrSuperseded
// without touching State().Search.
func (c *Collection) Search(ctx context.Context, query string, f domain.Filters) ([]*domain.Item, error) {
	results, err := c.search(ctx, query, f)
	c.opts.Metrics.Search(c.kind, err)
	return results, err
}

func (c *Collection) search(ctx context.Context, query string, f domain.Filters) ([]*domain.Item, error) {
	c.mu.Lock()
	if c.inflight.cancel != nil {
		c.inflight.cancel()
	}
	c.inflight.seq++
	seq := c.inflight.seq
	runCtx, cancel := context.WithCancel(ctx)
	c.inflight.cancel = cancel

	c.state.Search.Query = query
	c.state.Search.Filters = f
	c.state.Search.Loading = true

	if err := f.Validate(); err != nil {
		c.finishSearchLocked(seq, nil, err)
		c.mu.Unlock()
		return nil, err
	}
	items := c.snapshotItemsLocked()
	weights := c.opts.Weights
	latency := c.opts.SearchLatency
	c.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-timer.C:
		case <-runCtx.Done():
			timer.Stop()
		}
	}

	var results []*domain.Item
	err := runCtx.Err()
	if err == nil {
		results = domain.ApplySearch(items, query, f, weights)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.inflight.seq {
		return nil, fmt.Errorf("search %q: %w", query, domain.ErrSuperseded)
	}
	if err != nil {
		err = fmt.Errorf("search %q: %w", query, err)
	}
	c.finishSearchLocked(seq, results, err)
	if err != nil {
		c.opts.Logger.Warn("search failed",
			logger.String("kind", string(c.kind)),
			logger.String("query", query),
			logger.Error(err))
		return nil, err
	}
	return cloneItems(results), nil
}

// finishSearchLocked publishes the outcome of the current search.
func (c *Collection) finishSearchLocked(seq uint64, results []*domain.Item, err error) {
	if seq != c.inflight.seq {
		return
	}
	if c.inflight.cancel != nil {
		c.inflight.cancel()
		c.inflight.cancel = nil
	}

	c.state.Search.Loading = false
	c.state.Search.UpdatedAt = c.opts.Now()
	if err != nil {
		c.state.Search.Err = err.Error()
		c.state.Search.Results = nil
		return
	}
	c.state.Search.Err = ""
	if results == nil {
		results = []*domain.Item{}
	}
	c.state.Search.Results = results
}
