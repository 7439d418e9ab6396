package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/index"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/store"
)

// CatalogReloader handles periodic reloading of the seed catalogs
type CatalogReloader struct {
	source        CatalogLoader
	registry      *index.Registry
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	source CatalogLoader,
	registry *index.Registry,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		source:        source,
		registry:      registry,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalogs once, then keeps them fresh on every tick and
// manual trigger until Stop or ctx is done.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalogs",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalogs",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload loads the seed and refreshes every collection. When the seed
// cannot be loaded each collection keeps its catalog and records the
// error in its state.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.logger.Info("reloading catalogs")

	set, loadErr := cr.source.Load(ctx)
	var src store.CatalogSource = set
	if loadErr != nil {
		src = store.CatalogSourceFunc(func(context.Context, domain.Kind) (*domain.Catalog, error) {
			return nil, loadErr
		})
	}

	var errs []error
	cr.registry.Each(func(c *store.Collection) {
		if err := c.Refresh(ctx, src); err != nil {
			if loadErr == nil {
				errs = append(errs, err)
			}
			return
		}
		cr.registry.MarkReloaded(c.Kind(), cr.now())
	})

	if loadErr != nil {
		return fmt.Errorf("failed to load catalogs: %w", loadErr)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	cr.logger.Info("loaded catalogs",
		logger.Int("items", set.Count()))
	return nil
}
