// Package store holds the per-kind client state: the seed catalog, user
// relations, bookings, requests, reviews and preferences, plus the
// derived queries over them.
//
// A Collection serializes every operation behind one mutex, so each
// mutation applies fully or not at all as seen by any other caller.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/metrics"
)

// DefaultHistoryLimit is the number of history entries kept per user.
const DefaultHistoryLimit = 100

// Options configures a Collection. Zero values get defaults.
type Options struct {
	Now           func() time.Time
	NewID         func() string
	Weights       domain.Weights
	HistoryLimit  int
	SearchLatency time.Duration // artificial delay before a search publishes
	Logger        logger.Logger
	Metrics       *metrics.Metrics

	// OnChange is called after every mutation that changed persisted
	// state, outside the collection lock.
	OnChange func(kind domain.Kind)
}

// CatalogSource supplies the seed catalog of a kind.
type CatalogSource interface {
	Catalog(ctx context.Context, kind domain.Kind) (*domain.Catalog, error)
}

// CatalogSourceFunc adapts a function to CatalogSource.
type CatalogSourceFunc func(ctx context.Context, kind domain.Kind) (*domain.Catalog, error)

// Catalog calls f.
func (f CatalogSourceFunc) Catalog(ctx context.Context, kind domain.Kind) (*domain.Catalog, error) {
	return f(ctx, kind)
}

// State is the inspectable status of a collection.
type State struct {
	Loading     bool        `json:"loading"`
	Err         string      `json:"error,omitempty"`
	LastRefresh time.Time   `json:"lastRefresh,omitempty"`
	Items       int         `json:"items"`
	Search      SearchState `json:"search"`
}

// Collection is the state container of one kind.
type Collection struct {
	mu   sync.Mutex
	kind domain.Kind
	opts Options

	// catalog (seed, replaced on reload)
	categories []*domain.Category
	catIndex   map[string]*domain.Category
	items      []*domain.Item
	itemIndex  map[string]*domain.Item
	seeded     map[string]ItemUsage // seed counters per item

	// persisted projection
	relations map[string]map[domain.RelationKind][]*domain.Relation // user -> kind -> entries
	bookings  []*domain.Booking
	requests  []*domain.ServiceRequest
	reviews   []*domain.Review
	prefs     map[string]domain.Preferences
	usage     map[string]*ItemUsage // counter deltas over the seed, per item

	state    State
	inflight searchRun
}

// New constructs an empty collection for kind.
func New(kind domain.Kind, opts Options) *Collection {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Weights == (domain.Weights{}) {
		opts.Weights = domain.DefaultWeights()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	c := &Collection{
		kind:      kind,
		opts:      opts,
		catIndex:  make(map[string]*domain.Category),
		itemIndex: make(map[string]*domain.Item),
		seeded:    make(map[string]ItemUsage),
	}
	c.resetLocked()
	return c
}

// Kind returns the kind this collection serves.
func (c *Collection) Kind() domain.Kind { return c.kind }

// resetLocked clears the persisted projection back to defaults.
func (c *Collection) resetLocked() {
	c.relations = make(map[string]map[domain.RelationKind][]*domain.Relation)
	c.bookings = nil
	c.requests = nil
	c.reviews = nil
	c.prefs = make(map[string]domain.Preferences)
	c.usage = make(map[string]*ItemUsage)
}

// mutate runs fn under the lock. fn reports whether persisted state
// changed; it must not modify anything before it has validated.
func (c *Collection) mutate(op string, fn func() (bool, error)) error {
	c.mu.Lock()
	changed, err := fn()
	c.mu.Unlock()

	c.opts.Metrics.StoreOp(c.kind, op, err)
	if err != nil {
		c.opts.Logger.Debug("store operation rejected",
			logger.String("kind", string(c.kind)),
			logger.String("op", op),
			logger.Error(err))
		return err
	}
	if changed && c.opts.OnChange != nil {
		c.opts.OnChange(c.kind)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────────

// ReplaceCatalog swaps the seed catalog. View and like counters
// accumulated since the seed are re-applied on top of the new seed values.
func (c *Collection) ReplaceCatalog(cat *domain.Catalog) error {
	if cat == nil {
		return fmt.Errorf("%w: nil catalog", domain.ErrInvalidInput)
	}
	if cat.Kind != "" && cat.Kind != c.kind {
		return fmt.Errorf("%w: catalog kind %s for %s store", domain.ErrInvalidInput, cat.Kind, c.kind)
	}

	categories := make([]*domain.Category, 0, len(cat.Categories))
	catIndex := make(map[string]*domain.Category, len(cat.Categories))
	for _, category := range cat.Categories {
		cp := *category
		categories = append(categories, &cp)
		catIndex[cp.ID] = &cp
	}

	c.mu.Lock()
	items := make([]*domain.Item, 0, len(cat.Items))
	itemIndex := make(map[string]*domain.Item, len(cat.Items))
	seeded := make(map[string]ItemUsage, len(cat.Items))
	for _, it := range cat.Items {
		if _, dup := itemIndex[it.ID]; dup {
			c.mu.Unlock()
			return fmt.Errorf("%w: duplicate item id %q", domain.ErrInvalidInput, it.ID)
		}
		cp := it.Clone()
		cp.Kind = c.kind
		seeded[cp.ID] = ItemUsage{Views: cp.ViewCount, Likes: cp.LikeCount}
		items = append(items, cp)
		itemIndex[cp.ID] = cp
	}

	c.categories = categories
	c.catIndex = catIndex
	c.items = items
	c.itemIndex = itemIndex
	c.seeded = seeded
	for _, it := range items {
		c.applyUsageLocked(it)
	}
	c.state.Items = len(items)
	c.state.LastRefresh = c.opts.Now()
	c.mu.Unlock()

	c.opts.Metrics.CatalogSize(c.kind, len(items))
	return nil
}

// Refresh reloads the catalog from src. A failure leaves the previous
// catalog in place and is recorded in State().Err.
func (c *Collection) Refresh(ctx context.Context, src CatalogSource) error {
	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	cat, err := src.Catalog(ctx, c.kind)
	if err == nil {
		err = c.ReplaceCatalog(cat)
	}

	c.mu.Lock()
	c.state.Loading = false
	if err != nil {
		c.state.Err = err.Error()
	} else {
		c.state.Err = ""
	}
	c.mu.Unlock()

	c.opts.Metrics.StoreOp(c.kind, "refresh", err)
	if err != nil {
		return fmt.Errorf("refresh %s catalog: %w", c.kind, err)
	}
	return nil
}

// Item returns the live item joined with its category.
func (c *Collection) Item(id string) (*domain.ItemView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.itemIndex[id]
	if !ok {
		return nil, domain.NotFound("item", id)
	}
	return c.viewLocked(it), nil
}

// Items returns every item in catalog order.
func (c *Collection) Items() []*domain.ItemView {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.ItemView, len(c.items))
	for i, it := range c.items {
		out[i] = c.viewLocked(it)
	}
	return out
}

// Categories returns the category list.
func (c *Collection) Categories() []*domain.Category {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.Category, len(c.categories))
	for i, cat := range c.categories {
		cp := *cat
		out[i] = &cp
	}
	return out
}

func (c *Collection) viewLocked(it *domain.Item) *domain.ItemView {
	v := &domain.ItemView{Item: it.Clone()}
	if cat, ok := c.catIndex[it.CategoryID]; ok {
		cp := *cat
		v.Category = &cp
	}
	return v
}

// snapshotItemsLocked clones the catalog for work done outside the lock.
func (c *Collection) snapshotItemsLocked() []*domain.Item {
	out := make([]*domain.Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

// State returns the loading/error status and the last search.
func (c *Collection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state
	st.Search.Results = cloneItems(st.Search.Results)
	return st
}

func cloneItems(items []*domain.Item) []*domain.Item {
	if items == nil {
		return nil
	}
	out := make([]*domain.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Close cancels any search in flight. The collection stays readable.
func (c *Collection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight.cancel != nil {
		c.inflight.cancel()
		c.inflight.cancel = nil
	}
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return nil
}
