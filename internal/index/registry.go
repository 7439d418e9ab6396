package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/store"
)

// Registry holds one Collection per kind for the lifetime of the process.
// Collections are created once; only the reload bookkeeping changes.
type Registry struct {
	mu          sync.RWMutex
	kinds       []domain.Kind
	collections map[domain.Kind]*store.Collection // kind -> collection
	lastReload  map[domain.Kind]time.Time         // kind -> last successful catalog load
}

// Status summarizes one collection for /infra.
type Status struct {
	Kind          domain.Kind `json:"kind"`
	Items         int         `json:"items"`
	Loading       bool        `json:"loading"`
	Error         string      `json:"error,omitempty"`
	LastReload    time.Time   `json:"lastReload,omitempty"`
	SearchLoading bool        `json:"searchLoading"`
}

// NewRegistry creates a collection for each kind, all sharing opts.
// With no kinds, every known kind is registered.
func NewRegistry(opts store.Options, kinds ...domain.Kind) *Registry {
	if len(kinds) == 0 {
		kinds = domain.Kinds()
	}

	r := &Registry{
		collections: make(map[domain.Kind]*store.Collection, len(kinds)),
		lastReload:  make(map[domain.Kind]time.Time, len(kinds)),
	}
	for _, kind := range kinds {
		if _, dup := r.collections[kind]; dup {
			continue
		}
		r.kinds = append(r.kinds, kind)
		r.collections[kind] = store.New(kind, opts)
	}
	return r
}

// Collection returns the collection of kind.
func (r *Registry) Collection(kind domain.Kind) (*store.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[kind]
	if !ok {
		return nil, domain.NotFound("store", string(kind))
	}
	return c, nil
}

// Lookup parses a raw kind name (as found in a URL) and returns its
// collection.
func (r *Registry) Lookup(raw string) (*store.Collection, error) {
	kind, err := domain.ParseKind(raw)
	if err != nil {
		return nil, domain.NotFound("store", raw)
	}
	return r.Collection(kind)
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []domain.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.Kind(nil), r.kinds...)
}

// Each calls fn for every collection in registration order.
func (r *Registry) Each(fn func(*store.Collection)) {
	for _, kind := range r.Kinds() {
		c, err := r.Collection(kind)
		if err == nil {
			fn(c)
		}
	}
}

// MarkReloaded records a successful catalog load of kind.
func (r *Registry) MarkReloaded(kind domain.Kind, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastReload[kind] = at
}

// LastReload returns the time of the last successful catalog load of
// kind, zero if none.
func (r *Registry) LastReload(kind domain.Kind) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastReload[kind]
}

// Ready reports whether every collection has loaded a catalog once.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, kind := range r.kinds {
		if r.lastReload[kind].IsZero() {
			return false
		}
	}
	return len(r.kinds) > 0
}

// Statuses returns one Status per collection.
func (r *Registry) Statuses() []Status {
	out := make([]Status, 0, len(r.Kinds()))
	r.Each(func(c *store.Collection) {
		st := c.State()
		out = append(out, Status{
			Kind:          c.Kind(),
			Items:         st.Items,
			Loading:       st.Loading,
			Error:         st.Err,
			LastReload:    r.LastReload(c.Kind()),
			SearchLoading: st.Search.Loading,
		})
	})
	return out
}

// Close cancels in-flight work of every collection.
func (r *Registry) Close() {
	r.Each(func(c *store.Collection) { c.Close() })
}
