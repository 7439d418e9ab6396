package index

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/store"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(store.Options{})
	if diff := cmp.Diff(domain.Kinds(), r.Kinds()); diff != "" {
		t.Errorf("NewRegistry() kinds mismatch (-want +got):\n%s", diff)
	}

	r = NewRegistry(store.Options{}, domain.KindMusic, domain.KindNews, domain.KindMusic)
	if diff := cmp.Diff([]domain.Kind{domain.KindMusic, domain.KindNews}, r.Kinds()); diff != "" {
		t.Errorf("NewRegistry(music, news, music) kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestCollection(t *testing.T) {
	r := NewRegistry(store.Options{}, domain.KindNews)

	c, err := r.Collection(domain.KindNews)
	if err != nil {
		t.Fatalf("Collection(news) error = %v", err)
	}
	if c.Kind() != domain.KindNews {
		t.Errorf("Collection(news).Kind() = %s", c.Kind())
	}

	again, _ := r.Collection(domain.KindNews)
	if again != c {
		t.Error("Collection() should return the same instance")
	}

	if _, err := r.Collection(domain.KindAuto); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Collection(auto) error = %v, want ErrNotFound", err)
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry(store.Options{})

	tests := []struct {
		raw     string
		want    domain.Kind
		wantErr bool
	}{
		{raw: "news", want: domain.KindNews},
		{raw: "Music", want: domain.KindMusic},
		{raw: " group ", want: domain.KindGroup},
		{raw: "weather", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, err := r.Lookup(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Errorf("Lookup(%q) error = %v, want ErrNotFound", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.raw, err)
			}
			if c.Kind() != tt.want {
				t.Errorf("Lookup(%q).Kind() = %s, want %s", tt.raw, c.Kind(), tt.want)
			}
		})
	}
}

func TestReloadBookkeeping(t *testing.T) {
	r := NewRegistry(store.Options{}, domain.KindNews, domain.KindAuto)
	if r.Ready() {
		t.Fatal("Ready() before any reload")
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.MarkReloaded(domain.KindNews, at)
	if r.Ready() {
		t.Error("Ready() with one kind still unloaded")
	}
	if got := r.LastReload(domain.KindNews); !got.Equal(at) {
		t.Errorf("LastReload(news) = %v, want %v", got, at)
	}

	r.MarkReloaded(domain.KindAuto, at)
	if !r.Ready() {
		t.Error("Ready() = false after every kind loaded")
	}
}

func TestStatuses(t *testing.T) {
	r := NewRegistry(store.Options{}, domain.KindNews, domain.KindAuto)
	news, _ := r.Collection(domain.KindNews)
	if err := news.ReplaceCatalog(&domain.Catalog{Items: []*domain.Item{{ID: "a"}, {ID: "b"}}}); err != nil {
		t.Fatal(err)
	}

	got := r.Statuses()
	if len(got) != 2 {
		t.Fatalf("Statuses() len = %d, want 2", len(got))
	}
	if got[0].Kind != domain.KindNews || got[0].Items != 2 {
		t.Errorf("Statuses()[0] = %+v", got[0])
	}
	if got[1].Kind != domain.KindAuto || got[1].Items != 0 {
		t.Errorf("Statuses()[1] = %+v", got[1])
	}
}
