package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

type flakyLoader struct {
	failures int
	err      error
	calls    int
	seed     *SeedFile
}

func (f *flakyLoader) Load(context.Context) (*SeedFile, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.seed, nil
}

func newTestSource(l seedLoader, attempts uint64) *Source {
	return &Source{
		loader: l,
		mapper: fixedMapper(),
		retry:  RetryOptions{Attempts: attempts, Initial: time.Millisecond, MaxWait: 5 * time.Millisecond},
		log:    logger.NewNop(),
	}
}

func validSeed() *SeedFile {
	return &SeedFile{Stores: map[string]StoreSeed{
		"news": {Items: []ItemSeed{{ID: "a1", Title: "Hello"}}},
	}}
}

func TestSourceLoadRetriesTransientErrors(t *testing.T) {
	l := &flakyLoader{failures: 2, err: errors.New("disk busy"), seed: validSeed()}

	set, err := newTestSource(l, 3).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.calls != 3 {
		t.Errorf("loader called %d times, want 3", l.calls)
	}
	if set.Count() != 1 {
		t.Errorf("Count() = %d, want 1", set.Count())
	}
}

func TestSourceLoadGivesUp(t *testing.T) {
	boom := errors.New("disk gone")
	l := &flakyLoader{failures: 100, err: boom}

	if _, err := newTestSource(l, 2).Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want %v", err, boom)
	}
	if l.calls != 3 {
		t.Errorf("loader called %d times, want 3 (1 + 2 retries)", l.calls)
	}
}

func TestSourceLoadDoesNotRetryInvalidSeed(t *testing.T) {
	l := &flakyLoader{seed: &SeedFile{Stores: map[string]StoreSeed{"weather": {}}}}

	if _, err := newTestSource(l, 5).Load(context.Background()); !errors.Is(err, ErrInvalidSeed) {
		t.Fatalf("Load() error = %v, want ErrInvalidSeed", err)
	}
	if l.calls != 1 {
		t.Errorf("loader called %d times, want 1", l.calls)
	}
}

func TestSetCatalog(t *testing.T) {
	set := Set{domain.KindNews: {Kind: domain.KindNews, Items: []*domain.Item{{ID: "a"}}}}

	cat, err := set.Catalog(context.Background(), domain.KindNews)
	if err != nil || len(cat.Items) != 1 {
		t.Errorf("Catalog(news) = %+v, %v", cat, err)
	}

	empty, err := set.Catalog(context.Background(), domain.KindGroup)
	if err != nil || empty.Kind != domain.KindGroup || len(empty.Items) != 0 {
		t.Errorf("Catalog(group) = %+v, %v, want empty catalog", empty, err)
	}
}
