package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestSaveManyLoadProjection(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	err := s.SaveMany(ctx, map[domain.Kind][]byte{
		domain.KindNews:  []byte(`{"version":1,"kind":"news"}`),
		domain.KindGroup: []byte(`"g"`),
	})
	if err != nil {
		t.Fatalf("SaveMany() error = %v", err)
	}

	for kind, want := range map[domain.Kind]string{
		domain.KindNews:  `{"version":1,"kind":"news"}`,
		domain.KindGroup: `"g"`,
	} {
		got, err := s.LoadProjection(ctx, kind)
		if err != nil {
			t.Fatalf("LoadProjection(%s) error = %v", kind, err)
		}
		if string(got) != want {
			t.Errorf("LoadProjection(%s) = %s, want %s", kind, got, want)
		}
		if ttl := mr.TTL(ProjectionKey(kind)); ttl != 0 {
			t.Errorf("%s projection key has TTL %v, want none", kind, ttl)
		}
	}

	if err := s.SaveMany(ctx, nil); err != nil {
		t.Errorf("SaveMany(nil) error = %v", err)
	}
}

func TestLoadProjection_Missing(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.LoadProjection(context.Background(), domain.KindAuto)
	if err != nil {
		t.Fatalf("LoadProjection() error = %v, want nil for a missing key", err)
	}
	if got != nil {
		t.Errorf("LoadProjection() = %q, want nil", got)
	}
}

func TestLoadProjection_Unavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	if _, err := s.LoadProjection(context.Background(), domain.KindNews); err == nil {
		t.Error("LoadProjection() with redis down should fail")
	}
}

func TestDeleteProjection(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveMany(ctx, map[domain.Kind][]byte{domain.KindLife: []byte("{}")}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProjection(ctx, domain.KindLife); err != nil {
		t.Fatalf("DeleteProjection() error = %v", err)
	}
	if mr.Exists(ProjectionKey(domain.KindLife)) {
		t.Error("projection key still present")
	}

	// deleting an absent projection is fine
	if err := s.DeleteProjection(ctx, domain.KindLife); err != nil {
		t.Errorf("second DeleteProjection() error = %v", err)
	}
}

func TestProjectionKey(t *testing.T) {
	if got := ProjectionKey(domain.KindMusic); got != "lifehub:projection:music" {
		t.Errorf("ProjectionKey(music) = %q", got)
	}
}
