package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleSeed = `---
stores:
  music:
    categories:
      - id: jazz
        name: Jazz
    items:
      - id: t1
        title: So What
        category: jazz
        duration: 9m22s
        rating: 4.9
        reviewCount: 120
        popular: true
        createdAt: 2024-01-02T10:00:00Z
  news:
    categories:
      - id: tech
    items:
      - id: a1
        title: Chips are back
        category: tech
        tags: [hardware, supply]
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	seed, err := NewLoader(writeSeed(t, sampleSeed)).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(seed.Stores) != 2 {
		t.Fatalf("Load() returned %d stores, want 2", len(seed.Stores))
	}
	track := seed.Stores["music"].Items[0]
	if track.Duration != 9*time.Minute+22*time.Second {
		t.Errorf("Duration = %v", track.Duration)
	}
	if !track.CreatedAt.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", track.CreatedAt)
	}
	if got := seed.Stores["news"].Items[0].Tags; len(got) != 2 {
		t.Errorf("Tags = %v", got)
	}
}

func TestLoaderLoadErrors(t *testing.T) {
	tests := []struct {
		name        string
		path        func(t *testing.T) string
		wantInvalid bool
	}{
		{
			name:        "missing file",
			path:        func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantInvalid: false,
		},
		{
			name:        "empty file",
			path:        func(t *testing.T) string { return writeSeed(t, "") },
			wantInvalid: true,
		},
		{
			name:        "unknown field",
			path:        func(t *testing.T) string { return writeSeed(t, "stores:\n  news:\n    itemz: []\n") },
			wantInvalid: true,
		},
		{
			name:        "malformed yaml",
			path:        func(t *testing.T) string { return writeSeed(t, "stores: [unclosed\n") },
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.path(t)).Load(context.Background())
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if got := errors.Is(err, ErrInvalidSeed); got != tt.wantInvalid {
				t.Errorf("errors.Is(err, ErrInvalidSeed) = %v, want %v (err: %v)", got, tt.wantInvalid, err)
			}
		})
	}
}

func TestLoaderLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLoader(writeSeed(t, sampleSeed)).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
