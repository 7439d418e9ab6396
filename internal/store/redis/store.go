package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

// Store persists collection projections in Redis, one key per kind.
// Values are the opaque JSON produced by Collection.Snapshot and carry
// no TTL.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// LoadProjection returns the stored projection of kind, or nil when
// nothing was ever saved.
func (s *Store) LoadProjection(ctx context.Context, kind domain.Kind) ([]byte, error) {
	data, err := s.client.Get(ctx, ProjectionKey(kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // never persisted
		}
		return nil, fmt.Errorf("failed to load %s projection: %w", kind, err)
	}
	return data, nil
}

// DeleteProjection removes the projection of kind
func (s *Store) DeleteProjection(ctx context.Context, kind domain.Kind) error {
	if err := s.client.Del(ctx, ProjectionKey(kind)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s projection: %w", kind, err)
	}
	return nil
}

// SaveMany stores several projections in one round trip (bulk operation)
func (s *Store) SaveMany(ctx context.Context, projections map[domain.Kind][]byte) error {
	if len(projections) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for kind, data := range projections {
		pipe.Set(ctx, ProjectionKey(kind), data, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save projections: %w", err)
	}
	return nil
}
