package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/sources/catalog"
)

// ProjectionStore is the persistence backend of collection projections.
// *redis.Store implements it.
type ProjectionStore interface {
	LoadProjection(ctx context.Context, kind domain.Kind) ([]byte, error)
	SaveMany(ctx context.Context, projections map[domain.Kind][]byte) error
	DeleteProjection(ctx context.Context, kind domain.Kind) error
}

// CatalogLoader loads the seed of every kind at once.
// *catalog.Source implements it.
type CatalogLoader interface {
	Load(ctx context.Context) (catalog.Set, error)
}
