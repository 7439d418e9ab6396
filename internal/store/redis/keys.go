package redis

import "github.com/MrSnakeDoc/lifehub/internal/domain"

// KeyPrefixProjection is the prefix for per-kind projection keys
const KeyPrefixProjection = "lifehub:projection:"

// ProjectionKey returns the Redis key holding the projection of kind
func ProjectionKey(kind domain.Kind) string {
	return KeyPrefixProjection + string(kind)
}
