package cache

import (
	"context"
	"time"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region production-reader
// ProductionReader abstracts the parameter store read the cache refreshes
// from, so Cache can be tested without SQLite.
type ProductionReader interface {
	GetProduction(ctx context.Context, contextType string) (store.WeightProfile, error)
}
// #endregion production-reader

// #region config
// Config holds the staleness and refresh knobs for the weight cache.
type Config struct {
	TTL            time.Duration // entry age below this is served without refresh
	RefreshTimeout time.Duration // bound on a single background store read
}

// DefaultConfig returns the production cache settings.
func DefaultConfig() Config {
	return Config{
		TTL:            30 * time.Second,
		RefreshTimeout: 2 * time.Second,
	}
}
// #endregion config
