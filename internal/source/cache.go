package source

import (
	"context"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

// CacheName is the adapter name of the local cache probe.
const CacheName = "cache"

// cacheSource is the read-only local cache probe at the head of every
// chain. It never mutates the cache.
type cacheSource struct {
	store *store.Store
}

// NewCache creates the local cache probe adapter.
func NewCache(s *store.Store) Source {
	return &cacheSource{store: s}
}

func (c *cacheSource) Name() string { return CacheName }

func (c *cacheSource) Fetch(ctx context.Context, r ref.Reference, translation string) (Result, error) {
	cache, err := c.store.Open(translation)
	if err != nil {
		return Result{}, err
	}
	if text, ok := cache.Get(r); ok {
		return Result{Text: text, Translation: translation}, nil
	}
	return Result{}, errors.NewNotFound("verse", r.Key())
}
