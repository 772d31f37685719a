// Package catalog looks up external tracks and videos that band members
// attach to songs as references.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Tracklab/logger"
	"Tracklab/model"

	"github.com/redis/go-redis/v9"
)

// ErrUnknownSource is returned for a search against a source that is not
// configured.
var ErrUnknownSource = errors.New("unknown catalog source")

// Result is one catalog search hit.
type Result struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Source is one searchable catalog backend.
type Source interface {
	Name() model.ReferenceSource
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Searcher dispatches queries to the configured sources, with a Redis
// cache in front so repeated queries don't burn API quota.
type Searcher struct {
	sources map[model.ReferenceSource]Source
	cache   *redis.Client
	ttl     time.Duration
	limit   int
}

// NewSearcher creates a searcher over the given sources. cache may be nil
// to disable caching.
func NewSearcher(cache *redis.Client, sources ...Source) *Searcher {
	s := &Searcher{
		sources: make(map[model.ReferenceSource]Source),
		cache:   cache,
		ttl:     10 * time.Minute,
		limit:   5,
	}
	for _, src := range sources {
		s.sources[src.Name()] = src
	}
	return s
}

// Search runs a free-text query against one source.
func (s *Searcher) Search(ctx context.Context, source model.ReferenceSource, query string) ([]Result, error) {
	src, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	cacheKey := fmt.Sprintf("catalog:%s:%s", source, query)
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached []Result
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			logger.Warn("catalog cache read failed", logger.ErrorField(err))
		}
	}

	results, err := src.Search(ctx, query, s.limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(results); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				logger.Warn("catalog cache write failed", logger.ErrorField(err))
			}
		}
	}
	return results, nil
}
