package normalizer

import (
	"context"
	"strings"

	"github.com/kurochkinivan/member_uploader/internal/domain"
)

type cacheKey struct {
	kind  domain.LookupKind
	value string
}

type cacheEntry struct {
	id int64
	ok bool
}

// CachingResolver memoises answers, including misses, for the life of one job.
// Errors are not cached. It is not safe for concurrent use.
type CachingResolver struct {
	next    LookupResolver
	entries map[cacheKey]cacheEntry
}

func NewCachingResolver(next LookupResolver) *CachingResolver {
	return &CachingResolver{
		next:    next,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *CachingResolver) Resolve(ctx context.Context, kind domain.LookupKind, value string) (int64, bool, error) {
	key := cacheKey{kind: kind, value: strings.ToLower(value)}
	if e, ok := c.entries[key]; ok {
		return e.id, e.ok, nil
	}

	id, ok, err := c.next.Resolve(ctx, kind, value)
	if err != nil {
		return 0, false, err
	}
	c.entries[key] = cacheEntry{id: id, ok: ok}

	return id, ok, nil
}
