package infrastructure

import (
	"context"
	"fmt"

	"apploto/domain/ranking"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// DefaultParticipantCacheSize is used when the configured size is not positive
const DefaultParticipantCacheSize = 4096

// ParticipantNameCache keeps resolved display names across units of work
type ParticipantNameCache struct {
	cache *lru.Cache[int64, string]
}

// NewParticipantNameCache creates a cache holding at most size names
func NewParticipantNameCache(size int) (*ParticipantNameCache, error) {
	if size <= 0 {
		size = DefaultParticipantCacheSize
	}
	cache, err := lru.New[int64, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create participant cache: %w", err)
	}
	return &ParticipantNameCache{cache: cache}, nil
}

// Lookup returns a participant lookup that serves cached names and asks source for the rest
func (c *ParticipantNameCache) Lookup(source ranking.ParticipantLookup) *CachedParticipantLookup {
	return &CachedParticipantLookup{cache: c.cache, source: source}
}

// Invalidate drops cached names, e.g. after an account rename
func (c *ParticipantNameCache) Invalidate(ids ...int64) {
	for _, id := range ids {
		c.cache.Remove(id)
	}
}

// Len returns the number of cached names
func (c *ParticipantNameCache) Len() int {
	return c.cache.Len()
}

// CachedParticipantLookup implements ranking.ParticipantLookup over a shared cache
type CachedParticipantLookup struct {
	cache  *lru.Cache[int64, string]
	source ranking.ParticipantLookup
}

// DisplayNames resolves ids, hitting the source only for names not cached.
// IDs the source does not know are omitted and never cached.
func (l *CachedParticipantLookup) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	var missing []int64
	for _, id := range ids {
		if name, ok := l.cache.Get(id); ok {
			names[id] = name
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return names, nil
	}

	resolved, err := l.source.DisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range resolved {
		l.cache.Add(id, name)
		names[id] = name
	}

	log.WithFields(log.Fields{
		"requested": len(ids),
		"cached":    len(ids) - len(missing),
		"resolved":  len(resolved),
	}).Debug("Resolved participant names")

	return names, nil
}
