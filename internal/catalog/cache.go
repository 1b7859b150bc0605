package catalog

import (
	"alcyxob/workout-scheduler/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	log "github.com/sirupsen/logrus"
)

// CachedCatalog memoizes lookups of another TemplateCatalog for ttl.
// Misses are not cached, so a template created later is seen immediately.
type CachedCatalog struct {
	next  TemplateCatalog
	cache *freecache.Cache
	ttl   time.Duration
}

// NewCachedCatalog wraps next with a cache of sizeBytes (freecache enforces a 512KB minimum).
func NewCachedCatalog(next TemplateCatalog, sizeBytes int, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: freecache.NewCache(sizeBytes),
		ttl:   ttl,
	}
}

func (c *CachedCatalog) Lookup(ctx context.Context, templateID primitive.ObjectID) (*domain.TemplateInfo, error) {
	key := templateID[:]

	if raw, err := c.cache.Get(key); err == nil {
		info := &domain.TemplateInfo{}
		if err := json.Unmarshal(raw, info); err == nil {
			return info, nil
		}
		log.Warnf("catalog cache: drop corrupt entry for %s", templateID.Hex())
		c.cache.Del(key)
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Warnf("catalog cache get %s: %s", templateID.Hex(), err)
	}

	info, err := c.next.Lookup(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := c.cache.Set(key, raw, int(c.ttl.Seconds())); err != nil {
			log.Debugf("catalog cache set %s: %s", templateID.Hex(), err)
		}
	}
	return info, nil
}

// Stats returns hit and miss counters.
func (c *CachedCatalog) Stats() (hits, misses int64) {
	return c.cache.HitCount(), c.cache.MissCount()
}
