package ranking

import (
	"sync/atomic"

	"zooguide/pkg/models"
)

// Cache holds the latest ranking snapshot. The aggregator is its only
// writer; readers never block and always see a complete snapshot.
type Cache struct {
	current atomic.Pointer[models.RankingSnapshot]
}

func NewCache() *Cache {
	return &Cache{}
}

// Load returns nil until the first successful refresh.
func (c *Cache) Load() *models.RankingSnapshot {
	return c.current.Load()
}

func (c *Cache) Store(s *models.RankingSnapshot) {
	c.current.Store(s)
}
