package ndbc

import (
	"context"
	"fmt"
	"sync"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache over
// station lookups. Positions are quantized to ~1 km so nearby detections of
// the same incident share an entry. Observations are live data and are
// never cached.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) FetchNearestStations(ctx context.Context, lat, lon, distanceToShoreKm float64) ([]domain.Station, error) {
	key := fmt.Sprintf("%.2f,%.2f|%.0f", lat, lon, distanceToShoreKm)
	if stations, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return stations, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	stations, err := c.inner.FetchNearestStations(ctx, lat, lon, distanceToShoreKm)
	if err != nil {
		return stations, err
	}
	// Only cache non-empty results so transient failures can be retried.
	if len(stations) > 0 {
		c.cache.put(key, stations)
	}
	return stations, nil
}

func (c *CachedProvider) FetchWeatherData(ctx context.Context, stationURL string) (domain.Observation, error) {
	return c.inner.FetchWeatherData(ctx, stationURL)
}

// lruCache is a simple thread-safe LRU cache for station lookups.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.Station
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.Station, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
