package recommend

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/metrics"
)

const (
	defaultCacheTTL        = 30 * time.Minute
	defaultCacheMaxEntries = 200
	redisCachePrefix       = "moviechat:recommend:"
)

type cachedResponse struct {
	response  domain.RecommendResponse
	expiresAt time.Time
}

// responseCache keeps recent recommendation payloads keyed by the normalized
// request text: an in-memory TTL map fronting an optional Redis backend shared
// across replicas. Cached entries intentionally freeze the randomized sample
// for the TTL window.
type responseCache struct {
	mu         sync.Mutex
	entries    map[string]cachedResponse
	ttl        time.Duration
	maxEntries int
	redis      *RedisCacheBackend
}

func newResponseCache(ttl time.Duration, backend *RedisCacheBackend) *responseCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &responseCache{
		entries:    make(map[string]cachedResponse),
		ttl:        ttl,
		maxEntries: defaultCacheMaxEntries,
		redis:      backend,
	}
}

func (c *responseCache) get(ctx context.Context, key string) (domain.RecommendResponse, bool) {
	now := time.Now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		metrics.CacheHitsTotal.Inc()
		return entry.response, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.redis != nil {
		if response, ok, err := c.redis.Get(ctx, key); err == nil && ok {
			c.storeLocal(key, response, now)
			metrics.CacheHitsTotal.Inc()
			return response, true
		}
	}

	metrics.CacheMissesTotal.Inc()
	return domain.RecommendResponse{}, false
}

func (c *responseCache) set(ctx context.Context, key string, response domain.RecommendResponse) {
	c.storeLocal(key, response, time.Now())
	if c.redis != nil {
		_ = c.redis.Set(ctx, key, response, c.ttl)
	}
}

func (c *responseCache) storeLocal(key string, response domain.RecommendResponse, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedResponse{response: response, expiresAt: now.Add(c.ttl)}
	if len(c.entries) <= c.maxEntries {
		return
	}

	// Evict the soonest-expiring entries to get back under the cap.
	type aging struct {
		key       string
		expiresAt time.Time
	}
	all := make([]aging, 0, len(c.entries))
	for k, v := range c.entries {
		all = append(all, aging{key: k, expiresAt: v.expiresAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].expiresAt.Before(all[j].expiresAt) })
	for _, item := range all[:len(c.entries)-c.maxEntries] {
		delete(c.entries, item.key)
	}
}

// RedisCacheBackend stores recommendation responses in Redis as JSON.
type RedisCacheBackend struct {
	client *redis.Client
}

func NewRedisCacheBackend(client *redis.Client) *RedisCacheBackend {
	return &RedisCacheBackend{client: client}
}

func (r *RedisCacheBackend) Get(ctx context.Context, key string) (domain.RecommendResponse, bool, error) {
	data, err := r.client.Get(ctx, redisCachePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.RecommendResponse{}, false, nil
		}
		return domain.RecommendResponse{}, false, err
	}
	var response domain.RecommendResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.RecommendResponse{}, false, err
	}
	return response, true, nil
}

func (r *RedisCacheBackend) Set(ctx context.Context, key string, response domain.RecommendResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisCachePrefix+key, data, ttl).Err()
}

func (r *RedisCacheBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
