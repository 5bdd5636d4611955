package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "rbac:perms:"
	epochKeyPrefix = "rbac:epoch:"
	epochAllKey    = epochKeyPrefix + "all"
)

// Cache stores resolved permission sets per user in Redis. Staleness here is
// a security defect, not a performance nuisance: every role or assignment
// mutation must invalidate the affected entries before it returns success.
// The TTL is defense in depth, not the invalidation mechanism.
//
// Invalidation bumps an epoch counter in addition to deleting the entry, and
// every entry records the epoch read before its resolution started. An entry
// whose epoch no longer matches was resolved from pre-invalidation state and
// is treated as a miss, so a resolution in flight across an invalidation can
// never re-cache the old set.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, userID)
}

func epochKey(userID int64) string {
	return fmt.Sprintf("%s%d", epochKeyPrefix, userID)
}

type cachedEntry struct {
	Epoch string   `json:"epoch"`
	Perms []string `json:"perms"`
}

// Epoch returns the current invalidation epoch for a user, combining the
// global counter with the per-user one. Returns "" when the epoch cannot be
// read; writes tagged with an empty epoch are dropped, never served.
func (c *Cache) Epoch(ctx context.Context, userID int64) string {
	if c == nil || c.client == nil {
		return ""
	}
	vals, err := c.client.MGet(ctx, epochAllKey, epochKey(userID)).Result()
	if err != nil || len(vals) != 2 {
		return ""
	}
	return epochField(vals[0]) + ":" + epochField(vals[1])
}

func epochField(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "0"
}

// Get returns the cached set for a user, or ok=false on miss, error, or an
// entry written against a superseded epoch.
func (c *Cache) Get(ctx context.Context, userID int64) (PermissionSet, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entry cachedEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, false
	}
	if entry.Epoch == "" || entry.Epoch != c.Epoch(ctx, userID) {
		return nil, false
	}
	return NewPermissionSet(entry.Perms...), true
}

// Set stores the resolved set for a user. epoch must be the value Epoch
// returned before the resolution read the store; an invalidation in between
// bumps the counter and the entry is never served.
func (c *Cache) Set(ctx context.Context, userID int64, set PermissionSet, epoch string) error {
	if c == nil || c.client == nil || epoch == "" {
		return nil
	}
	payload, err := json.Marshal(cachedEntry{Epoch: epoch, Perms: set.List()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(userID), payload, c.ttl).Err()
}

// InvalidateUser drops the cached set for one user. Called on every
// assignment mutation and system-role tag change affecting that user.
// The epoch bump lands before the delete so that an in-flight resolution
// cannot write an entry that survives.
func (c *Cache) InvalidateUser(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, epochKey(userID)).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, cacheKey(userID)).Err()
}

// InvalidateAll drops every cached set. Role mutations affect an unknown set
// of users, so the whole namespace goes. Epoch keys live under their own
// prefix and survive the sweep.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, epochAllKey).Err(); err != nil {
		return err
	}
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
