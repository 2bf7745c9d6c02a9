package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/config"
	"github.com/sidverse/gandaberunda/utils"
)

// SnapshotCache caches campaign aggregate snapshots in Redis. Every
// aggregate-affecting write invalidates the entry; reads fall back to the
// database on any cache miss or error.
type SnapshotCache struct {
	rc     *redis.Client
	config *config.CacheConfig
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(rc *redis.Client, cfg *config.CacheConfig) *SnapshotCache {
	return &SnapshotCache{rc: rc, config: cfg}
}

func (c *SnapshotCache) key(campaignUUID string) string {
	return fmt.Sprintf("%s%s:%s", c.config.RedisPrefix, utils.CampaignSnapshotCacheKey, campaignUUID)
}

// Get returns the cached snapshot for a campaign, or nil on miss
func (c *SnapshotCache) Get(ctx context.Context, campaignUUID string) *dto.GetCampaignResponse {
	if c == nil || c.rc == nil {
		return nil
	}

	bs, err := c.rc.Get(ctx, c.key(campaignUUID)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}

	var snapshot dto.GetCampaignResponse
	if err := json.Unmarshal(bs, &snapshot); err != nil {
		return nil
	}

	snapshot.FromCache = true
	return &snapshot
}

// Set stores a snapshot with the configured TTL. Failures are ignored.
func (c *SnapshotCache) Set(ctx context.Context, campaignUUID string, snapshot *dto.GetCampaignResponse) {
	if c == nil || c.rc == nil || snapshot == nil {
		return
	}

	bs, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	_ = c.rc.Set(ctx, c.key(campaignUUID), bs, utils.CampaignSnapshotCacheTTL).Err()
}

// Invalidate drops the cached snapshot for a campaign. Failures are ignored.
func (c *SnapshotCache) Invalidate(ctx context.Context, campaignUUID string) {
	if c == nil || c.rc == nil {
		return
	}

	_ = c.rc.Del(ctx, c.key(campaignUUID)).Err()
}
