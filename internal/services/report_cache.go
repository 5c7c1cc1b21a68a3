package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/clearbooks/backend/internal/models"
)

const reportCacheTTL = 5 * time.Minute

// ReportCache stores rendered reports in Redis keyed per organization. A nil
// client disables caching; every method is a no-op then, so the reporting
// engine works identically with Redis down.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: reportCacheTTL}
}

// BalanceSheetKey builds the cache key for a balance sheet. A nil asOf means
// no cutoff and keys as "all".
func BalanceSheetKey(organizationID string, asOf *time.Time) string {
	cutoff := "all"
	if asOf != nil {
		cutoff = asOf.Format("2006-01-02")
	}
	return fmt.Sprintf("report:bs:%s:all|%s", organizationID, cutoff)
}

// ProfitAndLossKey builds the cache key for a P&L over a range, optionally
// filtered by class.
func ProfitAndLossKey(organizationID string, dateRange models.DateRange, classID string) string {
	if classID == "" {
		classID = "all"
	}
	return fmt.Sprintf("report:pl:%s:%s|%s|%s", organizationID,
		dateRange.StartDate.Format("2006-01-02"), dateRange.EndDate.Format("2006-01-02"), classID)
}

func organizationKeySet(organizationID string) string {
	return "report:keys:" + organizationID
}

// Get unmarshals the cached report into out and reports whether it was found.
func (c *ReportCache) Get(ctx context.Context, key string, out any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}

// Set caches a report under key and records the key in the organization's key
// set so invalidation can find it later.
func (c *ReportCache) Set(ctx context.Context, organizationID, key string, value any) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling report for cache: %w", err)
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return err
	}
	keySet := organizationKeySet(organizationID)
	if err := c.rdb.SAdd(ctx, keySet, key).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, keySet, c.ttl).Err()
}

// InvalidateOrganization drops every cached report for the organization.
// Transaction writes call this so reports never serve stale figures.
func (c *ReportCache) InvalidateOrganization(ctx context.Context, organizationID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	keySet := organizationKeySet(organizationID)
	keys, err := c.rdb.SMembers(ctx, keySet).Result()
	if err != nil {
		return err
	}
	keys = append(keys, keySet)
	return c.rdb.Del(ctx, keys...).Err()
}
