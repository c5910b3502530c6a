// Package cache stores built day schedules outside the process.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"programscheduler/internal/domain"
)

const (
	keyPrefix     = "schedule:day:"
	versionPrefix = "schedule:ver:"
)

// redisClient is the subset of *redis.Client the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type redisScheduleCache struct {
	client redisClient
	ttl    time.Duration
}

// entry is the stored form of a schedule together with the day version it was
// built against.
type entry struct {
	Version  int64               `json:"version"`
	Schedule *domain.DaySchedule `json:"schedule"`
}

// NewRedisScheduleCache keeps schedules as JSON under schedule:day:<id> for ttl,
// and a per-day version counter under schedule:ver:<id>.
func NewRedisScheduleCache(client *redis.Client, ttl time.Duration) domain.ScheduleCache {
	return &redisScheduleCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *redisScheduleCache) Version(ctx context.Context, dayID string) (int64, error) {
	raw, err := c.client.Get(ctx, versionPrefix+dayID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get schedule version: %w", err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse schedule version: %w", err)
	}
	return v, nil
}

func (c *redisScheduleCache) Get(ctx context.Context, dayID string) (*domain.DaySchedule, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+dayID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached schedule: %w", err)
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("decode cached schedule: %w", err)
	}
	if e.Schedule == nil {
		return nil, false, nil
	}
	current, err := c.Version(ctx, dayID)
	if err != nil {
		return nil, false, err
	}
	if e.Version != current {
		return nil, false, nil
	}
	return e.Schedule, true, nil
}

func (c *redisScheduleCache) Set(ctx context.Context, schedule *domain.DaySchedule, version int64) error {
	raw, err := json.Marshal(entry{Version: version, Schedule: schedule})
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+schedule.EventDay.ID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached schedule: %w", err)
	}
	return nil
}

func (c *redisScheduleCache) Invalidate(ctx context.Context, dayIDs ...string) error {
	if len(dayIDs) == 0 {
		return nil
	}
	keys := make([]string, len(dayIDs))
	for i, id := range dayIDs {
		if err := c.client.Incr(ctx, versionPrefix+id).Err(); err != nil {
			return fmt.Errorf("bump schedule version: %w", err)
		}
		keys[i] = keyPrefix + id
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cached schedules: %w", err)
	}
	return nil
}

// Nop never holds anything; every Get is a miss.
type Nop struct{}

func (Nop) Version(context.Context, string) (int64, error)                 { return 0, nil }
func (Nop) Get(context.Context, string) (*domain.DaySchedule, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, *domain.DaySchedule, int64) error          { return nil }
func (Nop) Invalidate(context.Context, ...string) error                    { return nil }
