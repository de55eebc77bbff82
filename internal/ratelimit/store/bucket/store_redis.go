// Package bucket implements sliding-window request counters.
package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rentwise/internal/ratelimit/models"
)

// slidingWindow evicts, counts and conditionally records in one round trip
// so concurrent replicas cannot overshoot the limit. Scores are unix millis.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  count = count + 1
  allowed = 1
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = '0'
if #oldest == 2 then oldestScore = oldest[2] end
return {allowed, count, oldestScore}
`)

// Redis shares windows across replicas.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (s *Redis) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := s.now()
	member := strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()

	raw, err := slidingWindow.Run(ctx, s.client, []string{key},
		now.UnixMilli(), limit.Window.Milliseconds(), limit.Requests, member,
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("run sliding window script: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("sliding window script returned %d values", len(raw))
	}

	allowed, _ := raw[0].(int64)
	count, _ := raw[1].(int64)
	scoreStr, _ := raw[2].(string)
	score, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return nil, fmt.Errorf("parse oldest score %q: %w", scoreStr, err)
	}

	var oldest time.Time
	if score > 0 {
		oldest = time.UnixMilli(int64(score))
	}
	return models.NewResult(limit, allowed == 1, int(count), oldest, now), nil
}
