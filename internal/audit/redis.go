package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder appends JSON entries to a Redis list, capped so the list
// cannot grow without bound.
type RedisRecorder struct {
	client *redis.Client
	key    string
	maxLen int64
}

const defaultMaxLen = 100000

func NewRedisRecorder(client *redis.Client, key string) *RedisRecorder {
	if key == "" {
		key = "quiz:audit"
	}
	return &RedisRecorder{client: client, key: key, maxLen: defaultMaxLen}
}

func (r *RedisRecorder) Record(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, r.key, data)
	pipe.LTrim(ctx, r.key, -r.maxLen, -1)
	_, err = pipe.Exec(ctx)
	return err
}
