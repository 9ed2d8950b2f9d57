package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

type CachedStatus struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func SetStatus(ctx context.Context, rdb *redis.Client, orderReference, status string, at time.Time) error {
	b, err := json.Marshal(CachedStatus{Status: status, UpdatedAt: at.UTC()})
	if err != nil {
		return err
	}
	return rdb.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderReference), b, TTLStatusCache).Err()
}

// GetStatus reports ok=false on a cache miss.
func GetStatus(ctx context.Context, rdb *redis.Client, orderReference string) (CachedStatus, bool, error) {
	var cs CachedStatus
	s, err := rdb.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderReference)).Result()
	if errors.Is(err, redis.Nil) {
		return cs, false, nil
	}
	if err != nil {
		return cs, false, err
	}
	if err := json.Unmarshal([]byte(s), &cs); err != nil {
		return cs, false, err
	}
	return cs, true, nil
}
