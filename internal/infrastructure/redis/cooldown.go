package redisstore

import (
	"context"
	"time"

	"marketsync-service/internal/application"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "marketsync:"

// Cooldown keeps alert windows in Redis so restarts and replicas share them.
type Cooldown struct {
	Client *redis.Client
	Window time.Duration
}

var (
	_ application.CooldownGate     = (*Cooldown)(nil)
	_ application.CooldownReleaser = (*Cooldown)(nil)
)

func New(client *redis.Client, window time.Duration) *Cooldown {
	return &Cooldown{Client: client, Window: window}
}

// TryReserve opens a window for key unless one is still running.
func (s *Cooldown) TryReserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), s.Window).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release drops the window for key.
func (s *Cooldown) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, keyPrefix+key).Err()
}

// NoCooldown lets every alert through.
type NoCooldown struct{}

func (NoCooldown) TryReserve(context.Context, string) (bool, error) { return true, nil }
