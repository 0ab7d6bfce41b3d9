package realtime

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const presenceKey = "presence:online"

var _ PresenceStore = (*RedisPresence)(nil)

// RedisPresence keeps the online registry in a Redis hash so presence holds
// across server instances.
type RedisPresence struct {
	client *redis.Client
}

func NewRedisPresence(addr, password string) (*RedisPresence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "NewRedisPresence ping")
	}
	return &RedisPresence{client: client}, nil
}

func (p *RedisPresence) Add(ctx context.Context, accountID string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "RedisPresence.Add marshal")
	}
	return p.client.HSet(ctx, presenceKey, accountID, raw).Err()
}

func (p *RedisPresence) Remove(ctx context.Context, accountID string) error {
	return p.client.HDel(ctx, presenceKey, accountID).Err()
}

func (p *RedisPresence) List(ctx context.Context) ([]string, error) {
	ids, err := p.client.HKeys(ctx, presenceKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "RedisPresence.List")
	}
	return ids, nil
}
