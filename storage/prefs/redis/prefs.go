package redisprefs

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/aula/core"
)

// Preferences keeps the session as fields of one redis hash.
type Preferences struct {
	rdb *redis.Client
	key string
}

var _ core.Preferences = (*Preferences)(nil)

func NewPreferences(rdb *redis.Client, key string) *Preferences {
	return &Preferences{rdb: rdb, key: key}
}

// Connect opens a client on addr and checks it answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", addr)
	}
	return rdb, nil
}

func (p *Preferences) Store(ctx context.Context, key, value string) error {
	return errors.Wrapf(p.rdb.HSet(ctx, p.key, key, value).Err(), "storing %s", key)
}

func (p *Preferences) Retrieve(ctx context.Context, key string) (string, error) {
	val, err := p.rdb.HGet(ctx, p.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrPrefNotFound
		}
		return "", errors.Wrapf(err, "retrieving %s", key)
	}
	return val, nil
}

func (p *Preferences) Remove(ctx context.Context, key string) error {
	return errors.Wrapf(p.rdb.HDel(ctx, p.key, key).Err(), "removing %s", key)
}

func (p *Preferences) Clear(ctx context.Context) error {
	return errors.Wrap(p.rdb.Del(ctx, p.key).Err(), "clearing session")
}
