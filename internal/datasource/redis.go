package datasource

import (
	"context"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
)

// KV is the subset of the redis store the source reads through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// RedisSource reads the collections the ETL job published under
// PropertiesKey and ActivitiesKey.
type RedisSource struct {
	kv KV
}

func NewRedisSource(kv KV) *RedisSource { return &RedisSource{kv: kv} }

func (s *RedisSource) Name() string { return "redis" }

func (s *RedisSource) Properties(ctx context.Context) ([]model.PropertyRecord, error) {
	b, err := s.kv.Get(ctx, PropertiesKey)
	if err != nil {
		return nil, err
	}
	return decodeProperties(b)
}

func (s *RedisSource) Activities(ctx context.Context) ([]string, error) {
	b, err := s.kv.Get(ctx, ActivitiesKey)
	if err != nil {
		return nil, err
	}
	return decodeActivities(b)
}
