package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"vindex/internal/vin/models"
	"vindex/pkg/platform/sentinel"
)

// Redis key prefix for decoded VIN records.
const vinKeyPrefix = "vin:"

// RedisStore keeps the VIN table in Redis as one JSON value per key. Useful
// when several instances need to share the cache without a relational
// backend. Records carry no TTL; the table is unbounded by design.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed VIN store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func vinKey(vin string) string { return vinKeyPrefix + vin }

func (s *RedisStore) Lookup(ctx context.Context, vin string) (models.DecodedVehicle, error) {
	payload, err := s.client.Get(ctx, vinKey(vin)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.DecodedVehicle{}, fmt.Errorf("vin record not found: %w", sentinel.ErrNotFound)
		}
		return models.DecodedVehicle{}, fmt.Errorf("lookup vin record: %w", err)
	}
	var record models.DecodedVehicle
	if err := json.Unmarshal(payload, &record); err != nil {
		return models.DecodedVehicle{}, fmt.Errorf("decode vin record: %w", err)
	}
	return record, nil
}

func (s *RedisStore) Insert(ctx context.Context, record models.DecodedVehicle) error {
	record.FromCache = false
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode vin record: %w", err)
	}
	// SET is the upsert; no TTL.
	if err := s.client.Set(ctx, vinKey(record.VIN), payload, 0).Err(); err != nil {
		return fmt.Errorf("insert vin record: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, vin string) (bool, error) {
	removed, err := s.client.Del(ctx, vinKey(vin)).Result()
	if err != nil {
		return false, fmt.Errorf("delete vin record: %w", err)
	}
	return removed > 0, nil
}

func (s *RedisStore) ExportAll(ctx context.Context) ([]models.DecodedVehicle, error) {
	var records []models.DecodedVehicle
	iter := s.client.Scan(ctx, 0, vinKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		payload, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Key deleted between SCAN and GET.
				continue
			}
			return nil, fmt.Errorf("export vin records: %w", err)
		}
		var record models.DecodedVehicle
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("decode vin record: %w", err)
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("export vin records: %w", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].VIN < records[j].VIN })
	return records, nil
}

// Ping reports whether the Redis connection is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
