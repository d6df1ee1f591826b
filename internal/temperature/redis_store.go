package temperature

import (
	"context"
	"fmt"
	"strconv"

	redisclient "voicebank-server/internal/clients/redis"
)

const zoneKeyPrefix = "temperature:zone:"

// RedisStore keeps zone state in Redis so multiple server instances share
// one view of the home. Unset zones fall back to the built-in defaults.
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a RedisStore backed by the given client.
func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, zone string) (int, bool, error) {
	defaultTemp, ok := defaultZones[zone]
	if !ok {
		return 0, false, nil
	}

	val, err := s.client.Get(ctx, zoneKeyPrefix+zone)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read zone %s: %w", zone, err)
	}
	if val == "" {
		return defaultTemp, true, nil
	}

	temp, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt temperature value for zone %s: %w", zone, err)
	}
	return temp, true, nil
}

func (s *RedisStore) Set(ctx context.Context, zone string, temp int) (bool, error) {
	if _, ok := defaultZones[zone]; !ok {
		return false, nil
	}
	if err := s.client.Set(ctx, zoneKeyPrefix+zone, strconv.Itoa(temp)); err != nil {
		return false, fmt.Errorf("failed to write zone %s: %w", zone, err)
	}
	return true, nil
}

func (s *RedisStore) Zones() []string {
	return KnownZones()
}
