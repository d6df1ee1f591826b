// Package temperature holds the smart-home zone state the agent's
// temperature tools read and write.
package temperature

import (
	"context"
	"sort"
	"sync"
)

// Zones the agent knows about. Anything else is rejected at the tool layer
// with a spoken message, not an error.
var defaultZones = map[string]int{
	"living_room": 22,
	"bedroom":     20,
	"kitchen":     21,
	"bathroom":    23,
	"office":      21,
}

// ZoneStore reads and writes per-zone temperatures. Implementations must be
// safe for concurrent use across sessions.
type ZoneStore interface {
	// Get returns the temperature for a zone. ok is false for unknown zones.
	Get(ctx context.Context, zone string) (temp int, ok bool, err error)
	// Set updates a zone's temperature. ok is false for unknown zones.
	Set(ctx context.Context, zone string, temp int) (ok bool, err error)
	// Zones lists the known zone names in stable order.
	Zones() []string
}

// KnownZones returns the zone names in sorted order.
func KnownZones() []string {
	zones := make([]string, 0, len(defaultZones))
	for zone := range defaultZones {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones
}

// MemoryStore keeps zone state in process memory. Used when Redis is not
// configured; state is per-instance and resets on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	zones map[string]int
}

// NewMemoryStore creates a MemoryStore seeded with the default zones.
func NewMemoryStore() *MemoryStore {
	zones := make(map[string]int, len(defaultZones))
	for zone, temp := range defaultZones {
		zones[zone] = temp
	}
	return &MemoryStore{zones: zones}
}

func (s *MemoryStore) Get(_ context.Context, zone string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	temp, ok := s.zones[zone]
	return temp, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, zone string, temp int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zones[zone]; !ok {
		return false, nil
	}
	s.zones[zone] = temp
	return true, nil
}

func (s *MemoryStore) Zones() []string {
	return KnownZones()
}
