package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vindex/internal/vin/models"
	"vindex/pkg/platform/sentinel"
)

// InMemoryStore keeps the VIN table in a map for tests and development. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu   sync.RWMutex
	vins map[string]models.DecodedVehicle
}

// NewInMemory constructs an empty in-memory VIN store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{vins: make(map[string]models.DecodedVehicle)}
}

func (s *InMemoryStore) Lookup(_ context.Context, vin string) (models.DecodedVehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.vins[vin]; ok {
		return record, nil
	}
	return models.DecodedVehicle{}, fmt.Errorf("vin record not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Insert(_ context.Context, record models.DecodedVehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Stored records never carry the derived flag.
	record.FromCache = false
	s.vins[record.VIN] = record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, vin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vins[vin]; !ok {
		return false, nil
	}
	delete(s.vins, vin)
	return true, nil
}

func (s *InMemoryStore) ExportAll(_ context.Context) ([]models.DecodedVehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.DecodedVehicle, 0, len(s.vins))
	for _, record := range s.vins {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].VIN < records[j].VIN })
	return records, nil
}

func (s *InMemoryStore) Close() error { return nil }
