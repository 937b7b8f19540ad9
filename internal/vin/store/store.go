package store

import (
	"context"

	"vindex/internal/vin/models"
)

// Store is the persistent VIN table. Implementations are interface-driven so
// the orchestrator stays testable and backends can be swapped without
// rewiring business code.
//
// Error Contract:
// - Lookup returns sentinel.ErrNotFound (wrapped) when the vin is absent.
// - Insert is an atomic upsert keyed on vin; last write wins.
// - Delete reports whether a record was actually removed; an absent vin is
//   an outcome, not an error.
// - Infrastructure failures are returned wrapped with context.
//
// All methods must be safe for concurrent use from independent requests.
type Store interface {
	Lookup(ctx context.Context, vin string) (models.DecodedVehicle, error)
	Insert(ctx context.Context, record models.DecodedVehicle) error
	Delete(ctx context.Context, vin string) (bool, error)
	// ExportAll returns the full table in a stable order (ascending vin).
	ExportAll(ctx context.Context) ([]models.DecodedVehicle, error)
	Close() error
}
