// Package service implements the cache-aside decode path: check the store,
// decode remotely on a miss, write the result back.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"vindex/internal/vin/decoder"
	"vindex/internal/vin/export"
	"vindex/internal/vin/metrics"
	"vindex/internal/vin/models"
	"vindex/internal/vin/store"
	"vindex/pkg/platform/sentinel"
	"vindex/pkg/requestcontext"
)

// Failure reasons reported to metrics.
const (
	failureReasonProvider = "provider"
	failureReasonStorage  = "storage"
)

// VinDecoder resolves a VIN against the remote provider.
type VinDecoder interface {
	Decode(ctx context.Context, vin string) (models.DecodedVehicle, error)
}

// Service orchestrates lookups, deletions, and exports against the VIN store.
// It holds no cross-request state beyond the single-flight group that
// de-duplicates concurrent decodes of the same unseen VIN.
type Service struct {
	store     store.Store
	decoder   VinDecoder
	logger    *slog.Logger
	metrics   *metrics.Metrics
	exportDir string
	group     singleflight.Group
}

// New constructs the VIN service with its dependencies. exportDir is where
// full-table exports are written.
func New(st store.Store, dec VinDecoder, logger *slog.Logger, m *metrics.Metrics, exportDir string) *Service {
	return &Service{
		store:     st,
		decoder:   dec,
		logger:    logger,
		metrics:   m,
		exportDir: exportDir,
	}
}

// Resolve returns the decoded record for vin, serving from the store when
// possible. On a miss the remote decode result is written back before
// returning; a failed write fails the request even though the decode
// succeeded. Decode failures write nothing.
func (s *Service) Resolve(ctx context.Context, vin string) (models.DecodedVehicle, error) {
	requestID := requestcontext.RequestID(ctx)

	record, err := s.store.Lookup(ctx, vin)
	if err == nil {
		s.metrics.IncrementHit()
		s.logger.InfoContext(ctx, "returning from cache",
			"request_id", requestID,
			"vin", vin,
		)
		record.FromCache = true
		return record, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementFailure(failureReasonStorage)
		return models.DecodedVehicle{}, fmt.Errorf("lookup vin: %w", err)
	}

	s.metrics.IncrementMiss()
	s.logger.InfoContext(ctx, "cache miss lookup",
		"request_id", requestID,
		"vin", vin,
	)

	// Concurrent misses for the same VIN share one remote call and one
	// write-back instead of racing duplicate decodes.
	result, err, _ := s.group.Do(vin, func() (any, error) {
		start := time.Now()
		decoded, decodeErr := s.decoder.Decode(ctx, vin)
		s.metrics.ObserveDecodeLatency(time.Since(start))
		if decodeErr != nil {
			return nil, decodeErr
		}
		if insertErr := s.store.Insert(ctx, decoded); insertErr != nil {
			return nil, fmt.Errorf("cache decoded vin: %w", insertErr)
		}
		return decoded, nil
	})
	if err != nil {
		var validationErr *decoder.ValidationError
		if errors.As(err, &validationErr) {
			s.metrics.IncrementFailure(failureReasonProvider)
			s.logger.ErrorContext(ctx, "error while decoding the VIN",
				"request_id", requestID,
				"vin", vin,
				"error", err.Error(),
			)
		} else {
			s.metrics.IncrementFailure(failureReasonStorage)
			s.logger.ErrorContext(ctx, "failed to cache decoded VIN",
				"request_id", requestID,
				"vin", vin,
				"error", err.Error(),
			)
		}
		return models.DecodedVehicle{}, err
	}

	return result.(models.DecodedVehicle), nil
}

// Remove deletes vin from the store and translates the outcome into the
// response message. The exact message strings are part of the API contract.
func (s *Service) Remove(ctx context.Context, vin string) (string, error) {
	removed, err := s.store.Delete(ctx, vin)
	if err != nil {
		return "", fmt.Errorf("delete vin: %w", err)
	}
	if !removed {
		s.logger.InfoContext(ctx, "no record found, no deletion performed",
			"request_id", requestcontext.RequestID(ctx),
			"vin", vin,
		)
		return fmt.Sprintf("No record found with VIN: %s. No deletion.", vin), nil
	}
	s.logger.InfoContext(ctx, "removed vin record",
		"request_id", requestcontext.RequestID(ctx),
		"vin", vin,
	)
	return fmt.Sprintf("Successfully removed VIN: %s.", vin), nil
}

// Export writes the full table to a parquet file and returns its path.
func (s *Service) Export(ctx context.Context) (string, error) {
	records, err := s.store.ExportAll(ctx)
	if err != nil {
		return "", fmt.Errorf("export vin records: %w", err)
	}
	path, err := export.WriteParquet(s.exportDir, records)
	if err != nil {
		return "", err
	}
	s.metrics.SetExportedRecords(len(records))
	s.logger.InfoContext(ctx, "exported vin records",
		"request_id", requestcontext.RequestID(ctx),
		"records", len(records),
		"path", path,
	)
	return path, nil
}
