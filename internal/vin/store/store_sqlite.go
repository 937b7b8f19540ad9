package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"vindex/internal/vin/models"
	"vindex/pkg/platform/sentinel"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS vins (
	vin        TEXT PRIMARY KEY,
	make       TEXT NOT NULL,
	model      TEXT NOT NULL,
	model_year TEXT NOT NULL,
	body_class TEXT NOT NULL
);`

// SQLiteStore persists the VIN table in an embedded SQLite database. This is
// the default backend: one shared file per process.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite store at path and
// bootstraps the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, vin string) (models.DecodedVehicle, error) {
	var record models.DecodedVehicle
	err := s.db.QueryRowContext(ctx,
		`SELECT vin, make, model, model_year, body_class FROM vins WHERE vin = ?`, vin,
	).Scan(&record.VIN, &record.Make, &record.Model, &record.ModelYear, &record.BodyClass)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DecodedVehicle{}, fmt.Errorf("vin record not found: %w", sentinel.ErrNotFound)
		}
		return models.DecodedVehicle{}, fmt.Errorf("lookup vin record: %w", err)
	}
	return record, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, record models.DecodedVehicle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vins (vin, make, model, model_year, body_class)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (vin) DO UPDATE SET
			make = excluded.make,
			model = excluded.model,
			model_year = excluded.model_year,
			body_class = excluded.body_class`,
		record.VIN, record.Make, record.Model, record.ModelYear, record.BodyClass,
	)
	if err != nil {
		return fmt.Errorf("insert vin record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, vin string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vins WHERE vin = ?`, vin)
	if err != nil {
		return false, fmt.Errorf("delete vin record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete vin record: %w", err)
	}
	return affected > 0, nil
}

func (s *SQLiteStore) ExportAll(ctx context.Context) ([]models.DecodedVehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vin, make, model, model_year, body_class FROM vins ORDER BY vin`)
	if err != nil {
		return nil, fmt.Errorf("export vin records: %w", err)
	}
	defer rows.Close()

	var records []models.DecodedVehicle
	for rows.Next() {
		var record models.DecodedVehicle
		if err := rows.Scan(&record.VIN, &record.Make, &record.Model, &record.ModelYear, &record.BodyClass); err != nil {
			return nil, fmt.Errorf("scan vin record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export vin records: %w", err)
	}
	return records, nil
}

// Ping reports whether the backing database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
