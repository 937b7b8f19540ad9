package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"vindex/internal/vin/models"
	"vindex/pkg/platform/sentinel"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS vins (
	vin        TEXT PRIMARY KEY,
	make       TEXT NOT NULL,
	model      TEXT NOT NULL,
	model_year TEXT NOT NULL,
	body_class TEXT NOT NULL
);`

// PostgresStore persists the VIN table in PostgreSQL for deployments that
// prefer a networked backend over the embedded default.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to PostgreSQL with the given DSN and bootstraps the
// schema.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap postgres schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgres wraps an existing database handle, used by integration tests
// that manage the connection lifecycle themselves.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Lookup(ctx context.Context, vin string) (models.DecodedVehicle, error) {
	var record models.DecodedVehicle
	err := s.db.QueryRowContext(ctx,
		`SELECT vin, make, model, model_year, body_class FROM vins WHERE vin = $1`, vin,
	).Scan(&record.VIN, &record.Make, &record.Model, &record.ModelYear, &record.BodyClass)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DecodedVehicle{}, fmt.Errorf("vin record not found: %w", sentinel.ErrNotFound)
		}
		return models.DecodedVehicle{}, fmt.Errorf("lookup vin record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Insert(ctx context.Context, record models.DecodedVehicle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vins (vin, make, model, model_year, body_class)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (vin) DO UPDATE SET
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			model_year = EXCLUDED.model_year,
			body_class = EXCLUDED.body_class`,
		record.VIN, record.Make, record.Model, record.ModelYear, record.BodyClass,
	)
	if err != nil {
		return fmt.Errorf("insert vin record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, vin string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vins WHERE vin = $1`, vin)
	if err != nil {
		return false, fmt.Errorf("delete vin record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete vin record: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) ExportAll(ctx context.Context) ([]models.DecodedVehicle, error) {
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
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
