// Package export serializes the full VIN table to a columnar file for bulk
// consumption downstream.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"vindex/internal/vin/models"
)

// Filename is the fixed name of the exported file.
const Filename = "vin_cache.parquet"

// Row is the parquet schema: the five persisted columns, in table order. The
// derived cached flag is not part of the export.
type Row struct {
	VIN       string `parquet:"vin"`
	Make      string `parquet:"make"`
	Model     string `parquet:"model"`
	ModelYear string `parquet:"model_year"`
	BodyClass string `parquet:"body_class"`
}

// WriteParquet writes records to dir/vin_cache.parquet, replacing any
// previous export, and returns the full path.
func WriteParquet(dir string, records []models.DecodedVehicle) (string, error) {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, Row{
			VIN:       record.VIN,
			Make:      record.Make,
			Model:     record.Model,
			ModelYear: record.ModelYear,
			BodyClass: record.BodyClass,
		})
	}

	path := filepath.Join(dir, Filename)
	if err := parquet.WriteFile(path, rows); err != nil {
		return "", fmt.Errorf("write parquet export: %w", err)
	}
	return path, nil
}
