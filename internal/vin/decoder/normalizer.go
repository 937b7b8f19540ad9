package decoder

import (
	"context"
	"errors"

	"vindex/internal/vin/models"
)

// Normalize turns a raw provider payload into a canonical decoded record.
//
// A provider-reported error is propagated verbatim as a *ValidationError
// rather than masked. An empty results list or a result missing any of the
// expected fields fails with the fixed "Invalid VIN data" message.
func Normalize(vin string, raw models.RawVinResponse) (models.DecodedVehicle, error) {
	if raw.Error != "" {
		return models.DecodedVehicle{}, &ValidationError{Message: raw.Error}
	}
	if len(raw.Results) == 0 {
		return models.DecodedVehicle{}, &ValidationError{Message: invalidVinData}
	}

	first := raw.Results[0]
	if first.Make == nil || first.Model == nil || first.ModelYear == nil || first.BodyClass == nil {
		return models.DecodedVehicle{}, &ValidationError{Message: invalidVinData}
	}

	return models.DecodedVehicle{
		VIN:       vin,
		Make:      *first.Make,
		Model:     *first.Model,
		ModelYear: *first.ModelYear,
		BodyClass: *first.BodyClass,
		FromCache: false,
	}, nil
}

// Fetcher issues the single outbound provider call for a VIN.
type Fetcher interface {
	Fetch(ctx context.Context, vin string) (models.RawVinResponse, error)
}

// Decoder composes the remote fetch with normalization. Transport failures
// are converted into validation failures carrying the transport message, so
// callers see one failure shape for the whole decode path.
type Decoder struct {
	fetcher Fetcher
}

// New constructs a Decoder on top of a Fetcher.
func New(fetcher Fetcher) *Decoder {
	return &Decoder{fetcher: fetcher}
}

// Decode resolves vin against the provider and returns the canonical record.
func (d *Decoder) Decode(ctx context.Context, vin string) (models.DecodedVehicle, error) {
	raw, err := d.fetcher.Fetch(ctx, vin)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return models.DecodedVehicle{}, &ValidationError{Message: transportErr.Message}
		}
		return models.DecodedVehicle{}, &ValidationError{Message: unexpectedErrorPrefix + err.Error()}
	}
	return Normalize(vin, raw)
}
