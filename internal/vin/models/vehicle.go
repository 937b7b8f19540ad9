package models

// DecodedVehicle is one VIN's decoded attributes. VIN is the primary key in
// the store; the remaining attribute fields are provider-supplied free text.
type DecodedVehicle struct {
	VIN       string `json:"vin"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	ModelYear string `json:"model_year"`
	BodyClass string `json:"body_class"`

	// FromCache is derived at read time and never persisted: true when the
	// record was served from the store without a remote call.
	FromCache bool `json:"cached"`
}

// RawVinResponse mirrors the provider's DecodeVinValues payload. Error is a
// provider- or client-reported failure message; when set, Results must be
// ignored.
type RawVinResponse struct {
	Count          int            `json:"Count"`
	Message        string         `json:"Message"`
	SearchCriteria string         `json:"SearchCriteria"`
	Results        []RawVinResult `json:"Results"`
	Error          string         `json:"error,omitempty"`
}

// RawVinResult is a single decoded entry. Fields are pointers so an absent
// key can be told apart from a present-but-empty value.
type RawVinResult struct {
	Make      *string `json:"Make"`
	Model     *string `json:"Model"`
	ModelYear *string `json:"ModelYear"`
	BodyClass *string `json:"BodyClass"`
}
