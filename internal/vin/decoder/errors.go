package decoder

// Failure message prefixes surfaced through the API. The exact wording is
// part of the response contract.
const (
	requestErrorPrefix    = "An error occurred during the request: "
	unexpectedErrorPrefix = "An unexpected error occurred: "

	// invalidVinData is the fixed user-facing message for a provider payload
	// that is missing the expected results or fields.
	invalidVinData = "Invalid VIN data"
)

// TransportError reports a network or HTTP level failure reaching the
// provider. The client never returns anything else on failure.
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string { return e.Message }

// ValidationError reports a payload that could not be normalized into a
// decoded record, or a provider-reported failure passed through verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
