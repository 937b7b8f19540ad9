package decoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vindex/internal/vin/models"
)

// Config carries the adjustable parameters of the remote decode call.
type Config struct {
	BaseURL          string
	Format           string
	DefaultModelYear string
	Timeout          time.Duration
}

// Client issues a single outbound request per Fetch against the decoding
// provider. It performs no retries and no backoff; transport failures are
// folded into a *TransportError so the method never panics and never leaks
// an opaque error shape.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a provider client. A zero Timeout leaves the request
// bounded only by the caller's context.
func NewClient(cfg Config) *Client {
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch retrieves the raw decode payload for vin. On any transport-level
// failure it returns a *TransportError carrying the underlying cause.
func (c *Client) Fetch(ctx context.Context, vin string) (models.RawVinResponse, error) {
	endpoint := fmt.Sprintf("%s/%s?format=%s&modelyear=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(vin),
		url.QueryEscape(c.cfg.Format),
		url.QueryEscape(c.cfg.DefaultModelYear),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.RawVinResponse{}, &TransportError{Message: unexpectedErrorPrefix + err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.RawVinResponse{}, &TransportError{Message: requestErrorPrefix + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return models.RawVinResponse{}, &TransportError{
			Message: requestErrorPrefix + fmt.Sprintf("unexpected status %d from decoder", resp.StatusCode),
		}
	}

	var raw models.RawVinResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.RawVinResponse{}, &TransportError{Message: unexpectedErrorPrefix + err.Error()}
	}
	return raw, nil
}
