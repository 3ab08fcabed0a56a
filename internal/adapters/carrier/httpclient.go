package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arc-self/tracehub/internal/platform/apperr"
)

// HTTPClient polls a single carrier-tracking HTTP endpoint
// (CARRIER_API_KEY-authenticated). The Tracking Ingestor already owns retry
// scheduling and backoff across polls; this client's only job is to
// classify a single call's outcome as permanent or transient, wrapping
// apperr.ErrUpstreamPermanent or apperr.ErrUpstreamTransient accordingly
// (4xx from the carrier is permanent, 5xx/timeout/network is transient).
type HTTPClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, APIKey: apiKey, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type trackingEventDTO struct {
	Status     string    `json:"status"`
	Time       time.Time `json:"time"`
	Location   string    `json:"location"`
	VesselName string    `json:"vessel_name"`
	VoyageNo   string    `json:"voyage_no"`
}

func (c *HTTPClient) FetchEvents(ctx context.Context, containerNumber string, since time.Time) ([]NormalizedEvent, error) {
	url := fmt.Sprintf("%s/containers/%s/events?since=%s", c.BaseURL, containerNumber, since.UTC().Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build carrier request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: carrier status %d", apperr.ErrUpstreamTransient, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: carrier rate-limited", apperr.ErrUpstreamTransient)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: carrier status %d", apperr.ErrUpstreamPermanent, resp.StatusCode)
	}

	var dtos []trackingEventDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: decode carrier response: %v", apperr.ErrUpstreamPermanent, err)
	}

	out := make([]NormalizedEvent, len(dtos))
	for i, d := range dtos {
		out[i] = NormalizedEvent{
			Status: d.Status, Time: d.Time, Location: d.Location,
			VesselName: d.VesselName, VoyageNo: d.VoyageNo, Source: "carrier_api",
		}
	}
	return out, nil
}
