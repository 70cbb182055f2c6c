package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/example/ride-hailing/internal/models"
)

// ErrNoMatch is returned when the provider resolves an address to zero places.
var ErrNoMatch = errors.New("geocode: no matching places")

// UpstreamError wraps a failed call to the geocoding provider: transport
// errors, non-2xx statuses, and unparseable bodies all land here.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("geocode %s: provider returned status %d", e.Op, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Route is a single origin-to-destination matrix cell.
type Route struct {
	DistanceMeters  int `json:"distance"`
	DurationSeconds int `json:"duration"`
}

// Client talks to a Pelias-style geocoding provider with a matrix endpoint.
// One attempt per call, no retries; callers bound the wait via ctx.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Cache      *Cache // optional, Resolve only
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type featureResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Resolve turns a free-text address into the coordinates of the provider's
// first match. Zero features is ErrNoMatch, not an empty coordinate.
func (c *Client) Resolve(ctx context.Context, address string) (models.Coord, error) {
	if c.Cache != nil {
		if coord, ok := c.Cache.Get(address); ok {
			return coord, nil
		}
	}
	u := fmt.Sprintf("%s/geocode/search?api_key=%s&size=1&text=%s",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(address))
	var out featureResponse
	if err := c.getJSON(ctx, "resolve", u, &out); err != nil {
		return models.Coord{}, err
	}
	if len(out.Features) == 0 {
		return models.Coord{}, ErrNoMatch
	}
	coords := out.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return models.Coord{}, &UpstreamError{Op: "resolve", Err: errors.New("malformed geometry")}
	}
	coord := models.Coord{Lat: coords[1], Lng: coords[0]}
	if c.Cache != nil {
		c.Cache.Set(address, coord)
	}
	return coord, nil
}

// Suggest returns address labels completing the given prefix, best first.
// No matches is a valid empty answer, never an error.
func (c *Client) Suggest(ctx context.Context, prefix string) ([]string, error) {
	u := fmt.Sprintf("%s/geocode/autocomplete?api_key=%s&text=%s",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(prefix))
	var out featureResponse
	if err := c.getJSON(ctx, "suggest", u, &out); err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(out.Features))
	for _, f := range out.Features {
		labels = append(labels, f.Properties.Label)
	}
	return labels, nil
}

// RouteMatrix looks up road distance and travel time between two points.
// For a two-point query the provider's [0][1] cell is origin->destination;
// values are rounded up to whole meters/seconds.
func (c *Client) RouteMatrix(ctx context.Context, from, to models.Coord) (Route, error) {
	body, _ := json.Marshal(map[string]any{
		"locations": [][]float64{{from.Lng, from.Lat}, {to.Lng, to.Lat}},
		"metrics":   []string{"distance", "duration"},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v2/matrix/driving-car", bytes.NewReader(body))
	if err != nil {
		return Route{}, &UpstreamError{Op: "matrix", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Route{}, &UpstreamError{Op: "matrix", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Route{}, &UpstreamError{Op: "matrix", Status: resp.StatusCode}
	}
	var out struct {
		Distances [][]float64 `json:"distances"`
		Durations [][]float64 `json:"durations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Route{}, &UpstreamError{Op: "matrix", Err: err}
	}
	if len(out.Distances) < 1 || len(out.Distances[0]) < 2 ||
		len(out.Durations) < 1 || len(out.Durations[0]) < 2 {
		return Route{}, &UpstreamError{Op: "matrix", Err: errors.New("matrix missing origin-destination cell")}
	}
	return Route{
		DistanceMeters:  int(math.Ceil(out.Distances[0][1])),
		DurationSeconds: int(math.Ceil(out.Durations[0][1])),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	return nil
}
