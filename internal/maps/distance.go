// Package maps wraps the hosted distance-matrix endpoint.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Distinct failure kinds so callers can choose between a graceful
// "unavailable" state and a hard error.
var (
	ErrMissingLocation = errors.New("origin and destination are required")
	ErrUpstreamStatus  = errors.New("distance matrix request rejected")
	ErrUnavailable     = errors.New("no route available for this origin/destination")
)

// Result is the travel-time answer for one origin/destination pair.
type Result struct {
	DurationText    string `json:"durationText"`
	DurationSeconds int    `json:"durationSeconds"`
	DistanceText    string `json:"distanceText"`
}

// Client calls the distance-matrix API. One synchronous request per lookup,
// no retries.
type Client struct {
	http   *resty.Client
	apiKey string
}

// New creates a distance client against the hosted endpoint.
func New(apiKey string) *Client {
	return NewWithBaseURL(apiKey, defaultBaseURL)
}

// NewWithBaseURL allows tests to point the client at a stub server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	return &Client{http: c, apiKey: apiKey}
}

type matrixValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type matrixElement struct {
	Status            string       `json:"status"`
	Duration          *matrixValue `json:"duration"`
	DurationInTraffic *matrixValue `json:"duration_in_traffic"`
	Distance          *matrixValue `json:"distance"`
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// Distance resolves travel time and distance from origin (typically
// "lat,long") to a free-text destination address. The traffic-aware
// duration is preferred, falling back to the plain duration.
func (c *Client) Distance(ctx context.Context, origin, destination string) (*Result, error) {
	if origin == "" || destination == "" {
		return nil, ErrMissingLocation
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origins":        origin,
			"destinations":   destination,
			"departure_time": "now",
			"key":            c.apiKey,
		}).
		Get("/maps/api/distancematrix/json")
	if err != nil {
		return nil, fmt.Errorf("distance matrix request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrUpstreamStatus, resp.StatusCode())
	}

	var body matrixResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode distance matrix response: %w", err)
	}
	if body.Status != "OK" {
		return nil, fmt.Errorf("%w: status %s", ErrUpstreamStatus, body.Status)
	}
	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return nil, ErrUnavailable
	}

	el := body.Rows[0].Elements[0]
	if el.Status != "OK" {
		return nil, fmt.Errorf("%w: element status %s", ErrUnavailable, el.Status)
	}

	duration := el.Duration
	if el.DurationInTraffic != nil {
		duration = el.DurationInTraffic
	}
	if duration == nil {
		return nil, ErrUnavailable
	}

	out := &Result{
		DurationText:    duration.Text,
		DurationSeconds: duration.Value,
	}
	if el.Distance != nil {
		out.DistanceText = el.Distance.Text
	}
	return out, nil
}
