// Package geocode resolves free-text addresses against the Google Geocoding
// API. Provider status codes map to the user-facing messages the edit forms
// surface on abort.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Result is one resolved address.
type Result struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// StatusError carries a non-OK provider status plus the message shown to the
// user when the operation aborts.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string { return e.Message }

var statusMessages = map[string]string{
	"ZERO_RESULTS":     "Invalid address, try typing a new address",
	"REQUEST_DENIED":   "Something Is Wrong Your Request Was Denied",
	"OVER_QUERY_LIMIT": "All Requests Used Up",
}

// Client calls the geocoding provider over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, httpClient: &http.Client{}}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{apiKey: apiKey, baseURL: baseURL, httpClient: &http.Client{}}
}

// Geocode resolves the address to coordinates and a normalized address.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocoder: decode: %w", err)
	}

	if body.Status != "OK" {
		msg, ok := statusMessages[body.Status]
		if !ok {
			msg = "Invalid address, try typing a new address"
		}
		return nil, &StatusError{Status: body.Status, Message: msg}
	}
	if len(body.Results) == 0 {
		return nil, &StatusError{Status: "ZERO_RESULTS", Message: statusMessages["ZERO_RESULTS"]}
	}

	r := body.Results[0]
	return &Result{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
	}, nil
}

// UserMessage extracts the flash-worthy message from a geocoding failure.
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
