package esi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const baseURL = "https://esi.evetech.net/latest"

// Client is a rate-limited ESI HTTP client.
type Client struct {
	http *http.Client
	sem  chan struct{}
	base string // swapped for a test server in tests
}

// NewClient creates an ESI client with rate limiting.
// Uses 50 concurrent connections (ESI allows up to 150 error-free requests/sec).
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		sem:  make(chan struct{}, 50),
		base: baseURL,
	}
}

// HealthCheck pings ESI to verify connectivity.
func (c *Client) HealthCheck() bool {
	req, err := http.NewRequest("GET", c.base+"/status/?datasource=tranquility", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "eve-atlas/1.0 (github.com)")
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "eve-atlas/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ESI %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
