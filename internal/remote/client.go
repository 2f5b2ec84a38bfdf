// Package remote fetches listing collections from the upstream listing API
// and hydrates the store with them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/property-listing/internal/model"
)

// ErrNoBaseURL is returned when the client has no upstream configured.
var ErrNoBaseURL = errors.New("remote: base url not configured")

const (
	rentPath = "/apartments/rent"
	salePath = "/apartments/sale"

	maxBodyBytes = 8 << 20
)

// Fetcher loads the rental and sale collections from somewhere.
type Fetcher interface {
	FetchRentApartments(ctx context.Context) ([]model.Apartment, error)
	FetchSaleApartments(ctx context.Context) ([]model.SaleApartment, error)
}

// Client talks to the upstream listing API over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchRentApartments returns every rental apartment the upstream knows.
func (c *Client) FetchRentApartments(ctx context.Context) ([]model.Apartment, error) {
	var out []model.Apartment
	if err := c.getList(ctx, rentPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchSaleApartments returns every sale listing the upstream knows.
func (c *Client) FetchSaleApartments(ctx context.Context) ([]model.SaleApartment, error) {
	var out []model.SaleApartment
	if err := c.getList(ctx, salePath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getList decodes either a bare JSON array or an {"items": [...]} envelope
// into dst.
func (c *Client) getList(ctx context.Context, path string, dst any) error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("remote: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("remote: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote: GET %s: unexpected status %d", path, resp.StatusCode)
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var env struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("remote: decode %s: %w", path, err)
		}
		body = env.Items
	}
	if len(body) == 0 || string(body) == "null" {
		body = []byte("[]")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("remote: decode %s: %w", path, err)
	}
	return nil
}
