// ABOUTME: Open Food Facts client for product calorie lookup.
// ABOUTME: A product miss yields zero calories; only transport errors fail.
package food

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Open Food Facts search endpoint.
const DefaultBaseURL = "https://world.openfoodfacts.org/cgi/search.pl"

// ErrUnavailable is returned for non-success responses.
var ErrUnavailable = errors.New("food service unavailable")

// Client queries Open Food Facts.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Products []struct {
		Nutriments struct {
			KcalPer100g float64 `json:"energy-kcal_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// Calories returns the kcal for weightG grams of the first product
// matching the search. Unknown products return 0 without error; the
// result is rounded to two decimals.
func (c *Client) Calories(ctx context.Context, product string, weightG float64) (float64, error) {
	params := url.Values{}
	params.Set("search_terms", product)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build food request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if len(body.Products) == 0 {
		return 0, nil
	}
	kcal := body.Products[0].Nutriments.KcalPer100g * weightG / 100
	return math.Round(kcal*100) / 100, nil
}
