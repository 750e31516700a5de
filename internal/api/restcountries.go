package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/models"
)

const (
	// DefaultCountriesURL limits the payload to the fields the app renders
	DefaultCountriesURL = "https://restcountries.com/v3.1/all?fields=name,capital,population,languages,currencies,flags,maps"
	defaultTimeout      = 30 * time.Second
	userAgent           = "countrysearch/1.0"
	maxErrorBody        = 512
)

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Network error %d", e.StatusCode)
	}
	return fmt.Sprintf("Network error %d: %s", e.StatusCode, e.Body)
}

// CountriesClient handles restcountries API requests
type CountriesClient struct {
	httpClient *http.Client
	url        string
	logger     *log.Logger
}

// NewCountriesClient creates a client for the given endpoint.
// An empty url selects DefaultCountriesURL, a zero timeout selects 30 seconds.
func NewCountriesClient(url string, timeout time.Duration, logger *log.Logger) *CountriesClient {
	if url == "" {
		url = DefaultCountriesURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CountriesClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:    url,
		logger: logger,
	}
}

// URL returns the endpoint the client fetches
func (c *CountriesClient) URL() string {
	return c.url
}

// FetchAll downloads the full country list in a single request
func (c *CountriesClient) FetchAll(ctx context.Context) ([]models.Country, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Request failed", "url", c.url, "error", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if c.logger != nil {
			c.logger.Error("Unexpected status", "url", c.url, "status", resp.StatusCode)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var countries []models.Country
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		if c.logger != nil {
			c.logger.Error("Failed to decode countries", "error", err)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("Fetched countries", "count", len(countries), "elapsed", time.Since(start))
	}
	return countries, nil
}
