package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/forecast-enrichment-service/internal/config"
	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

var (
	errRateLimited = errors.New("rate limited by upstream")
	errServerError = errors.New("upstream server error")
)

// Client fetches 5-day/3-hour forecasts from an OpenWeatherMap-compatible
// API. Requests go through a local rate limiter and a circuit breaker so a
// misbehaving upstream cannot be hammered; the pipeline's own retry loop
// handles recovery.
type Client struct {
	apiKey     string
	city       string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a forecast API client from config.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		apiKey: cfg.LiveAPIKey,
		city:   cfg.City,
		httpClient: &http.Client{
			Timeout: cfg.LiveTimeout,
		},
		baseURL: cfg.LiveBaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.LiveRateRPS), cfg.LiveRateBurst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "owm-forecast",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		logger: logger,
	}
}

// FetchForecast retrieves the forecast list for the configured city. The
// 40-slot window (cnt=40) matches the 5 days of 3-hourly samples the API
// exposes on the free tier.
func (c *Client) FetchForecast(ctx context.Context) (domain.SourceInput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.SourceInput{}, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{
		"q":     {c.city},
		"appid": {c.apiKey},
		"units": {"metric"},
		"cnt":   {"40"},
	}
	fullURL := c.baseURL + "/forecast?" + params.Encode()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, fullURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.SourceInput{}, fmt.Errorf("circuit breaker open: %w", err)
		}
		return domain.SourceInput{}, err
	}

	resp := result.(*forecastResponse)
	city := c.city
	if resp.City.Name != "" {
		city = resp.City.Name
	}

	c.logger.Debug("live forecast fetched", "city", city, "samples", len(resp.List))

	return domain.SourceInput{
		Mode: domain.SourceLive,
		City: city,
		Live: resp.List,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*forecastResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", errServerError, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("forecast API error: status %d: %s", resp.StatusCode, body)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &decoded, nil
}

// Forecast API response envelope. The list entries carry the raw sample
// shape the normalizer consumes directly.

type forecastResponse struct {
	City cityInfo               `json:"city"`
	List []domain.RawLiveSample `json:"list"`
}

type cityInfo struct {
	Name string `json:"name"`
}
