// Package weather fetches current conditions from OpenWeather for the
// recommendation prompt.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Unavailable is the summary used whenever conditions cannot be fetched.
const Unavailable = "Hava durumu bilgisi alınamadı."

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Config for the OpenWeather client
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Conditions is the subset of the current-weather payload we use.
type Conditions struct {
	Description string
	TempC       float64
	Humidity    int
	WindSpeed   float64
}

type currentResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Client calls the OpenWeather current weather endpoint
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a weather client. An empty API key is allowed; every
// lookup then fails and Summary reports Unavailable.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Current returns the conditions in city. country is an ISO 3166 code.
func (c *Client) Current(ctx context.Context, city, country string) (*Conditions, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather API key is not configured")
	}

	q := url.Values{}
	q.Set("q", city+","+country)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "tr")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweather returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload currentResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	cond := &Conditions{
		Description: "Bilinmiyor",
		TempC:       payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		cond.Description = payload.Weather[0].Description
	}
	return cond, nil
}

// Summary formats the current conditions as one Turkish sentence. It never
// fails: errors are logged and Unavailable is returned.
func (c *Client) Summary(ctx context.Context, city, country string) string {
	cond, err := c.Current(ctx, city, country)
	if err != nil {
		c.logger.Warn("Weather lookup failed",
			zap.String("city", city),
			zap.Error(err))
		return Unavailable
	}
	return cond.String()
}

func (c *Conditions) String() string {
	return fmt.Sprintf("Mevcut Hava Durumu: %s, Sıcaklık: %.1f°C, Nem: %%%d, Rüzgar Hızı: %.1f m/s.",
		c.Description, c.TempC, c.Humidity, c.WindSpeed)
}
