// Package weather wraps the OpenWeatherMap current-conditions API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org"

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// NewWithBaseURL exists for tests against a local fake server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = baseURL
	return c
}

type currentResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
}

// Current returns a spoken one-liner for the city's current weather.
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("could not get weather for %s (status %d)", city, resp.StatusCode)
	}

	var cur currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&cur); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}
	if len(cur.Weather) == 0 {
		return "", fmt.Errorf("no conditions reported for %s", city)
	}

	return fmt.Sprintf("Weather in %s: %s, temperature %.0f°C, feels like %.0f°C, humidity %d%%.",
		city, cur.Weather[0].Description, cur.Main.Temp, cur.Main.FeelsLike, cur.Main.Humidity), nil
}
