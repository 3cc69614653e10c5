// ABOUTME: National Weather Service client for active alerts and point forecasts.
// ABOUTME: Upstream failures are reported as readable "Unable to fetch" messages, not errors.

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/2389/course-gateway/internal/upstream"
)

const (
	// DefaultBaseURL is the public NWS API.
	DefaultBaseURL = "https://api.weather.gov"
	// DefaultUserAgent identifies the gateway to the NWS API.
	DefaultUserAgent = "weather-app/1.0"

	geoJSON = "application/geo+json"

	// forecastPeriods is how many forecast periods are shown.
	forecastPeriods = 5
)

// Messages returned in place of data.
const (
	MsgAlertsUnavailable   = "Unable to fetch alerts or no alerts found."
	MsgNoAlerts            = "No active alerts for this state."
	MsgForecastUnavailable = "Unable to fetch forecast data for this location."
	MsgDetailedUnavailable = "Unable to fetch detailed forecast."
	MsgInvalidState        = "Invalid state code. Provide a two-letter US state code."
)

// Client queries the NWS API.
type Client struct {
	baseURL string
	fetcher *upstream.Fetcher
	logger  *slog.Logger
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Fetcher *upstream.Fetcher
	Logger  *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = upstream.New(upstream.Config{UserAgent: DefaultUserAgent})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, fetcher: fetcher, logger: logger.With("component", "weather")}
}

type alertProperties struct {
	Event       *string `json:"event"`
	AreaDesc    *string `json:"areaDesc"`
	Severity    *string `json:"severity"`
	Description *string `json:"description"`
	Instruction *string `json:"instruction"`
}

type alertsDoc struct {
	Features *[]struct {
		Properties alertProperties `json:"properties"`
	} `json:"features"`
}

func orDefault(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// formatAlert renders one alert.
func formatAlert(p alertProperties) string {
	return fmt.Sprintf("\nEvent: %s\nArea: %s\nSeverity: %s\nDescription: %s\nInstructions: %s\n",
		orDefault(p.Event, "Unknown"),
		orDefault(p.AreaDesc, "Unknown"),
		orDefault(p.Severity, "Unknown"),
		orDefault(p.Description, "No description available"),
		orDefault(p.Instruction, "No specific instructions provided"),
	)
}

// NormalizeState validates a two-letter state code and upper-cases it.
// Only ASCII letters are accepted since the code becomes a URL path segment.
func NormalizeState(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 2 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", false
		}
	}
	return s, true
}

// Alerts returns one formatted text per active alert for a state, or a single message.
func (c *Client) Alerts(ctx context.Context, state string) []string {
	body, err := c.fetcher.Get(ctx, upstream.Request{
		URL:    fmt.Sprintf("%s/alerts/active/area/%s", c.baseURL, url.PathEscape(state)),
		Accept: geoJSON,
	})
	if err != nil {
		c.logger.Warn("alerts request failed", "state", state, "error", err)
		return []string{MsgAlertsUnavailable}
	}

	var doc alertsDoc
	if err := json.Unmarshal(body, &doc); err != nil || doc.Features == nil {
		return []string{MsgAlertsUnavailable}
	}
	if len(*doc.Features) == 0 {
		return []string{MsgNoAlerts}
	}

	out := make([]string, 0, len(*doc.Features))
	for _, f := range *doc.Features {
		out = append(out, formatAlert(f.Properties))
	}
	return out
}

type pointsDoc struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type period struct {
	Name             string      `json:"name"`
	Temperature      json.Number `json:"temperature"`
	TemperatureUnit  string      `json:"temperatureUnit"`
	WindSpeed        string      `json:"windSpeed"`
	WindDirection    string      `json:"windDirection"`
	DetailedForecast string      `json:"detailedForecast"`
}

type forecastDoc struct {
	Properties struct {
		Periods []period `json:"periods"`
	} `json:"properties"`
}

func formatPeriods(periods []period) string {
	if len(periods) > forecastPeriods {
		periods = periods[:forecastPeriods]
	}
	parts := make([]string, 0, len(periods))
	for _, p := range periods {
		parts = append(parts, fmt.Sprintf("\n%s:\nTemperature: %s°%s\nWind: %s %s\nForecast: %s\n",
			p.Name, p.Temperature, p.TemperatureUnit, p.WindSpeed, p.WindDirection, p.DetailedForecast))
	}
	return strings.Join(parts, "\n---\n")
}

// Forecast returns the next forecast periods for a point, or a message.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64) string {
	body, err := c.fetcher.Get(ctx, upstream.Request{
		URL:    fmt.Sprintf("%s/points/%g,%g", c.baseURL, latitude, longitude),
		Accept: geoJSON,
	})
	if err != nil {
		c.logger.Warn("points request failed", "latitude", latitude, "longitude", longitude, "error", err)
		return MsgForecastUnavailable
	}
	var points pointsDoc
	if err := json.Unmarshal(body, &points); err != nil || points.Properties.Forecast == "" {
		return MsgForecastUnavailable
	}

	body, err = c.fetcher.Get(ctx, upstream.Request{URL: points.Properties.Forecast, Accept: geoJSON})
	if err != nil {
		c.logger.Warn("forecast request failed", "url", points.Properties.Forecast, "error", err)
		return MsgDetailedUnavailable
	}
	var forecast forecastDoc
	if err := json.Unmarshal(body, &forecast); err != nil {
		return MsgDetailedUnavailable
	}
	return formatPeriods(forecast.Properties.Periods)
}
