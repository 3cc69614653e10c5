// ABOUTME: Weather group: active NWS alerts by state and point forecasts.
// ABOUTME: Exposes a named entry point rather than RegisterAll.

package builtins

import (
	"context"
	"encoding/json"

	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/weather"
)

// WeatherGroupName is the discovery name of the weather group.
const WeatherGroupName = "weather"

var (
	getAlertShape = packs.Shape{
		Fields: []packs.Field{{
			Name:        "state",
			Type:        packs.TypeString,
			Description: "Two-letter US state code (e.g. CA, NY)",
		}},
		Required: []string{"state"},
	}
	getForecastShape = packs.Shape{
		Fields: []packs.Field{
			{Name: "latitude", Type: packs.TypeNumber, Description: "Latitude of the location"},
			{Name: "longitude", Type: packs.TypeNumber, Description: "Longitude of the location"},
		},
		Required: []string{"latitude", "longitude"},
	}
)

type getAlertRequest struct {
	State string `json:"state"`
}

type getForecastRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherGroup registers the weather commands.
type WeatherGroup struct {
	client *weather.Client
}

var _ packs.EntryPointer = (*WeatherGroup)(nil)

// NewWeatherGroup creates the group over an NWS client.
func NewWeatherGroup(client *weather.Client) *WeatherGroup {
	return &WeatherGroup{client: client}
}

// Name implements packs.Group.
func (g *WeatherGroup) Name() string {
	return WeatherGroupName
}

// EntryPoints implements packs.EntryPointer.
func (g *WeatherGroup) EntryPoints() map[string]packs.RegisterFunc {
	return map[string]packs.RegisterFunc{WeatherGroupName: g.register}
}

func (g *WeatherGroup) register(r packs.Registrar) error {
	return registerEach(r, []packs.Command{
		{
			Descriptor: packs.Descriptor{
				Name:        "get-alert",
				Title:       "Weather Alerts",
				Description: "Get weather alerts for a US state",
				Input:       getAlertShape,
			},
			Handler: g.getAlert,
		},
		{
			Descriptor: packs.Descriptor{
				Name:        "get-forecast",
				Title:       "Weather Forecast",
				Description: "Get weather forecast for a location",
				Input:       getForecastShape,
			},
			Handler: g.getForecast,
		},
	})
}

func (g *WeatherGroup) getAlert(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req getAlertRequest
	if err := packs.DecodeArgs(args, getAlertShape, &req); err != nil {
		return nil, err
	}
	state, ok := weather.NormalizeState(req.State)
	if !ok {
		return packs.TextResult(weather.MsgInvalidState), nil
	}
	return packs.TextResult(g.client.Alerts(ctx, state)...), nil
}

func (g *WeatherGroup) getForecast(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req getForecastRequest
	if err := packs.DecodeArgs(args, getForecastShape, &req); err != nil {
		return nil, err
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, packs.InvalidArgument("latitude", "must be between -90 and 90, got %v", req.Latitude)
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, packs.InvalidArgument("longitude", "must be between -180 and 180, got %v", req.Longitude)
	}
	return packs.TextResult(g.client.Forecast(ctx, req.Latitude, req.Longitude)), nil
}
