// ABOUTME: Tests for the weather group handlers against a stub NWS server.
// ABOUTME: Covers argument validation and alert content items.

package builtins

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/weather"
)

func TestWeatherHandlers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/alerts/active/area/CA" {
			_, _ = w.Write([]byte(`{"features":[{"properties":{"event":"Wind"}},{"properties":{"event":"Fog"}}]}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewWeatherGroup(weather.NewClient(weather.Config{BaseURL: srv.URL}))
	entry := g.EntryPoints()[WeatherGroupName]
	require.NotNil(t, entry)

	registry := packs.NewRegistry(nil)
	require.NoError(t, entry(registry))
	alert, ok := registry.Lookup("get-alert")
	require.True(t, ok)
	forecast, ok := registry.Lookup("get-forecast")
	require.True(t, ok)

	res, err := alert.Handler(context.Background(), nil, json.RawMessage(`{"state": "ca"}`))
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Contains(t, res[0].Text, "Event: Wind")
	assert.Contains(t, res[1].Text, "Event: Fog")

	before := hits.Load()
	res, err = alert.Handler(context.Background(), nil, json.RawMessage(`{"state": "California"}`))
	require.NoError(t, err)
	assert.Equal(t, weather.MsgInvalidState, res[0].Text)
	assert.Equal(t, before, hits.Load())

	for _, state := range []string{"..", "?x", "a/"} {
		res, err = alert.Handler(context.Background(), nil, json.RawMessage(`{"state": "`+state+`"}`))
		require.NoError(t, err)
		assert.Equal(t, weather.MsgInvalidState, res[0].Text, state)
	}
	assert.Equal(t, before, hits.Load())

	_, err = alert.Handler(context.Background(), nil, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))

	res, err = forecast.Handler(context.Background(), nil, json.RawMessage(`{"latitude": 37.4, "longitude": -122.1}`))
	require.NoError(t, err)
	assert.Equal(t, weather.MsgForecastUnavailable, res[0].Text)

	_, err = forecast.Handler(context.Background(), nil, json.RawMessage(`{"latitude": 137.4, "longitude": -122.1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	_, err = forecast.Handler(context.Background(), nil, json.RawMessage(`{"latitude": 37.4}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")
}
