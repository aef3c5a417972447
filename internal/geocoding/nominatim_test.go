package geocoding

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(url string) *NominatimGeocoder {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewNominatimGeocoder(Options{BaseURL: url, UserAgent: "test-agent/1.0"}, nil, logger)
}

func TestGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bangalore", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"12.9716","lon":"77.5946","display_name":"Bengaluru"}]`))
	}))
	defer server.Close()

	p, err := newTestGeocoder(server.URL).Geocode(context.Background(), "Bangalore")

	require.NoError(t, err)
	assert.InDelta(t, 12.9716, p.Latitude, 1e-9)
	assert.InDelta(t, 77.5946, p.Longitude, 1e-9)
}

func TestGeocode_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestGeocoder(server.URL).Geocode(context.Background(), "Nowhere")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrLocationNotFound)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGeocode_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestGeocoder(server.URL).Geocode(context.Background(), "Paris")

	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrNotFound)
}

func TestGeocode_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	for i := 0; i < breakerThreshold; i++ {
		_, err := g.Geocode(context.Background(), "Paris")
		require.Error(t, err)
	}

	_, err := g.Geocode(context.Background(), "Paris")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(breakerThreshold), calls.Load())
}

func TestGeocode_NotFoundKeepsBreakerClosed(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	for i := 0; i < breakerThreshold+2; i++ {
		_, err := g.Geocode(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, service.ErrLocationNotFound)
	}
	assert.Equal(t, int32(breakerThreshold+2), calls.Load())
}

func TestGeocode_CanceledRequestsKeepBreakerClosed(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522","display_name":"Paris"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < breakerThreshold+2; i++ {
		_, err := g.Geocode(canceled, "Paris")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	}

	p, err := g.Geocode(context.Background(), "Paris")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, p.Latitude, 1e-9)
	assert.Equal(t, int32(1), calls.Load())
}
