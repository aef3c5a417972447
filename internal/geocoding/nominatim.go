// Package geocoding переводит названия мест в координаты через Nominatim (OpenStreetMap).
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	cacheKeyPrefix   = "geocode:"
	requestTimeout   = 10 * time.Second
	breakerThreshold = 5
)

type Options struct {
	BaseURL   string
	UserAgent string
	CacheTTL  time.Duration
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder реализует service.Geocoder. Удачные ответы кешируются в Redis,
// если клиент Redis передан. Вызовы к Nominatim идут через circuit breaker.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     *redis.Client
	cacheTTL  time.Duration
	cb        *gobreaker.CircuitBreaker[models.Point]
	logger    *logrus.Logger
}

var _ service.Geocoder = (*NominatimGeocoder)(nil)

func NewNominatimGeocoder(opts Options, cache *redis.Client, logger *logrus.Logger) *NominatimGeocoder {
	g := &NominatimGeocoder{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		client:    &http.Client{Timeout: requestTimeout},
		cache:     cache,
		cacheTTL:  opts.CacheTTL,
		logger:    logger,
	}

	g.cb = gobreaker.NewCircuitBreaker[models.Point](gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerThreshold
		},
		// Ненайденный адрес - корректный ответ сервиса, он не должен размыкать цепь.
		// Отмена запроса клиентом тоже ничего не говорит о состоянии Nominatim.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, service.ErrLocationNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	return g
}

// Geocode возвращает координаты первого результата поиска
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (models.Point, error) {
	log := g.logger.WithFields(logrus.Fields{
		"component": "geocoder",
		"query":     query,
	})

	key := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))
	if p, ok := g.fromCache(ctx, log, key); ok {
		log.Debug("Geocode served from cache")
		return p, nil
	}

	p, err := g.cb.Execute(func() (models.Point, error) {
		return g.search(ctx, query)
	})
	if err != nil {
		return models.Point{}, err
	}

	g.toCache(ctx, log, key, p)
	return p, nil
}

func (g *NominatimGeocoder) search(ctx context.Context, query string) (models.Point, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.Point{}, fmt.Errorf("geocoding: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Point{}, fmt.Errorf("geocoding: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Point{}, fmt.Errorf("geocoding: unexpected status code %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Point{}, fmt.Errorf("geocoding: failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return models.Point{}, fmt.Errorf("geocoding: %q: %w", query, service.ErrLocationNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.Point{}, fmt.Errorf("geocoding: bad latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.Point{}, fmt.Errorf("geocoding: bad longitude %q: %w", results[0].Lon, err)
	}
	return models.Point{Latitude: lat, Longitude: lng}, nil
}

func (g *NominatimGeocoder) fromCache(ctx context.Context, log *logrus.Entry, key string) (models.Point, bool) {
	if g.cache == nil {
		return models.Point{}, false
	}
	val, err := g.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("Failed to read geocode cache")
		}
		return models.Point{}, false
	}
	var p models.Point
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		log.WithError(err).Warn("Corrupted geocode cache entry")
		return models.Point{}, false
	}
	return p, true
}

func (g *NominatimGeocoder) toCache(ctx context.Context, log *logrus.Entry, key string, p models.Point) {
	if g.cache == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, data, g.cacheTTL).Err(); err != nil {
		log.WithError(err).Warn("Failed to write geocode cache")
	}
}
