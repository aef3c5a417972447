package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/repository/memory"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/shenikar/travel_safety_system/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	bangalore = models.Point{Latitude: 12.97, Longitude: 77.59}
	mysore    = models.Point{Latitude: 12.30, Longitude: 76.64}
)

type analyzerFixture struct {
	svc       service.AnalyzerService
	geocoder  *mocks.MockGeocoder
	crimes    *memory.CrimeRepository
	incidents *memory.IncidentRepository
	alerts    *memory.WeatherAlertRepository
	trips     *memory.TripRepository
}

func newAnalyzerFixture(t *testing.T) *analyzerFixture {
	ctrl := gomock.NewController(t)
	f := &analyzerFixture{
		geocoder:  mocks.NewMockGeocoder(ctrl),
		crimes:    memory.NewCrimeRepository(),
		incidents: memory.NewIncidentRepository(),
		alerts:    memory.NewWeatherAlertRepository(),
		trips:     memory.NewTripRepository(),
	}
	f.svc = service.NewAnalyzerService(f.geocoder, f.crimes, f.incidents, f.alerts, f.trips, 0.1, quietLogger())
	return f
}

// failingCrimes возвращает ошибку хранилища на любой запрос
type failingCrimes struct{}

func (failingCrimes) Create(context.Context, *models.Crime) error { return nil }

func (failingCrimes) FindInBox(context.Context, models.BoundingBox) ([]*models.Crime, error) {
	return nil, fmt.Errorf("failed to find crimes: %w", service.ErrPersistence)
}

func TestAnalyzeArea_CollectsOccurrences(t *testing.T) {
	f := newAnalyzerFixture(t)
	ctx := context.Background()

	f.geocoder.EXPECT().Geocode(gomock.Any(), "Mysore").Return(mysore, nil).Times(1)
	f.geocoder.EXPECT().Geocode(gomock.Any(), "Bangalore").Return(bangalore, nil).Times(1)

	crime := &models.Crime{Location: mysore, CrimeType: "Theft", OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.crimes.Create(ctx, crime))

	incident := &models.Incident{UserID: "u9", Location: bangalore, Category: models.CategoryAccident, Status: models.StatusOngoing, Severity: 2}
	require.NoError(t, f.incidents.Create(ctx, incident))
	require.NoError(t, f.incidents.Create(ctx, &models.Incident{UserID: "u9", Location: models.Point{Latitude: 40, Longitude: 40}}))

	start := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	storm := &models.WeatherAlert{Location: mysore, AlertType: models.AlertStorm, Severity: models.WeatherSevere, StartTime: &start, EndTime: &end}
	require.NoError(t, f.alerts.Create(ctx, storm))
	expiredEnd := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.alerts.Create(ctx, &models.WeatherAlert{Location: mysore, AlertType: models.AlertFog, Severity: models.WeatherMinor, EndTime: &expiredEnd}))

	analysis, err := f.svc.AnalyzeArea(ctx, "u1", "Bangalore", "Mysore", "2024-06-10")

	require.NoError(t, err)
	require.Len(t, analysis.Occurrences.Crimes, 1)
	assert.Equal(t, crime.ID, analysis.Occurrences.Crimes[0].ID)
	require.Len(t, analysis.Occurrences.Incidents, 1)
	assert.Equal(t, incident.ID, analysis.Occurrences.Incidents[0].ID)
	require.Len(t, analysis.Occurrences.Weather, 1)
	assert.Equal(t, storm.ID, analysis.Occurrences.Weather[0].ID)

	require.NotNil(t, analysis.Route)
	assert.Equal(t, "u1", analysis.Route.UserID)
	assert.Equal(t, mysore, analysis.Route.DestinationLocation)
	assert.Equal(t, bangalore, analysis.Route.SourceLocation)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), analysis.Route.PlannedDate)

	trips, err := f.svc.ListTrips(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, analysis.Route.ID, trips[0].ID)
}

func TestAnalyzeArea_DeduplicatesOverlappingAreas(t *testing.T) {
	f := newAnalyzerFixture(t)
	ctx := context.Background()

	f.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(bangalore, nil).Times(2)
	require.NoError(t, f.crimes.Create(ctx, &models.Crime{Location: bangalore, CrimeType: "Theft", OccurredAt: time.Now()}))

	analysis, err := f.svc.AnalyzeArea(ctx, "u1", "MG Road", "Indiranagar", "2024-06-10")

	require.NoError(t, err)
	assert.Len(t, analysis.Occurrences.Crimes, 1)
	assert.NotNil(t, analysis.Occurrences.Incidents)
	assert.Empty(t, analysis.Occurrences.Incidents)
}

func TestAnalyzeArea_InvalidInput(t *testing.T) {
	cases := []struct {
		name, userID, source, destination, date string
	}{
		{name: "bad date", userID: "u1", source: "A", destination: "B", date: "10/06/2024"},
		{name: "impossible date", userID: "u1", source: "A", destination: "B", date: "2024-02-30"},
		{name: "empty user", userID: "", source: "A", destination: "B", date: "2024-06-10"},
		{name: "empty source", userID: "u1", source: " ", destination: "B", date: "2024-06-10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAnalyzerFixture(t)

			_, err := f.svc.AnalyzeArea(context.Background(), tc.userID, tc.source, tc.destination, tc.date)

			assert.ErrorIs(t, err, service.ErrInvalidParameter)
		})
	}
}

func TestAnalyzeArea_UnknownLocation(t *testing.T) {
	f := newAnalyzerFixture(t)
	ctx := context.Background()

	f.geocoder.EXPECT().Geocode(gomock.Any(), "Atlantis").
		Return(models.Point{}, fmt.Errorf("geocoding: %w", service.ErrLocationNotFound)).Times(1)

	_, err := f.svc.AnalyzeArea(ctx, "u1", "Bangalore", "Atlantis", "2024-06-10")

	assert.ErrorIs(t, err, service.ErrNotFound)
	trips, _ := f.trips.ListByUser(ctx, "u1")
	assert.Empty(t, trips)
}

func TestAnalyzeArea_GeocoderFailure(t *testing.T) {
	f := newAnalyzerFixture(t)

	f.geocoder.EXPECT().Geocode(gomock.Any(), "Mysore").Return(models.Point{}, errors.New("dial tcp: timeout")).Times(1)

	_, err := f.svc.AnalyzeArea(context.Background(), "u1", "Bangalore", "Mysore", "2024-06-10")

	assert.ErrorIs(t, err, service.ErrUpstream)
	assert.NotErrorIs(t, err, service.ErrNotFound)
}

func TestAnalyzeArea_FailFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	geocoder := mocks.NewMockGeocoder(ctrl)
	trips := memory.NewTripRepository()
	svc := service.NewAnalyzerService(geocoder, failingCrimes{}, memory.NewIncidentRepository(),
		memory.NewWeatherAlertRepository(), trips, 0.1, quietLogger())

	geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(bangalore, nil).Times(2)

	analysis, err := svc.AnalyzeArea(context.Background(), "u1", "A", "B", "2024-06-10")

	require.Error(t, err)
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, service.ErrPersistence)
	saved, _ := trips.ListByUser(context.Background(), "u1")
	assert.Empty(t, saved)
}

func TestListTrips_RequiresUser(t *testing.T) {
	f := newAnalyzerFixture(t)

	_, err := f.svc.ListTrips(context.Background(), " ")

	assert.ErrorIs(t, err, service.ErrInvalidParameter)
}
