package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shenikar/travel_safety_system/internal/config"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/repository/memory"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmin() (service.AdminService, *memory.IncidentRepository, *memory.TripRepository) {
	incidents := memory.NewIncidentRepository()
	trips := memory.NewTripRepository()
	cfg := &config.Config{StatsTimeWindowMinutes: 60}
	svc := service.NewAdminService(incidents, memory.NewCrimeRepository(), memory.NewWeatherAlertRepository(), trips, quietLogger(), cfg)
	return svc, incidents, trips
}

func TestCreateCrime(t *testing.T) {
	svc, _, _ := newTestAdmin()
	ctx := context.Background()

	crime := &models.Crime{Location: bangalore, CrimeType: "Theft", OccurredAt: time.Now()}
	require.NoError(t, svc.CreateCrime(ctx, crime))
	assert.Equal(t, models.CrimeStatusActive, crime.Status)
	assert.Equal(t, models.MinSeverity, crime.Severity)

	err := svc.CreateCrime(ctx, &models.Crime{Location: models.Point{Latitude: 100}, CrimeType: "Theft", OccurredAt: time.Now()})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)

	err = svc.CreateCrime(ctx, &models.Crime{Location: bangalore, OccurredAt: time.Now()})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)
}

func TestCreateWeatherAlert(t *testing.T) {
	svc, _, _ := newTestAdmin()
	ctx := context.Background()

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	require.NoError(t, svc.CreateWeatherAlert(ctx, &models.WeatherAlert{Location: mysore, AlertType: models.AlertFlood, Severity: models.WeatherModerate}))

	err := svc.CreateWeatherAlert(ctx, &models.WeatherAlert{Location: mysore, AlertType: "Meteor", Severity: models.WeatherModerate})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)

	err = svc.CreateWeatherAlert(ctx, &models.WeatherAlert{Location: mysore, AlertType: models.AlertFlood, Severity: models.WeatherModerate, StartTime: &start, EndTime: &end})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)
}

func TestGetStats(t *testing.T) {
	svc, incidents, trips := newTestAdmin()
	ctx := context.Background()

	require.NoError(t, incidents.Create(ctx, &models.Incident{UserID: "u1", Location: bangalore}))
	require.NoError(t, incidents.Create(ctx, &models.Incident{UserID: "u2", Location: mysore}))
	require.NoError(t, trips.Create(ctx, &models.Trip{UserID: "p1"}))
	require.NoError(t, trips.Create(ctx, &models.Trip{UserID: "p1"}))
	require.NoError(t, trips.Create(ctx, &models.Trip{UserID: "p2"}))

	stats, err := svc.GetStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.IncidentCount)
	assert.Equal(t, 2, stats.ActivePlanners)
}
