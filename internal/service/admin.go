package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/travel_safety_system/internal/config"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

// AdminService - административный импорт данных и статистика
type AdminService interface {
	CreateCrime(ctx context.Context, crime *models.Crime) error
	CreateWeatherAlert(ctx context.Context, alert *models.WeatherAlert) error
	GetStats(ctx context.Context) (*models.Stats, error)
}

type adminService struct {
	incidents IncidentRepository
	crimes    CrimeRepository
	alerts    WeatherAlertRepository
	trips     TripRepository
	logger    *logrus.Logger
	cfg       *config.Config
	now       func() time.Time
}

func NewAdminService(
	incidents IncidentRepository,
	crimes CrimeRepository,
	alerts WeatherAlertRepository,
	trips TripRepository,
	logger *logrus.Logger,
	cfg *config.Config,
) AdminService {
	return &adminService{
		incidents: incidents,
		crimes:    crimes,
		alerts:    alerts,
		trips:     trips,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CreateCrime сохраняет запись о преступлении
func (s *adminService) CreateCrime(ctx context.Context, crime *models.Crime) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "admin",
		"method":     "CreateCrime",
		"crime_type": crime.CrimeType,
	})

	if err := crime.Location.Validate(); err != nil {
		return invalidParam("%v", err)
	}
	if strings.TrimSpace(crime.CrimeType) == "" {
		return invalidParam("crimeType is required")
	}
	if crime.OccurredAt.IsZero() {
		return invalidParam("date is required")
	}
	if crime.Severity == 0 {
		crime.Severity = models.MinSeverity
	}
	if crime.Severity < models.MinSeverity || crime.Severity > models.MaxSeverity {
		return invalidParam("severity must be between %d and %d", models.MinSeverity, models.MaxSeverity)
	}
	if crime.Status == "" {
		crime.Status = models.CrimeStatusActive
	}

	if err := s.crimes.Create(ctx, crime); err != nil {
		log.WithError(err).Error("Failed to create crime in repository")
		return fmt.Errorf("service: could not create crime: %w", err)
	}
	log.WithField("crime_id", crime.ID).Info("Crime recorded")
	return nil
}

// CreateWeatherAlert сохраняет погодное предупреждение
func (s *adminService) CreateWeatherAlert(ctx context.Context, alert *models.WeatherAlert) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "admin",
		"method":     "CreateWeatherAlert",
		"alert_type": alert.AlertType,
	})

	if err := alert.Location.Validate(); err != nil {
		return invalidParam("%v", err)
	}
	switch alert.AlertType {
	case models.AlertStorm, models.AlertFlood, models.AlertHeatwave, models.AlertSnow, models.AlertFog, models.AlertWind, models.AlertOther:
	default:
		return invalidParam("unknown alertType %q", alert.AlertType)
	}
	switch alert.Severity {
	case models.WeatherMinor, models.WeatherModerate, models.WeatherSevere, models.WeatherExtreme:
	default:
		return invalidParam("unknown severity %q", alert.Severity)
	}
	if alert.StartTime != nil && alert.EndTime != nil && alert.EndTime.Before(*alert.StartTime) {
		return invalidParam("endTime must not be before startTime")
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create weather alert in repository")
		return fmt.Errorf("service: could not create weather alert: %w", err)
	}
	log.WithField("alert_id", alert.ID).Info("Weather alert recorded")
	return nil
}

// GetStats возвращает число инцидентов и число пользователей, планировавших поездки за окно статистики
func (s *adminService) GetStats(ctx context.Context) (*models.Stats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "admin",
		"method":  "GetStats",
	})

	count, err := s.incidents.Count(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count incidents")
		return nil, fmt.Errorf("service: could not count incidents: %w", err)
	}

	since := s.now().Add(-time.Duration(s.cfg.StatsTimeWindowMinutes) * time.Minute)
	planners, err := s.trips.CountPlannersSince(ctx, since)
	if err != nil {
		log.WithError(err).Error("Failed to count active planners")
		return nil, fmt.Errorf("service: could not count planners: %w", err)
	}

	return &models.Stats{IncidentCount: count, ActivePlanners: planners}, nil
}
