package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

const tripDateLayout = "2006-01-02"

// Geocoder переводит текстовый адрес в координаты.
// Если адрес не найден, возвращает ошибку, оборачивающую ErrLocationNotFound.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Point, error)
}

type CrimeRepository interface {
	Create(ctx context.Context, crime *models.Crime) error
	FindInBox(ctx context.Context, box models.BoundingBox) ([]*models.Crime, error)
}

type WeatherAlertRepository interface {
	Create(ctx context.Context, alert *models.WeatherAlert) error
	FindActiveInBox(ctx context.Context, box models.BoundingBox, from, to time.Time) ([]*models.WeatherAlert, error)
}

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	ListByUser(ctx context.Context, userID string) ([]*models.Trip, error)
	CountPlannersSince(ctx context.Context, since time.Time) (int, error)
}

// AnalyzerService собирает сводку безопасности по маршруту
type AnalyzerService interface {
	AnalyzeArea(ctx context.Context, userID, source, destination, date string) (*models.AreaAnalysis, error)
	ListTrips(ctx context.Context, userID string) ([]*models.Trip, error)
}

type analyzerService struct {
	geocoder  Geocoder
	crimes    CrimeRepository
	incidents IncidentRepository
	alerts    WeatherAlertRepository
	trips     TripRepository
	radius    float64
	logger    *logrus.Logger
}

func NewAnalyzerService(
	geocoder Geocoder,
	crimes CrimeRepository,
	incidents IncidentRepository,
	alerts WeatherAlertRepository,
	trips TripRepository,
	radiusDegrees float64,
	logger *logrus.Logger,
) AnalyzerService {
	return &analyzerService{
		geocoder:  geocoder,
		crimes:    crimes,
		incidents: incidents,
		alerts:    alerts,
		trips:     trips,
		radius:    radiusDegrees,
		logger:    logger,
	}
}

// AnalyzeArea геокодирует концы маршрута, собирает преступления, инциденты и погодные
// предупреждения рядом с ними и сохраняет поездку. Любая ошибка прерывает всю операцию.
func (s *analyzerService) AnalyzeArea(ctx context.Context, userID, source, destination, date string) (*models.AreaAnalysis, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "analyzer",
		"method":      "AnalyzeArea",
		"user_id":     userID,
		"source":      source,
		"destination": destination,
		"date":        date,
	})
	log.Info("Analyzing route")

	userID, source, destination = strings.TrimSpace(userID), strings.TrimSpace(source), strings.TrimSpace(destination)
	if userID == "" || source == "" || destination == "" {
		return nil, invalidParam("userId, source and destination are required")
	}
	day, err := time.ParseInLocation(tripDateLayout, date, time.UTC)
	if err != nil {
		return nil, invalidParam("date must be in YYYY-MM-DD format")
	}

	destPoint, err := s.geocode(ctx, destination)
	if err != nil {
		log.WithError(err).Warn("Failed to geocode destination")
		return nil, err
	}
	srcPoint, err := s.geocode(ctx, source)
	if err != nil {
		log.WithError(err).Warn("Failed to geocode source")
		return nil, err
	}

	occurrences := models.Occurrences{
		Crimes:    []*models.Crime{},
		Incidents: []*models.Incident{},
		Weather:   []*models.WeatherAlert{},
	}
	seen := make(map[uuid.UUID]struct{})
	dayEnd := day.Add(24*time.Hour - time.Nanosecond)

	// Сначала окрестность пункта назначения, затем пункта отправления
	for _, p := range []models.Point{destPoint, srcPoint} {
		box, err := models.NewBoundingBox(p, s.radius)
		if err != nil {
			return nil, invalidParam("%v", err)
		}

		crimes, err := s.crimes.FindInBox(ctx, box)
		if err != nil {
			log.WithError(err).Error("Failed to query crimes")
			return nil, fmt.Errorf("service: could not query crimes: %w", err)
		}
		incidents, err := s.incidents.FindInBox(ctx, box)
		if err != nil {
			log.WithError(err).Error("Failed to query incidents")
			return nil, fmt.Errorf("service: could not query incidents: %w", err)
		}
		alerts, err := s.alerts.FindActiveInBox(ctx, box, day, dayEnd)
		if err != nil {
			log.WithError(err).Error("Failed to query weather alerts")
			return nil, fmt.Errorf("service: could not query weather alerts: %w", err)
		}

		for _, c := range crimes {
			if markSeen(seen, c.ID) {
				occurrences.Crimes = append(occurrences.Crimes, c)
			}
		}
		for _, i := range incidents {
			if markSeen(seen, i.ID) {
				occurrences.Incidents = append(occurrences.Incidents, i)
			}
		}
		for _, a := range alerts {
			if markSeen(seen, a.ID) {
				occurrences.Weather = append(occurrences.Weather, a)
			}
		}
	}

	trip := &models.Trip{
		UserID:              userID,
		Source:              source,
		Destination:         destination,
		PlannedDate:         day,
		SourceLocation:      srcPoint,
		DestinationLocation: destPoint,
	}
	if err := s.trips.Create(ctx, trip); err != nil {
		log.WithError(err).Error("Failed to save trip")
		return nil, fmt.Errorf("service: could not save trip: %w", err)
	}

	log.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"crimes":    len(occurrences.Crimes),
		"incidents": len(occurrences.Incidents),
		"weather":   len(occurrences.Weather),
	}).Info("Route analysis completed")

	return &models.AreaAnalysis{Occurrences: occurrences, Route: trip}, nil
}

func (s *analyzerService) geocode(ctx context.Context, label string) (models.Point, error) {
	p, err := s.geocoder.Geocode(ctx, label)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Point{}, fmt.Errorf("service: could not resolve %q: %w", label, err)
		}
		return models.Point{}, upstream(fmt.Sprintf("service: geocoding %q failed", label), err)
	}
	return p, nil
}

// ListTrips возвращает поездки пользователя, новые первыми
func (s *analyzerService) ListTrips(ctx context.Context, userID string) ([]*models.Trip, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "analyzer",
		"method":  "ListTrips",
		"user_id": userID,
	})

	if strings.TrimSpace(userID) == "" {
		return nil, invalidParam("userId is required")
	}

	trips, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Failed to list trips")
		return nil, fmt.Errorf("service: could not list trips: %w", err)
	}
	log.WithField("count", len(trips)).Info("Trips listed successfully")
	return trips, nil
}

func markSeen(seen map[uuid.UUID]struct{}, id uuid.UUID) bool {
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}
	return true
}
