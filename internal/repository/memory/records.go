package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

type CrimeRepository struct {
	mu     sync.RWMutex
	crimes []models.Crime
	now    func() time.Time
}

func NewCrimeRepository() *CrimeRepository {
	return &CrimeRepository{now: time.Now}
}

var _ service.CrimeRepository = (*CrimeRepository)(nil)

func (r *CrimeRepository) Create(_ context.Context, crime *models.Crime) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	crime.ID = uuid.New()
	crime.CreatedAt = r.now()
	r.crimes = append(r.crimes, *crime)
	return nil
}

func (r *CrimeRepository) FindInBox(_ context.Context, box models.BoundingBox) ([]*models.Crime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Crime, 0)
	for _, crime := range r.crimes {
		if box.Contains(crime.Location) {
			c := crime
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(a, b int) bool {
		return result[a].OccurredAt.After(result[b].OccurredAt)
	})
	return result, nil
}

type WeatherAlertRepository struct {
	mu     sync.RWMutex
	alerts []models.WeatherAlert
	now    func() time.Time
}

func NewWeatherAlertRepository() *WeatherAlertRepository {
	return &WeatherAlertRepository{now: time.Now}
}

var _ service.WeatherAlertRepository = (*WeatherAlertRepository)(nil)

func (r *WeatherAlertRepository) Create(_ context.Context, alert *models.WeatherAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert.ID = uuid.New()
	alert.CreatedAt = r.now()
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *WeatherAlertRepository) FindActiveInBox(_ context.Context, box models.BoundingBox, from, to time.Time) ([]*models.WeatherAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.WeatherAlert, 0)
	for _, alert := range r.alerts {
		if box.Contains(alert.Location) && alert.ActiveDuring(from, to) {
			a := alert
			result = append(result, &a)
		}
	}
	return result, nil
}

type TripRepository struct {
	mu    sync.RWMutex
	trips []models.Trip
	now   func() time.Time
}

func NewTripRepository() *TripRepository {
	return &TripRepository{now: time.Now}
}

var _ service.TripRepository = (*TripRepository)(nil)

func (r *TripRepository) Create(_ context.Context, trip *models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip.ID = uuid.New()
	trip.CreatedAt = r.now()
	r.trips = append(r.trips, *trip)
	return nil
}

func (r *TripRepository) ListByUser(_ context.Context, userID string) ([]*models.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Trip, 0)
	for i := len(r.trips) - 1; i >= 0; i-- {
		if r.trips[i].UserID == userID {
			t := r.trips[i]
			result = append(result, &t)
		}
	}
	return result, nil
}

func (r *TripRepository) CountPlannersSince(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[string]struct{})
	for _, trip := range r.trips {
		if !trip.CreatedAt.Before(since) {
			users[trip.UserID] = struct{}{}
		}
	}
	return len(users), nil
}
