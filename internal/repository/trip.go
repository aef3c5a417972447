package repository

import (
	"context"
	"time"

	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

type TripRepository struct {
	db DB
}

func NewTripRepository(db DB) service.TripRepository {
	return &TripRepository{db: db}
}

// Create сохраняет поездку пользователя
func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	query := `
		INSERT INTO trips (user_id, source, destination, planned_date, source_location, destination_location)
		VALUES ($1, $2, $3, $4,
			ST_SetSRID(ST_MakePoint($5, $6), 4326),
			ST_SetSRID(ST_MakePoint($7, $8), 4326))
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		trip.UserID,
		trip.Source,
		trip.Destination,
		trip.PlannedDate,
		trip.SourceLocation.Longitude,
		trip.SourceLocation.Latitude,
		trip.DestinationLocation.Longitude,
		trip.DestinationLocation.Latitude,
	).Scan(&trip.ID, &trip.CreatedAt)
	if err != nil {
		return dbError("failed to create trip", err)
	}
	return nil
}

// ListByUser возвращает поездки пользователя, новые первыми
func (r *TripRepository) ListByUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	query := `
		SELECT
			id,
			user_id,
			source,
			destination,
			planned_date,
			ST_Y(source_location),
			ST_X(source_location),
			ST_Y(destination_location),
			ST_X(destination_location),
			created_at
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC, id;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, dbError("failed to list trips", err)
	}
	defer rows.Close()

	trips := make([]*models.Trip, 0)
	for rows.Next() {
		trip := &models.Trip{}
		err := rows.Scan(
			&trip.ID,
			&trip.UserID,
			&trip.Source,
			&trip.Destination,
			&trip.PlannedDate,
			&trip.SourceLocation.Latitude,
			&trip.SourceLocation.Longitude,
			&trip.DestinationLocation.Latitude,
			&trip.DestinationLocation.Longitude,
			&trip.CreatedAt,
		)
		if err != nil {
			return nil, dbError("failed to scan trip row", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error trip iteration", err)
	}
	return trips, nil
}

// CountPlannersSince возвращает количество уникальных пользователей, планировавших поездки начиная с since
func (r *TripRepository) CountPlannersSince(ctx context.Context, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM trips
		WHERE created_at >= $1;
	`
	var count int
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, dbError("failed to count trip planners", err)
	}
	return count, nil
}
