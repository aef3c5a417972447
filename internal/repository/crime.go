package repository

import (
	"context"

	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

type CrimeRepository struct {
	db DB
}

func NewCrimeRepository(db DB) service.CrimeRepository {
	return &CrimeRepository{db: db}
}

// Create сохраняет запись о преступлении
func (r *CrimeRepository) Create(ctx context.Context, crime *models.Crime) error {
	query := `
		INSERT INTO crimes (location, crime_type, description, occurred_at, time_of_day, severity, source, reported_by, status)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326), $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		crime.Location.Longitude,
		crime.Location.Latitude,
		crime.CrimeType,
		crime.Description,
		crime.OccurredAt,
		crime.TimeOfDay,
		crime.Severity,
		crime.Source,
		crime.ReportedBy,
		crime.Status,
	).Scan(&crime.ID, &crime.CreatedAt)
	if err != nil {
		return dbError("failed to create crime", err)
	}
	return nil
}

// FindInBox находит преступления в прямоугольнике, свежие первыми
func (r *CrimeRepository) FindInBox(ctx context.Context, box models.BoundingBox) ([]*models.Crime, error) {
	query := `
		SELECT
			id,
			ST_Y(location) AS latitude,
			ST_X(location) AS longitude,
			crime_type,
			description,
			occurred_at,
			time_of_day,
			severity,
			source,
			reported_by,
			status,
			created_at
		FROM crimes
		WHERE ST_Intersects(location, ST_MakeEnvelope($1, $2, $3, $4, 4326))
		ORDER BY occurred_at DESC, id;
	`
	rows, err := r.db.Query(ctx, query, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat)
	if err != nil {
		return nil, dbError("failed to find crimes in bounding box", err)
	}
	defer rows.Close()

	crimes := make([]*models.Crime, 0)
	for rows.Next() {
		crime := &models.Crime{}
		err := rows.Scan(
			&crime.ID,
			&crime.Location.Latitude,
			&crime.Location.Longitude,
			&crime.CrimeType,
			&crime.Description,
			&crime.OccurredAt,
			&crime.TimeOfDay,
			&crime.Severity,
			&crime.Source,
			&crime.ReportedBy,
			&crime.Status,
			&crime.CreatedAt,
		)
		if err != nil {
			return nil, dbError("failed to scan crime row", err)
		}
		crimes = append(crimes, crime)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error crime iteration", err)
	}
	return crimes, nil
}
