package repository

import (
	"context"
	"time"

	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

type WeatherAlertRepository struct {
	db DB
}

func NewWeatherAlertRepository(db DB) service.WeatherAlertRepository {
	return &WeatherAlertRepository{db: db}
}

func (r *WeatherAlertRepository) Create(ctx context.Context, alert *models.WeatherAlert) error {
	query := `
		INSERT INTO weather_alerts (location, alert_type, description, severity, starts_at, ends_at, source, issued_by)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326), $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		alert.Location.Longitude,
		alert.Location.Latitude,
		string(alert.AlertType),
		alert.Description,
		string(alert.Severity),
		alert.StartTime,
		alert.EndTime,
		alert.Source,
		alert.IssuedBy,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return dbError("failed to create weather alert", err)
	}
	return nil
}

// FindActiveInBox находит предупреждения в прямоугольнике, действующие в интервале [from, to]
func (r *WeatherAlertRepository) FindActiveInBox(ctx context.Context, box models.BoundingBox, from, to time.Time) ([]*models.WeatherAlert, error) {
	query := `
		SELECT
			id,
			ST_Y(location) AS latitude,
			ST_X(location) AS longitude,
			alert_type,
			description,
			severity,
			starts_at,
			ends_at,
			source,
			issued_by,
			created_at
		FROM weather_alerts
		WHERE ST_Intersects(location, ST_MakeEnvelope($1, $2, $3, $4, 4326))
			AND (starts_at IS NULL OR starts_at <= $6)
			AND (ends_at IS NULL OR ends_at >= $5)
		ORDER BY created_at, id;
	`
	rows, err := r.db.Query(ctx, query, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat, from, to)
	if err != nil {
		return nil, dbError("failed to find weather alerts in bounding box", err)
	}
	defer rows.Close()

	alerts := make([]*models.WeatherAlert, 0)
	for rows.Next() {
		alert := &models.WeatherAlert{}
		var alertType, severity string
		err := rows.Scan(
			&alert.ID,
			&alert.Location.Latitude,
			&alert.Location.Longitude,
			&alertType,
			&alert.Description,
			&severity,
			&alert.StartTime,
			&alert.EndTime,
			&alert.Source,
			&alert.IssuedBy,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, dbError("failed to scan weather alert row", err)
		}
		alert.AlertType = models.WeatherAlertType(alertType)
		alert.Severity = models.WeatherSeverity(severity)
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error weather alert iteration", err)
	}
	return alerts, nil
}
