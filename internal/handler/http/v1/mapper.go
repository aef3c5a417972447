package v1

import (
	"fmt"
	"time"

	"github.com/shenikar/travel_safety_system/internal/models"
)

const dateLayout = "2006-01-02"

// parseTimestamp принимает RFC 3339 или дату YYYY-MM-DD (полночь UTC)
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339 or YYYY-MM-DD", value)
	}
	return t, nil
}

func parseOptionalTimestamp(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseTimestamp(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ReportDTOToIncidentModel преобразует DTO отчета в доменную модель
func ReportDTOToIncidentModel(dto ReportIncidentRequest, images []string) (*models.Incident, error) {
	incident := &models.Incident{
		UserID:      dto.UserID,
		Description: dto.Description,
		Location:    models.Point{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
		Category:    models.IncidentCategory(dto.IncidentType),
		Severity:    dto.Severity,
		Source:      dto.Source,
		Images:      images,
	}
	if dto.Date != "" {
		occurredAt, err := parseTimestamp(dto.Date)
		if err != nil {
			return nil, err
		}
		incident.OccurredAt = occurredAt
	}
	return incident, nil
}

// UpdateDTOToPatch преобразует DTO изменения в набор изменяемых полей
func UpdateDTOToPatch(dto UpdateIncidentRequest) models.IncidentPatch {
	patch := models.IncidentPatch{
		Description: dto.Description,
		Severity:    dto.Severity,
	}
	if dto.IncidentType != nil {
		category := models.IncidentCategory(*dto.IncidentType)
		patch.Category = &category
	}
	if dto.Status != nil {
		status := models.IncidentStatus(*dto.Status)
		patch.Status = &status
	}
	return patch
}

func CrimeDTOToModel(dto CreateCrimeRequest) (*models.Crime, error) {
	occurredAt, err := parseTimestamp(dto.Date)
	if err != nil {
		return nil, err
	}
	return &models.Crime{
		Location:    models.Point{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
		CrimeType:   dto.CrimeType,
		Description: dto.Description,
		OccurredAt:  occurredAt,
		TimeOfDay:   dto.Time,
		Severity:    dto.Severity,
		Source:      dto.Source,
		ReportedBy:  dto.ReportedBy,
		Status:      dto.Status,
	}, nil
}

func WeatherAlertDTOToModel(dto CreateWeatherAlertRequest) (*models.WeatherAlert, error) {
	start, err := parseOptionalTimestamp(dto.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalTimestamp(dto.EndTime)
	if err != nil {
		return nil, err
	}
	return &models.WeatherAlert{
		Location:    models.Point{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
		AlertType:   models.WeatherAlertType(dto.AlertType),
		Description: dto.Description,
		Severity:    models.WeatherSeverity(dto.Severity),
		StartTime:   start,
		EndTime:     end,
		Source:      dto.Source,
		IssuedBy:    dto.IssuedBy,
	}, nil
}

func ForecastDTOToModel(dto ForecastRequest) models.ForecastRequest {
	return models.ForecastRequest{
		Source:      dto.Source,
		Destination: dto.Destination,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
		Travelers:   dto.Travelers,
		Preference:  dto.Preference,
	}
}

// ModelToStatsResponse преобразует доменную модель в DTO для ответа
func ModelToStatsResponse(stats *models.Stats) StatsResponse {
	return StatsResponse{
		IncidentCount:  stats.IncidentCount,
		ActivePlanners: stats.ActivePlanners,
	}
}

func pointOf(lat, lng float64) models.Point {
	return models.Point{Latitude: lat, Longitude: lng}
}

func voteTypeOf(value string) models.VoteType {
	return models.VoteType(value)
}
