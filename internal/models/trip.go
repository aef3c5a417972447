package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip - запись о планируемой поездке пользователя
type Trip struct {
	ID                  uuid.UUID `json:"id"`
	UserID              string    `json:"userId"`
	Source              string    `json:"source"`
	Destination         string    `json:"destination"`
	PlannedDate         time.Time `json:"date"`
	SourceLocation      Point     `json:"sourceLocation"`
	DestinationLocation Point     `json:"destinationLocation"`
	CreatedAt           time.Time `json:"createdAt"`
}

type Occurrences struct {
	Crimes    []*Crime        `json:"crimes"`
	Incidents []*Incident     `json:"incidents"`
	Weather   []*WeatherAlert `json:"weather"`
}

// AreaAnalysis - сводка безопасности по маршруту
type AreaAnalysis struct {
	Occurrences Occurrences `json:"occurrences"`
	Route       *Trip       `json:"route"`
}

// ForecastRequest - параметры запроса прогноза поездки
type ForecastRequest struct {
	Source      string
	Destination string
	StartDate   string
	EndDate     string
	Travelers   int
	Preference  string
}

// Stats - сводные показатели для администратора
type Stats struct {
	IncidentCount  int `json:"incidentCount"`
	ActivePlanners int `json:"activePlanners"`
}
