package models

import (
	"time"

	"github.com/google/uuid"
)

type WeatherAlertType string

const (
	AlertStorm    WeatherAlertType = "Storm"
	AlertFlood    WeatherAlertType = "Flood"
	AlertHeatwave WeatherAlertType = "Heatwave"
	AlertSnow     WeatherAlertType = "Snow"
	AlertFog      WeatherAlertType = "Fog"
	AlertWind     WeatherAlertType = "Wind"
	AlertOther    WeatherAlertType = "Other"
)

type WeatherSeverity string

const (
	WeatherMinor    WeatherSeverity = "Minor"
	WeatherModerate WeatherSeverity = "Moderate"
	WeatherSevere   WeatherSeverity = "Severe"
	WeatherExtreme  WeatherSeverity = "Extreme"
)

type WeatherAlert struct {
	ID          uuid.UUID        `json:"id"`
	Location    Point            `json:"location"`
	AlertType   WeatherAlertType `json:"alertType"`
	Description string           `json:"description,omitempty"`
	Severity    WeatherSeverity  `json:"severity"`
	StartTime   *time.Time       `json:"startTime,omitempty"`
	EndTime     *time.Time       `json:"endTime,omitempty"`
	Source      string           `json:"source,omitempty"`
	IssuedBy    string           `json:"issuedBy,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ActiveDuring сообщает, пересекается ли окно действия предупреждения с [from, to].
// Отсутствующая граница считается открытой.
func (w *WeatherAlert) ActiveDuring(from, to time.Time) bool {
	if w.StartTime != nil && w.StartTime.After(to) {
		return false
	}
	if w.EndTime != nil && w.EndTime.Before(from) {
		return false
	}
	return true
}
