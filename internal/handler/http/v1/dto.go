package v1

import (
	"github.com/shenikar/travel_safety_system/internal/models"
)

// ReportIncidentRequest DTO для отчета об инциденте (JSON или multipart/form-data)
// @Description DTO для отчета об инциденте
type ReportIncidentRequest struct {
	UserID       string   `json:"userId" form:"userId" validate:"required,max=128"`
	Description  string   `json:"description" form:"description" validate:"max=5000"`
	Latitude     *float64 `json:"latitude" form:"latitude" validate:"required"`
	Longitude    *float64 `json:"longitude" form:"longitude" validate:"required"`
	IncidentType string   `json:"incidentType,omitempty" form:"incidentType"`
	Severity     int      `json:"severity,omitempty" form:"severity" validate:"omitempty,min=1,max=5"`
	Source       string   `json:"source,omitempty" form:"source" validate:"max=255"`
	// Date - момент происшествия в RFC 3339, по умолчанию время отчета
	Date string `json:"date,omitempty" form:"date"`
}

// UpdateIncidentRequest DTO для изменения инцидента автором
// @Description DTO для изменения инцидента автором
type UpdateIncidentRequest struct {
	UserID       string  `json:"userId" validate:"required"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	IncidentType *string `json:"incidentType,omitempty"`
	Severity     *int    `json:"severity,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// UserRequest DTO с одним идентификатором пользователя (удаление)
type UserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// VoteRequest DTO голоса за инцидент
// @Description DTO голоса за инцидент
type VoteRequest struct {
	UserID   string `json:"userId" validate:"required"`
	VoteType string `json:"voteType" example:"upvote"`
}

// CommentRequest DTO комментария к инциденту
// @Description DTO комментария к инциденту
type CommentRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Comment string `json:"comment" validate:"max=2000"`
}

// UpdateCommentRequest DTO изменения комментария
// @Description DTO изменения комментария
type UpdateCommentRequest struct {
	UserID     string `json:"userId" validate:"required"`
	NewComment string `json:"newComment" validate:"required,max=2000"`
}

// IncidentMessageResponse - ответ мутаций: сообщение и текущее состояние инцидента
// @Description Ответ с сообщением и инцидентом
type IncidentMessageResponse struct {
	Message  string           `json:"message"`
	Incident *models.Incident `json:"incident"`
}

// MessageResponse - ответ только с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// TravelInfoRequest DTO запроса справки о месте
// @Description DTO запроса справки о месте
type TravelInfoRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// TravelInfoResponse DTO ответа со справкой в HTML
type TravelInfoResponse struct {
	Query       string `json:"query"`
	Information string `json:"information"`
}

// ForecastRequest DTO запроса прогноза поездки
// @Description DTO запроса прогноза поездки
type ForecastRequest struct {
	Source      string `json:"source" validate:"required,max=255"`
	Destination string `json:"destination" validate:"required,max=255"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Travelers   int    `json:"travelers,omitempty" validate:"omitempty,min=1,max=100"`
	Preference  string `json:"preference,omitempty" validate:"omitempty,oneof=fast safe scenic balanced"`
}

type ForecastData struct {
	Forecast string `json:"forecast"`
}

// ForecastResponse DTO ответа с прогнозом
type ForecastResponse struct {
	Data ForecastData `json:"data"`
}

// CreateCrimeRequest DTO для импорта преступления
// @Description DTO для импорта преступления
type CreateCrimeRequest struct {
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	CrimeType   string   `json:"crimeType" validate:"required,max=128"`
	Description string   `json:"description,omitempty" validate:"max=5000"`
	Date        string   `json:"date" validate:"required"`
	Time        string   `json:"time,omitempty"`
	Severity    int      `json:"severity,omitempty" validate:"omitempty,min=1,max=5"`
	Source      string   `json:"source,omitempty"`
	ReportedBy  string   `json:"reportedBy,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// CreateWeatherAlertRequest DTO для импорта погодного предупреждения
// @Description DTO для импорта погодного предупреждения
type CreateWeatherAlertRequest struct {
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	AlertType   string   `json:"alertType" validate:"required"`
	Description string   `json:"description,omitempty" validate:"max=5000"`
	Severity    string   `json:"severity" validate:"required"`
	StartTime   string   `json:"startTime,omitempty"`
	EndTime     string   `json:"endTime,omitempty"`
	Source      string   `json:"source,omitempty"`
	IssuedBy    string   `json:"issuedBy,omitempty"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	IncidentCount  int `json:"incidentCount"`
	ActivePlanners int `json:"activePlanners"`
}
