package models

import (
	"time"

	"github.com/google/uuid"
)

const CrimeStatusActive = "Active"

// Crime - зарегистрированное преступление, заводится через административный импорт
type Crime struct {
	ID          uuid.UUID `json:"id"`
	Location    Point     `json:"location"`
	CrimeType   string    `json:"crimeType"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"date"`
	TimeOfDay   string    `json:"time,omitempty"`
	Severity    int       `json:"severity"`
	Source      string    `json:"source,omitempty"`
	ReportedBy  string    `json:"reportedBy,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
