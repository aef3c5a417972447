package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type IncidentCategory string

const (
	CategoryAccident        IncidentCategory = "Accident"
	CategoryFire            IncidentCategory = "Fire"
	CategoryNaturalDisaster IncidentCategory = "Natural Disaster"
	CategoryPublicUnrest    IncidentCategory = "Public Unrest"
	CategoryOther           IncidentCategory = "Other"
)

func (c IncidentCategory) Valid() bool {
	switch c {
	case CategoryAccident, CategoryFire, CategoryNaturalDisaster, CategoryPublicUnrest, CategoryOther:
		return true
	}
	return false
}

type IncidentStatus string

const (
	StatusOngoing  IncidentStatus = "Ongoing"
	StatusResolved IncidentStatus = "Resolved"
)

func (s IncidentStatus) Valid() bool {
	return s == StatusOngoing || s == StatusResolved
}

type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

const (
	MinSeverity = 1
	MaxSeverity = 5
)

// Vote - голос пользователя за инцидент. На пару (инцидент, пользователь) не больше одного.
type Vote struct {
	IncidentID uuid.UUID `json:"-"`
	UserID     string    `json:"userId"`
	VoteType   VoteType  `json:"voteType"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment - комментарий к инциденту, хранится в порядке добавления
type Comment struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"-"`
	UserID     string    `json:"userId"`
	Text       string    `json:"comment"`
	Timestamp  time.Time `json:"timestamp"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Incident struct {
	ID            uuid.UUID        `json:"id"`
	UserID        string           `json:"userId"`
	Description   string           `json:"description"`
	Location      Point            `json:"location"`
	Category      IncidentCategory `json:"incidentType"`
	OccurredAt    time.Time        `json:"date"`
	Status        IncidentStatus   `json:"status"`
	Severity      int              `json:"severity"`
	Source        string           `json:"source,omitempty"`
	Images        []string         `json:"images"`
	Votes         []Vote           `json:"votes"`
	Comments      []Comment        `json:"comments"`
	UpvoteCount   int              `json:"upvoteCount"`
	DownvoteCount int              `json:"downvoteCount"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// IncidentPatch - изменяемые владельцем поля инцидента, nil означает "не менять"
type IncidentPatch struct {
	Description *string
	Category    *IncidentCategory
	Severity    *int
	Status      *IncidentStatus
}

// Tally пересчитывает счетчики голосов по текущему набору голосов
func (i *Incident) Tally() {
	i.UpvoteCount, i.DownvoteCount = 0, 0
	for _, v := range i.Votes {
		switch v.VoteType {
		case VoteUp:
			i.UpvoteCount++
		case VoteDown:
			i.DownvoteCount++
		}
	}
}

func (i *Incident) Score() int {
	return i.UpvoteCount - i.DownvoteCount
}

// FindComment возвращает комментарий по id или nil
func (i *Incident) FindComment(id uuid.UUID) *Comment {
	for k := range i.Comments {
		if i.Comments[k].ID == id {
			return &i.Comments[k]
		}
	}
	return nil
}

// SortByScore упорядочивает инциденты по (upvote - downvote) по убыванию.
// Сортировка стабильная: при равенстве сохраняется исходный порядок.
func SortByScore(incidents []*Incident) {
	sort.SliceStable(incidents, func(a, b int) bool {
		return incidents[a].Score() > incidents[b].Score()
	})
}
