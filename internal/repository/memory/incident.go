// Package memory - хранилище в памяти процесса с теми же контрактами, что и PostgreSQL-репозитории.
// Используется для локального запуска (STORAGE_DRIVER=memory) и в тестах.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

type voteKey struct {
	incidentID uuid.UUID
	userID     string
}

type IncidentRepository struct {
	mu        sync.RWMutex
	incidents map[uuid.UUID]*models.Incident
	order     []uuid.UUID
	votes     map[voteKey]*models.Vote
	voters    map[uuid.UUID][]string
	comments  map[uuid.UUID][]models.Comment
	now       func() time.Time
}

func NewIncidentRepository() *IncidentRepository {
	return &IncidentRepository{
		incidents: make(map[uuid.UUID]*models.Incident),
		votes:     make(map[voteKey]*models.Vote),
		voters:    make(map[uuid.UUID][]string),
		comments:  make(map[uuid.UUID][]models.Comment),
		now:       time.Now,
	}
}

var _ service.IncidentRepository = (*IncidentRepository)(nil)

func notFound(id uuid.UUID) error {
	return fmt.Errorf("incident with id %s: %w", id, service.ErrIncidentNotFound)
}

func (r *IncidentRepository) Create(_ context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	incident.ID = uuid.New()
	incident.CreatedAt = now
	incident.UpdatedAt = now
	incident.Votes = []models.Vote{}
	incident.Comments = []models.Comment{}

	stored := *incident
	stored.Images = append([]string{}, incident.Images...)
	r.incidents[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return nil
}

func (r *IncidentRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.incidents[id]; !ok {
		return nil, notFound(id)
	}
	return r.snapshot(id), nil
}

func (r *IncidentRepository) Update(_ context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.incidents[incident.ID]
	if !ok {
		return notFound(incident.ID)
	}
	stored.Description = incident.Description
	stored.Category = incident.Category
	stored.Severity = incident.Severity
	stored.Status = incident.Status
	stored.UpdatedAt = r.now()
	incident.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *IncidentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[id]; !ok {
		return notFound(id)
	}
	for _, userID := range r.voters[id] {
		delete(r.votes, voteKey{incidentID: id, userID: userID})
	}
	delete(r.voters, id)
	delete(r.comments, id)
	delete(r.incidents, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *IncidentRepository) FindInBox(_ context.Context, box models.BoundingBox) ([]*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Incident, 0)
	for _, id := range r.order {
		if box.Contains(r.incidents[id].Location) {
			result = append(result, r.snapshot(id))
		}
	}
	return result, nil
}

// UpsertVote держит не более одного голоса на ключ (инцидент, пользователь)
func (r *IncidentRepository) UpsertVote(_ context.Context, vote *models.Vote) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[vote.IncidentID]; !ok {
		return false, notFound(vote.IncidentID)
	}

	key := voteKey{incidentID: vote.IncidentID, userID: vote.UserID}
	existing, ok := r.votes[key]
	if ok && existing.VoteType == vote.VoteType {
		return false, nil
	}

	vote.UpdatedAt = r.now()
	if !ok {
		r.voters[vote.IncidentID] = append(r.voters[vote.IncidentID], vote.UserID)
	}
	stored := *vote
	r.votes[key] = &stored
	return true, nil
}

func (r *IncidentRepository) AddComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[comment.IncidentID]; !ok {
		return notFound(comment.IncidentID)
	}
	now := r.now()
	comment.ID = uuid.New()
	comment.Timestamp = now
	comment.UpdatedAt = now
	r.comments[comment.IncidentID] = append(r.comments[comment.IncidentID], *comment)
	return nil
}

func (r *IncidentRepository) UpdateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.comments[comment.IncidentID]
	for i := range list {
		if list[i].ID == comment.ID {
			list[i].Text = comment.Text
			list[i].UpdatedAt = r.now()
			comment.UpdatedAt = list[i].UpdatedAt
			return nil
		}
	}
	return fmt.Errorf("comment with id %s: %w", comment.ID, service.ErrCommentNotFound)
}

func (r *IncidentRepository) DeleteComment(_ context.Context, incidentID, commentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.comments[incidentID]
	for i := range list {
		if list[i].ID == commentID {
			r.comments[incidentID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("comment with id %s: %w", commentID, service.ErrCommentNotFound)
}

func (r *IncidentRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.incidents), nil
}

// snapshot собирает независимую копию инцидента с голосами и комментариями.
// Вызывается под блокировкой.
func (r *IncidentRepository) snapshot(id uuid.UUID) *models.Incident {
	incident := *r.incidents[id]
	incident.Images = append([]string{}, incident.Images...)

	incident.Votes = make([]models.Vote, 0, len(r.voters[id]))
	for _, userID := range r.voters[id] {
		incident.Votes = append(incident.Votes, *r.votes[voteKey{incidentID: id, userID: userID}])
	}
	incident.Comments = append([]models.Comment{}, r.comments[id]...)
	incident.Tally()
	return &incident
}
