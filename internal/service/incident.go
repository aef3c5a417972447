package service

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks . IncidentRepository,IncidentCache,IncidentService,Geocoder,TextGenerator,AnalyzerService,AssistantService,AdminService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с хранилищем инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindInBox(ctx context.Context, box models.BoundingBox) ([]*models.Incident, error)
	// UpsertVote атомарно создает или меняет голос пользователя.
	// Возвращает false, если голос того же типа уже был.
	UpsertVote(ctx context.Context, vote *models.Vote) (bool, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, incidentID, commentID uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// IncidentCache - кеш чтения отдельных инцидентов. Промах кеша - (nil, nil).
type IncidentCache interface {
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	// CacheGeneration возвращает счетчик инвалидаций записи. Его нужно прочитать до чтения из БД.
	CacheGeneration(ctx context.Context, id uuid.UUID) (int64, error)
	// SetIncidentCache записывает инцидент, только если с момента чтения generation
	// не было инвалидаций. Возвращает false, если запись пропущена.
	SetIncidentCache(ctx context.Context, incident *models.Incident, generation int64) (bool, error)
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// IncidentService определяет контракт для бизнес-логики инцидентов, голосов и комментариев
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	FindNearby(ctx context.Context, center models.Point, radius float64, rankByVotes bool) ([]*models.Incident, error)
	Vote(ctx context.Context, incidentID uuid.UUID, userID string, voteType models.VoteType) (*models.Incident, bool, error)
	Comment(ctx context.Context, incidentID uuid.UUID, userID, text string) (*models.Incident, error)
	UpdateIncident(ctx context.Context, incidentID uuid.UUID, userID string, patch models.IncidentPatch) (*models.Incident, error)
	DeleteIncident(ctx context.Context, incidentID uuid.UUID, userID string) error
	UpdateComment(ctx context.Context, incidentID, commentID uuid.UUID, userID, text string) (*models.Incident, error)
	DeleteComment(ctx context.Context, incidentID, commentID uuid.UUID, userID string) (*models.Incident, error)
}

type incidentService struct {
	repo      IncidentRepository
	cache     IncidentCache
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewIncidentService(repo IncidentRepository, cache IncidentCache, publisher webhook.WebhookPublisher, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateIncident сохраняет новый отчет об инциденте и публикует событие для вебхуков
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"user_id": incident.UserID,
	})
	log.Info("Attempting to create a new incident")

	if err := normalizeNewIncident(incident, s.now()); err != nil {
		log.WithError(err).Warn("Incident report rejected")
		return err
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}
	log = log.WithField("incident_id", incident.ID)
	log.Info("Incident created successfully")

	event := webhook.WebhookEvent{
		Type:        webhook.EventIncidentReported,
		IncidentID:  incident.ID,
		ReporterID:  incident.UserID,
		Category:    string(incident.Category),
		Severity:    incident.Severity,
		Description: incident.Description,
		Latitude:    incident.Location.Latitude,
		Longitude:   incident.Location.Longitude,
		Timestamp:   incident.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish incident webhook event")
	}
	return nil
}

func normalizeNewIncident(incident *models.Incident, now time.Time) error {
	if strings.TrimSpace(incident.UserID) == "" {
		return invalidParam("userId is required")
	}
	if err := incident.Location.Validate(); err != nil {
		return invalidParam("%v", err)
	}
	if incident.Category == "" {
		incident.Category = models.CategoryOther
	}
	if !incident.Category.Valid() {
		return invalidParam("unknown incident type %q", incident.Category)
	}
	if incident.Severity == 0 {
		incident.Severity = models.MinSeverity
	}
	if incident.Severity < models.MinSeverity || incident.Severity > models.MaxSeverity {
		return invalidParam("severity must be between %d and %d", models.MinSeverity, models.MaxSeverity)
	}
	if incident.OccurredAt.IsZero() {
		incident.OccurredAt = now
	}
	if incident.Images == nil {
		incident.Images = []string{}
	}
	incident.Status = models.StatusOngoing
	incident.Votes = nil
	incident.Comments = nil
	incident.UpvoteCount, incident.DownvoteCount = 0, 0
	return nil
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.cache.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	generation, genErr := s.cache.CacheGeneration(ctx, id)
	if genErr != nil {
		log.WithError(genErr).Warn("Failed to read cache generation")
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	// Без поколения нельзя доказать, что снимок свежий, поэтому в кеш он не пишется
	if genErr == nil {
		stored, err := s.cache.SetIncidentCache(ctx, incident, generation)
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to cache incident")
		case !stored:
			log.Debug("Incident changed during read, cache fill skipped")
		}
	}
	log.Info("Incident fetched successfully")
	return incident, nil
}

// FindNearby возвращает инциденты в квадрате со стороной 2*radius градусов вокруг center.
// radius - смещение в градусах, а не расстояние в метрах.
func (s *incidentService) FindNearby(ctx context.Context, center models.Point, radius float64, rankByVotes bool) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "FindNearby",
		"latitude":  center.Latitude,
		"longitude": center.Longitude,
		"radius":    radius,
	})

	box, err := models.NewBoundingBox(center, radius)
	if err != nil {
		log.WithError(err).Warn("Invalid nearby query")
		return nil, invalidParam("%v", err)
	}

	incidents, err := s.repo.FindInBox(ctx, box)
	if err != nil {
		log.WithError(err).Error("Failed to find incidents in bounding box")
		return nil, fmt.Errorf("service: could not find nearby incidents: %w", err)
	}
	if rankByVotes {
		models.SortByScore(incidents)
	}

	log.WithField("count", len(incidents)).Info("Nearby incidents found")
	return incidents, nil
}

// Vote ставит или меняет голос пользователя. Повторный голос того же типа ничего не меняет.
func (s *incidentService) Vote(ctx context.Context, incidentID uuid.UUID, userID string, voteType models.VoteType) (*models.Incident, bool, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "Vote",
		"incident_id": incidentID,
		"user_id":     userID,
		"vote_type":   voteType,
	})

	if !voteType.Valid() {
		return nil, false, invalidParam("invalid vote type %q", voteType)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, false, invalidParam("userId is required")
	}

	changed, err := s.repo.UpsertVote(ctx, &models.Vote{
		IncidentID: incidentID,
		UserID:     userID,
		VoteType:   voteType,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("Vote for a non-existent incident")
		} else {
			log.WithError(err).Error("Failed to upsert vote")
		}
		return nil, false, fmt.Errorf("service: could not record vote: %w", err)
	}
	if changed {
		s.invalidate(ctx, log, incidentID)
	}

	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Error("Failed to reload incident after vote")
		return nil, false, fmt.Errorf("service: could not reload incident: %w", err)
	}

	log.WithField("changed", changed).Info("Vote processed")
	return incident, changed, nil
}

// Comment добавляет комментарий в конец списка комментариев инцидента
func (s *incidentService) Comment(ctx context.Context, incidentID uuid.UUID, userID, text string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "Comment",
		"incident_id": incidentID,
		"user_id":     userID,
	})

	if strings.TrimSpace(userID) == "" {
		return nil, invalidParam("userId is required")
	}

	comment := &models.Comment{
		IncidentID: incidentID,
		UserID:     userID,
		Text:       text,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("Comment on a non-existent incident")
		} else {
			log.WithError(err).Error("Failed to add comment")
		}
		return nil, fmt.Errorf("service: could not add comment: %w", err)
	}
	s.invalidate(ctx, log, incidentID)

	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Error("Failed to reload incident after comment")
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}

	log.WithField("comment_id", comment.ID).Info("Comment added")
	return incident, nil
}

// UpdateIncident меняет описание, тип, серьезность или статус. Доступно только автору отчета.
func (s *incidentService) UpdateIncident(ctx context.Context, incidentID uuid.UUID, userID string, patch models.IncidentPatch) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": incidentID,
		"user_id":     userID,
	})
	log.Info("Attempting to update incident")

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	existing, err := s.ownedIncident(ctx, incidentID, userID)
	if err != nil {
		log.WithError(err).Warn("Update rejected")
		return nil, fmt.Errorf("service: incident %s not updated: %w", incidentID, err)
	}

	if patch.Description != nil {
		existing.Description = *patch.Description
	}
	if patch.Category != nil {
		existing.Category = *patch.Category
	}
	if patch.Severity != nil {
		existing.Severity = *patch.Severity
	}
	if patch.Status != nil {
		existing.Status = *patch.Status
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update incident in repository")
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}
	s.invalidate(ctx, log, incidentID)

	log.Info("Incident updated successfully")
	return existing, nil
}

func validatePatch(patch models.IncidentPatch) error {
	if patch.Category != nil && !patch.Category.Valid() {
		return invalidParam("unknown incident type %q", *patch.Category)
	}
	if patch.Severity != nil && (*patch.Severity < models.MinSeverity || *patch.Severity > models.MaxSeverity) {
		return invalidParam("severity must be between %d and %d", models.MinSeverity, models.MaxSeverity)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return invalidParam("unknown status %q", *patch.Status)
	}
	return nil
}

// DeleteIncident удаляет инцидент вместе с голосами и комментариями. Доступно только автору отчета.
func (s *incidentService) DeleteIncident(ctx context.Context, incidentID uuid.UUID, userID string) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": incidentID,
		"user_id":     userID,
	})
	log.Info("Attempting to delete incident")

	if _, err := s.ownedIncident(ctx, incidentID, userID); err != nil {
		log.WithError(err).Warn("Delete rejected")
		return fmt.Errorf("service: incident %s not deleted: %w", incidentID, err)
	}

	if err := s.repo.Delete(ctx, incidentID); err != nil {
		log.WithError(err).Error("Failed to delete incident in repository")
		return fmt.Errorf("service: could not delete incident: %w", err)
	}
	s.invalidate(ctx, log, incidentID)

	log.Info("Incident deleted successfully")
	return nil
}

// UpdateComment меняет текст комментария. Доступно только автору комментария.
func (s *incidentService) UpdateComment(ctx context.Context, incidentID, commentID uuid.UUID, userID, text string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateComment",
		"incident_id": incidentID,
		"comment_id":  commentID,
		"user_id":     userID,
	})

	comment, err := s.ownedComment(ctx, incidentID, commentID, userID)
	if err != nil {
		log.WithError(err).Warn("Comment update rejected")
		return nil, fmt.Errorf("service: comment %s not updated: %w", commentID, err)
	}

	comment.Text = text
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		log.WithError(err).Error("Failed to update comment in repository")
		return nil, fmt.Errorf("service: could not update comment: %w", err)
	}
	s.invalidate(ctx, log, incidentID)

	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}
	log.Info("Comment updated")
	return incident, nil
}

// DeleteComment удаляет комментарий. Доступно только автору комментария.
func (s *incidentService) DeleteComment(ctx context.Context, incidentID, commentID uuid.UUID, userID string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteComment",
		"incident_id": incidentID,
		"comment_id":  commentID,
		"user_id":     userID,
	})

	if _, err := s.ownedComment(ctx, incidentID, commentID, userID); err != nil {
		log.WithError(err).Warn("Comment delete rejected")
		return nil, fmt.Errorf("service: comment %s not deleted: %w", commentID, err)
	}

	if err := s.repo.DeleteComment(ctx, incidentID, commentID); err != nil {
		log.WithError(err).Error("Failed to delete comment in repository")
		return nil, fmt.Errorf("service: could not delete comment: %w", err)
	}
	s.invalidate(ctx, log, incidentID)

	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}
	log.Info("Comment deleted")
	return incident, nil
}

func (s *incidentService) ownedIncident(ctx context.Context, incidentID uuid.UUID, userID string) (*models.Incident, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidParam("userId is required")
	}
	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.UserID != userID {
		return nil, fmt.Errorf("%w: only the reporter may modify this incident", ErrForbidden)
	}
	return incident, nil
}

func (s *incidentService) ownedComment(ctx context.Context, incidentID, commentID uuid.UUID, userID string) (*models.Comment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidParam("userId is required")
	}
	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	comment := incident.FindComment(commentID)
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, fmt.Errorf("%w: only the author may modify this comment", ErrForbidden)
	}
	c := *comment
	return &c, nil
}

func (s *incidentService) invalidate(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.cache.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
}
