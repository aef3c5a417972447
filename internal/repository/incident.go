package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

const incidentColumns = `
	id,
	user_id,
	description,
	ST_Y(location) AS latitude,
	ST_X(location) AS longitude,
	category,
	occurred_at,
	status,
	severity,
	source,
	images,
	created_at,
	updated_at`

type IncidentRepository struct {
	db DB
}

func NewIncidentRepository(db DB) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

func scanIncident(row scanner) (*models.Incident, error) {
	incident := &models.Incident{}
	var category, status string
	err := row.Scan(
		&incident.ID,
		&incident.UserID,
		&incident.Description,
		&incident.Location.Latitude,
		&incident.Location.Longitude,
		&category,
		&incident.OccurredAt,
		&status,
		&incident.Severity,
		&incident.Source,
		&incident.Images,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Category = models.IncidentCategory(category)
	incident.Status = models.IncidentStatus(status)
	if incident.Images == nil {
		incident.Images = []string{}
	}
	return incident, nil
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (user_id, description, location, category, occurred_at, status, severity, source, images)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.UserID,
		incident.Description,
		incident.Location.Longitude,
		incident.Location.Latitude,
		string(incident.Category),
		incident.OccurredAt,
		string(incident.Status),
		incident.Severity,
		incident.Source,
		incident.Images,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return dbError("failed to create incident", err)
	}
	incident.Votes = []models.Vote{}
	incident.Comments = []models.Comment{}
	return nil
}

// GetByID возвращает инцидент по его UUID вместе с голосами и комментариями
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrIncidentNotFound)
		}
		return nil, dbError("failed to get incident by id", err)
	}

	if err := r.attachVotesAndComments(ctx, []*models.Incident{incident}); err != nil {
		return nil, err
	}
	return incident, nil
}

// Update обновляет изменяемые поля инцидента
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query := `
		UPDATE incidents SET
			description = $1,
			category = $2,
			severity = $3,
			status = $4,
			updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Description,
		string(incident.Category),
		incident.Severity,
		string(incident.Status),
		incident.ID,
	).Scan(&incident.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, service.ErrIncidentNotFound)
		}
		return dbError("failed to update incident", err)
	}
	return nil
}

// Delete удаляет инцидент, голоса и комментарии удаляются каскадно
func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1;`, id)
	if err != nil {
		return dbError("failed to delete incident", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for delete: %w", id, service.ErrIncidentNotFound)
	}
	return nil
}

// FindInBox находит инциденты в прямоугольнике, границы включаются.
// Порядок - порядок создания.
func (r *IncidentRepository) FindInBox(ctx context.Context, box models.BoundingBox) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ST_Intersects(location, ST_MakeEnvelope($1, $2, $3, $4, 4326))
		ORDER BY created_at, id;
	`
	rows, err := r.db.Query(ctx, query, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat)
	if err != nil {
		return nil, dbError("failed to find incidents in bounding box", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, dbError("failed to scan incident row in FindInBox", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error list iteration in FindInBox", err)
	}

	if err := r.attachVotesAndComments(ctx, incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

// UpsertVote создает голос или меняет его тип одним запросом.
// Первичный ключ (incident_id, user_id) не дает появиться второму голосу пользователя.
func (r *IncidentRepository) UpsertVote(ctx context.Context, vote *models.Vote) (bool, error) {
	query := `
		INSERT INTO incident_votes (incident_id, user_id, vote_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (incident_id, user_id) DO UPDATE SET
			vote_type = EXCLUDED.vote_type,
			updated_at = NOW()
		WHERE incident_votes.vote_type IS DISTINCT FROM EXCLUDED.vote_type;
	`
	cmdTag, err := r.db.Exec(ctx, query, vote.IncidentID, vote.UserID, string(vote.VoteType))
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("incident with id %s: %w", vote.IncidentID, service.ErrIncidentNotFound)
		}
		return false, dbError("failed to upsert vote", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// AddComment добавляет комментарий в конец списка
func (r *IncidentRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO incident_comments (incident_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, comment.IncidentID, comment.UserID, comment.Text).
		Scan(&comment.ID, &comment.Timestamp, &comment.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("incident with id %s: %w", comment.IncidentID, service.ErrIncidentNotFound)
		}
		return dbError("failed to add comment", err)
	}
	return nil
}

func (r *IncidentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	query := `
		UPDATE incident_comments SET
			body = $1,
			updated_at = NOW()
		WHERE id = $2 AND incident_id = $3
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query, comment.Text, comment.ID, comment.IncidentID).Scan(&comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("comment with id %s: %w", comment.ID, service.ErrCommentNotFound)
		}
		return dbError("failed to update comment", err)
	}
	return nil
}

func (r *IncidentRepository) DeleteComment(ctx context.Context, incidentID, commentID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incident_comments WHERE id = $1 AND incident_id = $2;`, commentID, incidentID)
	if err != nil {
		return dbError("failed to delete comment", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("comment with id %s: %w", commentID, service.ErrCommentNotFound)
	}
	return nil
}

// Count возвращает общее число инцидентов
func (r *IncidentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents;`).Scan(&count); err != nil {
		return 0, dbError("failed to count incidents", err)
	}
	return count, nil
}

// attachVotesAndComments догружает голоса и комментарии двумя запросами на весь набор
// и пересчитывает счетчики голосов.
func (r *IncidentRepository) attachVotesAndComments(ctx context.Context, incidents []*models.Incident) error {
	if len(incidents) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(incidents))
	byID := make(map[uuid.UUID]*models.Incident, len(incidents))
	for i, incident := range incidents {
		ids[i] = incident.ID
		byID[incident.ID] = incident
		incident.Votes = []models.Vote{}
		incident.Comments = []models.Comment{}
	}

	voteRows, err := r.db.Query(ctx, `
		SELECT incident_id, user_id, vote_type, updated_at
		FROM incident_votes
		WHERE incident_id = ANY($1)
		ORDER BY created_at, user_id;
	`, ids)
	if err != nil {
		return dbError("failed to load votes", err)
	}
	defer voteRows.Close()
	for voteRows.Next() {
		var vote models.Vote
		var voteType string
		if err := voteRows.Scan(&vote.IncidentID, &vote.UserID, &voteType, &vote.UpdatedAt); err != nil {
			return dbError("failed to scan vote row", err)
		}
		vote.VoteType = models.VoteType(voteType)
		if incident, ok := byID[vote.IncidentID]; ok {
			incident.Votes = append(incident.Votes, vote)
		}
	}
	if err := voteRows.Err(); err != nil {
		return dbError("error vote iteration", err)
	}

	commentRows, err := r.db.Query(ctx, `
		SELECT id, incident_id, user_id, body, created_at, updated_at
		FROM incident_comments
		WHERE incident_id = ANY($1)
		ORDER BY seq;
	`, ids)
	if err != nil {
		return dbError("failed to load comments", err)
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var comment models.Comment
		if err := commentRows.Scan(&comment.ID, &comment.IncidentID, &comment.UserID, &comment.Text, &comment.Timestamp, &comment.UpdatedAt); err != nil {
			return dbError("failed to scan comment row", err)
		}
		if incident, ok := byID[comment.IncidentID]; ok {
			incident.Comments = append(incident.Comments, comment)
		}
	}
	if err := commentRows.Err(); err != nil {
		return dbError("error comment iteration", err)
	}

	for _, incident := range incidents {
		incident.Tally()
	}
	return nil
}
