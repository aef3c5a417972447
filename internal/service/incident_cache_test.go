package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/repository/memory"
	"github.com/shenikar/travel_safety_system/internal/service"
	webhook_mocks "github.com/shenikar/travel_safety_system/internal/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// generationCache повторяет контракт Redis-кеша: запись проходит, только если
// поколение не менялось с момента чтения.
type generationCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*models.Incident
	generations map[uuid.UUID]int64
}

func newGenerationCache() *generationCache {
	return &generationCache{
		entries:     make(map[uuid.UUID]*models.Incident),
		generations: make(map[uuid.UUID]int64),
	}
}

func (c *generationCache) GetIncidentFromCache(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id], nil
}

func (c *generationCache) CacheGeneration(_ context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id], nil
}

func (c *generationCache) SetIncidentCache(_ context.Context, incident *models.Incident, generation int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[incident.ID] != generation {
		return false, nil
	}
	c.entries[incident.ID] = incident
	return true, nil
}

func (c *generationCache) InvalidateIncidentCache(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[id]++
	delete(c.entries, id)
	return nil
}

// interleavingRepository выполняет afterRead один раз сразу после чтения из хранилища
type interleavingRepository struct {
	*memory.IncidentRepository
	afterRead func()
}

func (r *interleavingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident, err := r.IncidentRepository.GetByID(ctx, id)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return incident, err
}

func newInterleavingService(t *testing.T) (service.IncidentService, *interleavingRepository, *generationCache) {
	ctrl := gomock.NewController(t)
	repo := &interleavingRepository{IncidentRepository: memory.NewIncidentRepository()}
	cache := newGenerationCache()
	webhookMock := webhook_mocks.NewMockWebhookPublisher(ctrl)
	webhookMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	return service.NewIncidentService(repo, cache, webhookMock, quietLogger()), repo, cache
}

func TestGetIncident_MutationDuringReadIsNotCachedStale(t *testing.T) {
	ctx := context.Background()

	mutations := map[string]func(svc service.IncidentService, id uuid.UUID) error{
		"vote": func(svc service.IncidentService, id uuid.UUID) error {
			_, _, err := svc.Vote(ctx, id, "userA", models.VoteUp)
			return err
		},
		"comment": func(svc service.IncidentService, id uuid.UUID) error {
			_, err := svc.Comment(ctx, id, "userB", "road closed")
			return err
		},
		"update": func(svc service.IncidentService, id uuid.UUID) error {
			status := models.StatusResolved
			_, err := svc.UpdateIncident(ctx, id, "u1", models.IncidentPatch{Status: &status})
			return err
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			svc, repo, cache := newInterleavingService(t)
			incident := mustCreate(t, svc, report("u1", 12.97, 77.59))

			repo.afterRead = func() {
				require.NoError(t, mutate(svc, incident.ID))
			}
			_, err := svc.GetIncident(ctx, incident.ID)
			require.NoError(t, err)

			cached, _ := cache.GetIncidentFromCache(ctx, incident.ID)
			assert.Nil(t, cached, "snapshot read before the mutation must not be cached")

			fresh, err := repo.IncidentRepository.GetByID(ctx, incident.ID)
			require.NoError(t, err)
			got, err := svc.GetIncident(ctx, incident.ID)
			require.NoError(t, err)
			assert.Equal(t, fresh.UpvoteCount, got.UpvoteCount)
			assert.Len(t, got.Comments, len(fresh.Comments))
			assert.Equal(t, fresh.Status, got.Status)
			if name == "vote" {
				assert.Equal(t, 1, got.UpvoteCount)
			}
		})
	}
}

func TestGetIncident_VoteAfterCachedReadIsVisible(t *testing.T) {
	svc, _, _ := newInterleavingService(t)
	ctx := context.Background()
	incident := mustCreate(t, svc, report("u1", 12.97, 77.59))

	first, err := svc.GetIncident(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.UpvoteCount)

	_, _, err = svc.Vote(ctx, incident.ID, "userA", models.VoteUp)
	require.NoError(t, err)

	second, err := svc.GetIncident(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.UpvoteCount)
}
