package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
)

const (
	incidentCacheTTL = 5 * time.Minute
	// Счетчик поколений живет дольше записи, чтобы пережить любое заполнение кеша
	generationTTL = time.Hour
)

type IncidentCache struct {
	redisClient *redis.Client
}

func NewIncidentCache(redisClient *redis.Client) service.IncidentCache {
	return &IncidentCache{redisClient: redisClient}
}

func incidentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

func incidentGenerationKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s:gen", id.String())
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (c *IncidentCache) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := c.redisClient.Get(ctx, incidentCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// CacheGeneration читает счетчик инвалидаций. Отсутствующий ключ - поколение 0.
func (c *IncidentCache) CacheGeneration(ctx context.Context, id uuid.UUID) (int64, error) {
	generation, err := c.redisClient.Get(ctx, incidentGenerationKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get incident cache generation: %w", err)
	}
	return generation, nil
}

// SetIncidentCache сохраняет инцидент в Redis, если поколение не изменилось.
// WATCH на ключе поколения отменяет запись, если инвалидация успела вклиниться.
func (c *IncidentCache) SetIncidentCache(ctx context.Context, incident *models.Incident, generation int64) (bool, error) {
	val, err := json.Marshal(incident)
	if err != nil {
		return false, fmt.Errorf("failed to marshal incident for cache: %w", err)
	}

	genKey := incidentGenerationKey(incident.ID)
	stored := false
	err = c.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, incidentCacheKey(incident.ID), val, incidentCacheTTL)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return stored, nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша и увеличивает поколение записи
func (c *IncidentCache) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	genKey := incidentGenerationKey(id)
	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, incidentCacheKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
