// Package cache keeps submitted results in redis. Results never change once
// written, so entries are only ever expired, never invalidated.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/services"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "medunacy:result:"

type ResultCache struct {
	next   services.ResultStore
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(next services.ResultStore, client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{next: next, client: client, ttl: ttl}
}

// Connect opens a client and checks the server is reachable.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func key(sessionID uuid.UUID) string {
	return keyPrefix + sessionID.String()
}

// GetResultBySession reads through the cache. Redis failures fall back to the
// underlying store.
func (c *ResultCache) GetResultBySession(ctx context.Context, sessionID uuid.UUID) (*models.Result, error) {
	raw, err := c.client.Get(ctx, key(sessionID)).Bytes()
	if err == nil {
		var r models.Result
		if err := json.Unmarshal(raw, &r); err == nil {
			return &r, nil
		}
		log.Printf("[Cache] dropping undecodable entry for %s", sessionID)
		c.client.Del(ctx, key(sessionID))
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[Cache] get %s: %v", sessionID, err)
	}

	r, err := c.next.GetResultBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, r)
	return r, nil
}

func (c *ResultCache) ListResultsByUser(ctx context.Context, userID uint, limit int) ([]models.Result, error) {
	return c.next.ListResultsByUser(ctx, userID, limit)
}

// Warm stores a freshly submitted result.
func (c *ResultCache) Warm(ctx context.Context, r *models.Result) {
	c.store(ctx, r)
}

func (c *ResultCache) store(ctx context.Context, r *models.Result) {
	raw, err := json.Marshal(r)
	if err != nil {
		log.Printf("[Cache] encode result %s: %v", r.SessionID, err)
		return
	}
	if err := c.client.Set(ctx, key(r.SessionID), raw, c.ttl).Err(); err != nil {
		log.Printf("[Cache] set %s: %v", r.SessionID, err)
	}
}
