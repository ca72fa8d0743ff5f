package models

import (
	"context"
	"fmt"
	"time"

	"github.com/getori/ori/core-api/config/redis"
)

const webhookEventTTL = 24 * time.Hour

// EventDeduper marks provider event ids as seen. MarkSeen returns false when
// the id was already recorded. Forget drops a mark so a failed event can be
// reprocessed on the provider's retry.
type EventDeduper interface {
	MarkSeen(eventID string) (bool, error)
	Forget(eventID string) error
}

// WebhookEventStore tracks processed webhook event ids in Redis so provider
// retries of an already-handled event are acknowledged without reprocessing.
type WebhookEventStore struct {
	name    string
	context context.Context
	db      *redis.RedisDB
}

func NewWebhookEventStore(ctx context.Context, redis *redis.RedisDB, name string) *WebhookEventStore {
	return &WebhookEventStore{
		name:    name,
		context: ctx,
		db:      redis,
	}
}

func (store *WebhookEventStore) MarkSeen(eventID string) (bool, error) {
	key := fmt.Sprintf("%s:%s", store.name, eventID)

	result := store.db.Client.SetNX(store.context, key, 1, webhookEventTTL)
	if err := result.Err(); err != nil {
		return false, err
	}

	return result.Val(), nil
}

func (store *WebhookEventStore) Forget(eventID string) error {
	key := fmt.Sprintf("%s:%s", store.name, eventID)

	return store.db.Client.Del(store.context, key).Err()
}

func (store *WebhookEventStore) Close() error {
	return store.db.Client.Close()
}
