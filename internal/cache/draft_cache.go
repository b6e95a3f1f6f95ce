package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveystudio/internal/editor"
)

// EditorRecord is the stored state of one editor session
type EditorRecord struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"sessionId"`
	UserID     int               `json:"userId"`
	NiceURL    string            `json:"niceUrl,omitempty"`
	Checkpoint editor.Checkpoint `json:"checkpoint"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// DraftCache keeps editor sessions alive across requests and restarts.
// It is scratch state; the backend stays the only place a survey is
// persisted.
type DraftCache interface {
	Get(ctx context.Context, id string) (*EditorRecord, error)
	Set(ctx context.Context, rec *EditorRecord) error
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]string, error)
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a draft cache
func NewDraftCache(client *redis.Client, ttl time.Duration) DraftCache {
	return &draftCache{
		client: client,
		ttl:    ttl,
	}
}

// Key helpers
func (c *draftCache) editorKey(id string) string {
	return fmt.Sprintf("editor:%s", id)
}

func (c *draftCache) sessionIndexKey(sessionID string) string {
	return fmt.Sprintf("session:%s:editors", sessionID)
}

func (c *draftCache) Get(ctx context.Context, id string) (*EditorRecord, error) {
	data, err := c.client.Get(ctx, c.editorKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec EditorRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *draftCache) Set(ctx context.Context, rec *EditorRecord) error {
	rec.UpdatedAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.editorKey(rec.ID), data, c.ttl)
	pipe.SAdd(ctx, c.sessionIndexKey(rec.SessionID), rec.ID)
	pipe.Expire(ctx, c.sessionIndexKey(rec.SessionID), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *draftCache) Delete(ctx context.Context, id string) error {
	rec, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.editorKey(id))
	if rec != nil {
		pipe.SRem(ctx, c.sessionIndexKey(rec.SessionID), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListBySession returns the editor ids opened by a user session
func (c *draftCache) ListBySession(ctx context.Context, sessionID string) ([]string, error) {
	return c.client.SMembers(ctx, c.sessionIndexKey(sessionID)).Result()
}
