package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"surveystudio/internal/model"
)

// ResultsCache holds normalized dashboard results per survey, one entry
// per viewing user since access is decided by the backend. Each entry
// expires ttl after it was written and can be dropped explicitly.
type ResultsCache interface {
	Get(ctx context.Context, userID int, surveyID string) (*model.AggregatedSurveyResult, error)
	Set(ctx context.Context, userID int, result *model.AggregatedSurveyResult) error
	Invalidate(ctx context.Context, surveyID string) error
}

type resultsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultsCache creates a results cache
func NewResultsCache(client *redis.Client, ttl time.Duration) ResultsCache {
	return &resultsCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *resultsCache) key(surveyID string, userID int) string {
	return fmt.Sprintf("survey:%s:results:%d", surveyID, userID)
}

// indexKey lists the users holding an entry for a survey
func (c *resultsCache) indexKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:results:users", surveyID)
}

func (c *resultsCache) Get(ctx context.Context, userID int, surveyID string) (*model.AggregatedSurveyResult, error) {
	data, err := c.client.Get(ctx, c.key(surveyID, userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.AggregatedSurveyResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Set stores one user's entry with its own expiry. The index outlives
// every entry it names since each Set extends it.
func (c *resultsCache) Set(ctx context.Context, userID int, result *model.AggregatedSurveyResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	index := c.indexKey(result.SurveyID)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(result.SurveyID, userID), data, c.ttl)
	pipe.SAdd(ctx, index, strconv.Itoa(userID))
	pipe.Expire(ctx, index, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached results of every user for a survey
func (c *resultsCache) Invalidate(ctx context.Context, surveyID string) error {
	index := c.indexKey(surveyID)
	members, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		uid, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		keys = append(keys, c.key(surveyID, uid))
	}
	keys = append(keys, index)
	return c.client.Del(ctx, keys...).Err()
}
