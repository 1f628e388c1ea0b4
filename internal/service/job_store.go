package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Suryansh777777/Mathmatika/internal/model"
)

// ErrJobNotFound is returned when no record exists for a job id.
var ErrJobNotFound = errors.New("job not found")

// jobRecordTTL keeps finished job results queryable for a day.
const jobRecordTTL = 24 * time.Hour

// JobStore persists terminal job results in redis. A nil store is valid and
// disables persistence: Save is a no-op and Get always misses. The pipeline
// itself never depends on the store.
type JobStore struct {
	rdb *redis.Client
}

// NewJobStore wraps a redis client; pass nil to run without persistence.
func NewJobStore(rdb *redis.Client) *JobStore {
	if rdb == nil {
		return nil
	}
	return &JobStore{rdb: rdb}
}

func jobKey(id string) string {
	return "job:" + id
}

// Save records a terminal result. Store failures are logged, never surfaced:
// the result has already been produced and belongs to the caller.
func (s *JobStore) Save(jobID string, result *model.AnimationResult) {
	if s == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("jobstore: marshal %s: %v", jobID, err)
		return
	}
	if err := s.rdb.Set(context.Background(), jobKey(jobID), data, jobRecordTTL).Err(); err != nil {
		log.Printf("jobstore: save %s: %v", jobID, err)
	}
}

// Get fetches a stored result by job id.
func (s *JobStore) Get(ctx context.Context, jobID string) (*model.AnimationResult, error) {
	if s == nil {
		return nil, ErrJobNotFound
	}
	data, err := s.rdb.Get(ctx, jobKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: get %s: %w", jobID, err)
	}
	var result model.AnimationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("jobstore: decode %s: %w", jobID, err)
	}
	return &result, nil
}
