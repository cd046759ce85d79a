package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsIngestedStream receives one entry per freshly downloaded date.
const StatsIngestedStream = "stats.ingested.mlb"

// StatsIngested announces that a date's records are available.
type StatsIngested struct {
	Date    string `json:"date"`
	Players int    `json:"players"`
	Source  string `json:"source"`
}

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: StatsIngestedStream,
	}
}

// PublishStatsIngested appends an ingest event to the stream.
func (rsp *RedisStreamPublisher) PublishStatsIngested(ctx context.Context, event StatsIngested) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rsp.stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", rsp.stream, err)
	}
	return nil
}
