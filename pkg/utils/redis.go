package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crucible/pkg/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const publicChannelKey = "public"

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func VerdictChannel(contestID *uuid.UUID) string {
	if contestID == nil {
		return "verdicts:" + publicChannelKey
	}
	return fmt.Sprintf("verdicts:%s", contestID)
}

func LeaderboardChannel(contestID uuid.UUID) string {
	return fmt.Sprintf("leaderboard:%s", contestID)
}

// PublishVerdictUpdate announces a judged submission. Public submissions go
// to a shared channel.
func (r *RedisClient) PublishVerdictUpdate(ctx context.Context, contestID *uuid.UUID, verdict types.VerdictEvent) error {
	return r.publish(ctx, VerdictChannel(contestID), types.Event{
		Type:      types.EventTypeSubmissionVerdict,
		ContestID: contestID,
		Data:      verdict,
		Timestamp: time.Now().UTC(),
	})
}

func (r *RedisClient) SubscribeToVerdictUpdates(ctx context.Context, contestID *uuid.UUID) *redis.PubSub {
	return r.client.Subscribe(ctx, VerdictChannel(contestID))
}

func (r *RedisClient) PublishLeaderboardUpdate(ctx context.Context, contestID uuid.UUID, entry types.LeaderboardEntry) error {
	return r.publish(ctx, LeaderboardChannel(contestID), types.Event{
		Type:      types.EventTypeLeaderboardUpdate,
		ContestID: &contestID,
		Data:      entry,
		Timestamp: time.Now().UTC(),
	})
}

func (r *RedisClient) SubscribeToLeaderboardUpdates(ctx context.Context, contestID uuid.UUID) *redis.PubSub {
	return r.client.Subscribe(ctx, LeaderboardChannel(contestID))
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) publish(ctx context.Context, channel string, event types.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	return r.client.Publish(ctx, channel, data).Err()
}
