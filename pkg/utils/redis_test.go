package utils

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisClient(client)
}

func receive(t *testing.T, sub *redis.PubSub) types.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event types.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	return event
}

func TestPublishVerdictUpdate(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	contestID := uuid.New()

	sub := r.SubscribeToVerdictUpdates(ctx, &contestID)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	verdict := types.VerdictEvent{
		SubmissionID: uuid.New(),
		UserID:       uuid.New(),
		QuestionID:   uuid.New(),
		Status:       models.SubmissionStatusAccepted,
		Passed:       3,
		Total:        3,
	}
	require.NoError(t, r.PublishVerdictUpdate(ctx, &contestID, verdict))

	event := receive(t, sub)
	assert.Equal(t, types.EventTypeSubmissionVerdict, event.Type)
	require.NotNil(t, event.ContestID)
	assert.Equal(t, contestID, *event.ContestID)

	data, ok := event.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Accepted", data["status"])
	assert.Equal(t, verdict.SubmissionID.String(), data["submission_id"])
}

func TestPublishVerdictUpdatePublicChannel(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	sub := r.SubscribeToVerdictUpdates(ctx, nil)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, r.PublishVerdictUpdate(ctx, nil, types.VerdictEvent{Status: models.SubmissionStatusWrongAnswer}))

	event := receive(t, sub)
	assert.Nil(t, event.ContestID)
	assert.Equal(t, "verdicts:public", VerdictChannel(nil))
}

func TestPublishLeaderboardUpdate(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	contestID := uuid.New()

	sub := r.SubscribeToLeaderboardUpdates(ctx, contestID)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	entry := types.LeaderboardEntry{UserID: uuid.New(), TotalPoints: 250, SolvedQuestions: 2, TotalSubmissions: 3}
	require.NoError(t, r.PublishLeaderboardUpdate(ctx, contestID, entry))

	event := receive(t, sub)
	assert.Equal(t, types.EventTypeLeaderboardUpdate, event.Type)
	data, ok := event.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 250, data["total_points"])
	assert.EqualValues(t, 2, data["solved_questions"])
}

func TestPing(t *testing.T) {
	r := newTestRedis(t)
	assert.NoError(t, r.Ping(context.Background()))
}
