package services

import (
	"context"
	"testing"
	"time"

	"crucible/internal/authz"
	"crucible/internal/common"
	"crucible/pkg/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionService(store *memStore, now time.Time) *QuestionService {
	qs := NewQuestionService(store, store, store, authz.NewGate(store))
	qs.now = func() time.Time { return now }
	return qs
}

func TestCreateQuestionRequiresManageRights(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	qs := newQuestionService(store, now)
	creator := uuid.New()
	admin := uuid.New()
	contest := store.addContest(creator, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, store.AddAdmin(context.Background(), contest.ID, admin))

	req := &types.CreateQuestionRequest{ContestID: contest.ID, Title: "Two Sum", Description: "add two numbers", Points: 100}

	_, err := qs.CreateQuestion(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, common.ErrForbidden)

	question, err := qs.CreateQuestion(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, contest.ID, question.ContestID)
	assert.Equal(t, admin, question.CreatorID)
	assert.False(t, question.IsPublic)

	req.ContestID = uuid.New()
	_, err = qs.CreateQuestion(context.Background(), creator, req)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetQuestionVisibility(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	qs := newQuestionService(store, now)
	creator := uuid.New()
	stranger := uuid.New()

	upcoming := store.addContest(creator, now.Add(time.Hour), now.Add(2*time.Hour))
	hidden := store.addQuestion(upcoming.ID, 10, false)
	public := store.addQuestion(upcoming.ID, 10, true)

	live := store.addContest(creator, now.Add(-time.Hour), now.Add(time.Hour))
	started := store.addQuestion(live.ID, 10, false)

	_, err := qs.GetQuestion(context.Background(), stranger, hidden.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = qs.GetQuestion(context.Background(), creator, hidden.ID)
	assert.NoError(t, err)

	_, err = qs.GetQuestion(context.Background(), stranger, public.ID)
	assert.NoError(t, err)

	_, err = qs.GetQuestion(context.Background(), stranger, started.ID)
	assert.NoError(t, err)

	_, err = qs.GetQuestion(context.Background(), stranger, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetQuestionReturnsAtMostThreeSamples(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	qs := newQuestionService(store, now)
	question := store.addQuestion(uuid.New(), 10, true)
	for i := int32(0); i < 5; i++ {
		store.addTestCase(question.ID, "in", "out", true, i)
	}
	store.addTestCase(question.ID, "secret", "hidden", false, 9)

	resp, err := qs.GetQuestion(context.Background(), uuid.New(), question.ID)
	require.NoError(t, err)
	assert.Len(t, resp.SampleTestCases, maxSampleTestCases)
	for _, s := range resp.SampleTestCases {
		assert.NotEqual(t, "secret", s.Input)
	}
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	qs := newQuestionService(store, now)
	creator := uuid.New()
	contest := store.addContest(creator, now.Add(time.Hour), now.Add(2*time.Hour))
	question := store.addQuestion(contest.ID, 10, false)
	store.addTestCase(question.ID, "1", "1", false, 1)

	public := true
	req := &types.UpdateQuestionRequest{Title: "Renamed", Description: "new", Points: 50, IsPublic: &public}

	_, err := qs.UpdateQuestion(context.Background(), uuid.New(), question.ID, req)
	assert.ErrorIs(t, err, common.ErrForbidden)

	updated, err := qs.UpdateQuestion(context.Background(), creator, question.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, int32(50), updated.Points)
	assert.True(t, updated.IsPublic)

	req.IsPublic = nil
	updated, err = qs.UpdateQuestion(context.Background(), creator, question.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic, "omitted is_public keeps the current value")

	assert.ErrorIs(t, qs.DeleteQuestion(context.Background(), uuid.New(), question.ID), common.ErrForbidden)
	require.NoError(t, qs.DeleteQuestion(context.Background(), creator, question.ID))

	remaining, err := store.GetTestCasesByQuestion(context.Background(), question.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
