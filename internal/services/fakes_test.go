package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"crucible/internal/database"
	"crucible/internal/models"
	"crucible/internal/sandbox"
	"crucible/pkg/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var errUniqueViolation = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

type solvedKey struct {
	userID     uuid.UUID
	questionID uuid.UUID
}

type standingKey struct {
	userID    uuid.UUID
	contestID uuid.UUID
}

// memStore is an in-memory stand-in for every repository the services use.
type memStore struct {
	mu sync.Mutex

	users       map[uuid.UUID]*models.User
	contests    map[uuid.UUID]*models.Contest
	questions   map[uuid.UUID]*models.Question
	testCases   map[uuid.UUID]*models.TestCase
	submissions map[uuid.UUID]*models.Submission
	standings   map[standingKey]*models.UserContest
	solved      map[solvedKey]models.SolvedQuestion
	admins      map[uuid.UUID]map[uuid.UUID]bool

	// recordErrs are returned by RecordAcceptedSubmission, one per call,
	// before it starts succeeding.
	recordErrs  []error
	recordCalls int

	// finalizeErrs are returned by FinalizeSubmission, one per call, before
	// it starts succeeding. alwaysFailFinalize makes every call fail.
	finalizeErrs       []error
	finalizeCalls      int
	alwaysFailFinalize error
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[uuid.UUID]*models.User),
		contests:    make(map[uuid.UUID]*models.Contest),
		questions:   make(map[uuid.UUID]*models.Question),
		testCases:   make(map[uuid.UUID]*models.TestCase),
		submissions: make(map[uuid.UUID]*models.Submission),
		standings:   make(map[standingKey]*models.UserContest),
		solved:      make(map[solvedKey]models.SolvedQuestion),
		admins:      make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (m *memStore) addUser(username string) *models.User {
	u := &models.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()
	return u
}

func (m *memStore) addContest(creatorID uuid.UUID, start, end time.Time) *models.Contest {
	c := &models.Contest{ID: uuid.New(), Name: "Weekly", Slug: "weekly", CreatorID: creatorID, StartTime: start, EndTime: end}
	m.mu.Lock()
	m.contests[c.ID] = c
	m.mu.Unlock()
	return c
}

func (m *memStore) addQuestion(contestID uuid.UUID, points int32, public bool) *models.Question {
	q := &models.Question{ID: uuid.New(), ContestID: contestID, Title: "Sum", Description: "add", Points: points, IsPublic: public}
	m.mu.Lock()
	m.questions[q.ID] = q
	m.mu.Unlock()
	return q
}

func (m *memStore) addTestCase(questionID uuid.UUID, input, expected string, sample bool, order int32) *models.TestCase {
	tc := &models.TestCase{ID: uuid.New(), QuestionID: questionID, Input: input, ExpectedOutput: expected, IsSample: sample, TestOrder: order}
	m.mu.Lock()
	m.testCases[tc.ID] = tc
	m.mu.Unlock()
	return tc
}

func (m *memStore) join(userID, contestID uuid.UUID) {
	m.mu.Lock()
	m.standings[standingKey{userID, contestID}] = &models.UserContest{UserID: userID, ContestID: contestID, JoinedAt: time.Now()}
	m.mu.Unlock()
}

func (m *memStore) standing(userID, contestID uuid.UUID) models.UserContest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.standings[standingKey{userID, contestID}]
}

func (m *memStore) submissionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submissions)
}

// ContestStore

func (m *memStore) CreateContest(_ context.Context, c *models.Contest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.contests[c.ID] = &cp
	return nil
}

func (m *memStore) GetContest(_ context.Context, id uuid.UUID) (*models.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contests[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) GetContestBySlug(_ context.Context, slug string) (*models.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contests {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) listContests(keep func(*models.Contest) bool) []models.Contest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Contest{}
	for _, c := range m.contests {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (m *memStore) ListLiveContests(_ context.Context, now time.Time) ([]models.Contest, error) {
	return m.listContests(func(c *models.Contest) bool { return c.IsLive(now) }), nil
}

func (m *memStore) ListUpcomingContests(_ context.Context, now time.Time) ([]models.Contest, error) {
	return m.listContests(func(c *models.Contest) bool { return !c.HasStarted(now) }), nil
}

func (m *memStore) ListPastContests(_ context.Context, now time.Time) ([]models.Contest, error) {
	return m.listContests(func(c *models.Contest) bool { return c.HasEnded(now) }), nil
}

func (m *memStore) ListManagedContests(_ context.Context, userID uuid.UUID) ([]models.Contest, error) {
	return m.listContests(func(c *models.Contest) bool {
		return c.CreatorID == userID || m.admins[c.ID][userID]
	}), nil
}

func (m *memStore) UpdateContest(_ context.Context, c *models.Contest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.contests[c.ID] = &cp
	return nil
}

func (m *memStore) DeleteContest(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contests, id)
	for qid, q := range m.questions {
		if q.ContestID == id {
			delete(m.questions, qid)
		}
	}
	return nil
}

// QuestionStore

func (m *memStore) CreateQuestion(_ context.Context, q *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *memStore) GetQuestion(_ context.Context, id uuid.UUID) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (m *memStore) GetQuestionsByContest(_ context.Context, contestID uuid.UUID) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Question
	for _, q := range m.questions {
		if q.ContestID == contestID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memStore) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return m.CreateQuestion(ctx, q)
}

func (m *memStore) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.questions, id)
	for tid, tc := range m.testCases {
		if tc.QuestionID == id {
			delete(m.testCases, tid)
		}
	}
	return nil
}

// TestCaseStore

func (m *memStore) CreateTestCase(_ context.Context, tc *models.TestCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tc
	m.testCases[tc.ID] = &cp
	return nil
}

func (m *memStore) GetTestCase(_ context.Context, id uuid.UUID) (*models.TestCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tc, ok := m.testCases[id]
	if !ok {
		return nil, nil
	}
	cp := *tc
	return &cp, nil
}

func (m *memStore) testCasesFor(questionID uuid.UUID, samplesOnly bool) []models.TestCase {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TestCase
	for _, tc := range m.testCases {
		if tc.QuestionID == questionID && (!samplesOnly || tc.IsSample) {
			out = append(out, *tc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestOrder < out[j].TestOrder })
	return out
}

func (m *memStore) GetTestCasesByQuestion(_ context.Context, questionID uuid.UUID) ([]models.TestCase, error) {
	return m.testCasesFor(questionID, false), nil
}

func (m *memStore) GetSampleTestCasesByQuestion(_ context.Context, questionID uuid.UUID, limit int) ([]models.TestCase, error) {
	out := m.testCasesFor(questionID, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateTestCase(ctx context.Context, tc *models.TestCase) error {
	return m.CreateTestCase(ctx, tc)
}

func (m *memStore) DeleteTestCase(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.testCases, id)
	return nil
}

// SubmissionStore

func (m *memStore) CreateSubmission(_ context.Context, s *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = time.Now()
	cp := *s
	m.submissions[s.ID] = &cp
	return nil
}

func (m *memStore) GetSubmission(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) FinalizeSubmission(_ context.Context, s *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeCalls++
	if m.alwaysFailFinalize != nil {
		return m.alwaysFailFinalize
	}
	if len(m.finalizeErrs) > 0 {
		err := m.finalizeErrs[0]
		m.finalizeErrs = m.finalizeErrs[1:]
		return err
	}
	stored, ok := m.submissions[s.ID]
	if !ok || stored.Status != models.SubmissionStatusPending {
		return database.ErrSubmissionAlreadyJudged
	}
	now := time.Now()
	s.JudgedAt = &now
	cp := *s
	m.submissions[s.ID] = &cp
	return nil
}

func (m *memStore) CountAcceptedSubmissions(_ context.Context, userID, questionID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.submissions {
		if s.UserID == userID && s.QuestionID == questionID && s.Status == models.SubmissionStatusAccepted {
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetSubmissionsByUser(_ context.Context, userID uuid.UUID, questionID *uuid.UUID, limit, offset int) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Submission
	for _, s := range m.submissions {
		if s.UserID == userID && (questionID == nil || s.QuestionID == *questionID) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []models.Submission{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// StandingStore

func (m *memStore) CreateStanding(_ context.Context, st *models.UserContest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := standingKey{st.UserID, st.ContestID}
	if _, ok := m.standings[key]; ok {
		return errUniqueViolation
	}
	st.JoinedAt = time.Now()
	cp := *st
	m.standings[key] = &cp
	return nil
}

func (m *memStore) GetStanding(_ context.Context, userID, contestID uuid.UUID) (*models.UserContest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.standings[standingKey{userID, contestID}]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memStore) GetLeaderboard(_ context.Context, contestID uuid.UUID) ([]models.UserContest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserContest
	for _, st := range m.standings {
		if st.ContestID == contestID {
			cp := *st
			cp.User = m.users[st.UserID]
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (m *memStore) CountStandingsByContest(_ context.Context, contestID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.standings {
		if k.contestID == contestID {
			n++
		}
	}
	return n, nil
}

// RecordAcceptedSubmission mirrors the transactional repository: the whole
// read-modify-write happens under one lock.
func (m *memStore) RecordAcceptedSubmission(_ context.Context, in database.AcceptedSubmission) (*database.StandingUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordCalls++
	if len(m.recordErrs) > 0 {
		err := m.recordErrs[0]
		m.recordErrs = m.recordErrs[1:]
		return nil, err
	}

	st, ok := m.standings[standingKey{in.UserID, in.ContestID}]
	if !ok {
		return nil, database.ErrStandingNotFound
	}

	var accepted int64
	for _, s := range m.submissions {
		if s.UserID == in.UserID && s.QuestionID == in.QuestionID && s.Status == models.SubmissionStatusAccepted {
			accepted++
		}
	}

	key := solvedKey{in.UserID, in.QuestionID}
	_, solvedBefore := m.solved[key]
	if !solvedBefore {
		m.solved[key] = models.SolvedQuestion{
			UserID:       in.UserID,
			QuestionID:   in.QuestionID,
			ContestID:    in.ContestID,
			SubmissionID: in.SubmissionID,
			SolvedAt:     in.AcceptedAt,
		}
		st.SolvedQuestions++
		st.TotalPoints += in.Points
	}
	st.TotalSubmissions++
	at := in.AcceptedAt
	st.LastSubmissionAt = &at

	return &database.StandingUpdate{Standing: *st, FirstSolve: !solvedBefore, AcceptedCount: accepted}, nil
}

func (m *memStore) GetSolvedQuestionIDs(_ context.Context, userID, contestID uuid.UUID) (map[uuid.UUID]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]bool)
	for k, s := range m.solved {
		if k.userID == userID && s.ContestID == contestID {
			out[k.questionID] = true
		}
	}
	return out, nil
}

// AdminStore

func (m *memStore) AddAdmin(_ context.Context, contestID, adminID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.admins[contestID] == nil {
		m.admins[contestID] = make(map[uuid.UUID]bool)
	}
	if m.admins[contestID][adminID] {
		return errUniqueViolation
	}
	m.admins[contestID][adminID] = true
	return nil
}

func (m *memStore) RemoveAdmin(_ context.Context, contestID, adminID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.admins[contestID][adminID] {
		return false, nil
	}
	delete(m.admins[contestID], adminID)
	return true, nil
}

func (m *memStore) IsContestAdmin(_ context.Context, contestID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[contestID][userID], nil
}

func (m *memStore) GetAdminsByContest(_ context.Context, contestID uuid.UUID) ([]models.ContestAdmin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ContestAdmin
	for id := range m.admins[contestID] {
		out = append(out, models.ContestAdmin{ContestID: contestID, AdminID: id, Admin: m.users[id]})
	}
	return out, nil
}

// UserStore

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

// fakeRunner answers from a stdin to stdout table. Inputs listed in errs
// fail with the given error instead.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: make(map[string]string), errs: make(map[string]error)}
}

func (f *fakeRunner) Run(_ context.Context, _, _, stdin string) (*sandbox.ExecuteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, stdin)
	if err, ok := f.errs[stdin]; ok {
		return nil, err
	}
	out := f.outputs[stdin]
	code := 0
	return &sandbox.ExecuteResponse{Language: "python", Run: &sandbox.Stage{Stdout: out, Output: &out, Code: &code}}, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePublisher struct {
	mu          sync.Mutex
	verdicts    []types.VerdictEvent
	leaderboard []types.LeaderboardEntry
	err         error
}

func (f *fakePublisher) PublishVerdictUpdate(_ context.Context, _ *uuid.UUID, v types.VerdictEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts = append(f.verdicts, v)
	return f.err
}

func (f *fakePublisher) PublishLeaderboardUpdate(_ context.Context, _ uuid.UUID, e types.LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboard = append(f.leaderboard, e)
	return f.err
}

var errSandboxDown = errors.New("sandbox returned status 503")
