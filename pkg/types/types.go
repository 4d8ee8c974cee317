package types

import (
	"time"

	"crucible/internal/models"

	"github.com/google/uuid"
)

// SubmitCodeRequest submits or runs code against a public question.
type SubmitCodeRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Code       string    `json:"code" validate:"required"`
	Language   string    `json:"language" validate:"required,max=30"`
	IsRun      bool      `json:"is_run"`
}

// ContestSubmitCodeRequest submits or runs code against a contest question.
type ContestSubmitCodeRequest struct {
	ContestID  uuid.UUID `json:"contest_id" validate:"required"`
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Code       string    `json:"code" validate:"required"`
	Language   string    `json:"language" validate:"required,max=30"`
	IsRun      bool      `json:"is_run"`
}

// SubmissionResponse is returned by both submit and run. SubmissionID is
// nil for runs. StandingsUpdated is only set for accepted contest
// submissions.
type SubmissionResponse struct {
	SubmissionID     *uuid.UUID              `json:"submission_id"`
	Status           models.SubmissionStatus `json:"status"`
	Output           string                  `json:"output"`
	PassedTestCases  int                     `json:"passed_test_cases"`
	TotalTestCases   int                     `json:"total_test_cases"`
	IsRun            bool                    `json:"is_run"`
	TestCaseResults  []models.TestCaseResult `json:"test_case_results"`
	StandingsUpdated *bool                   `json:"standings_updated,omitempty"`
}

type CreateContestRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

type UpdateContestRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// ContestDetailsResponse is the contest as seen by the caller.
type ContestDetailsResponse struct {
	Contest          models.Contest `json:"contest"`
	IsRegistered     bool           `json:"is_registered"`
	Role             string         `json:"role"`
	ParticipantCount int64          `json:"participant_count"`
}

type AdminSummary struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type ManageContestResponse struct {
	Contest   models.Contest    `json:"contest"`
	Role      string            `json:"role"`
	Questions []models.Question `json:"questions"`
	Admins    []AdminSummary    `json:"admins"`
}

type QuestionSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Points int32     `json:"points"`
	Solved bool      `json:"solved"`
}

type ContestQuestionsResponse struct {
	Contest   models.Contest    `json:"contest"`
	Questions []QuestionSummary `json:"questions"`
}

type LeaderboardEntry struct {
	Rank             int        `json:"rank"`
	UserID           uuid.UUID  `json:"user_id"`
	Username         string     `json:"username"`
	TotalPoints      int32      `json:"total_points"`
	SolvedQuestions  int32      `json:"solved_questions"`
	TotalSubmissions int32      `json:"total_submissions"`
	LastSubmissionAt *time.Time `json:"last_submission_at"`
}

type LeaderboardResponse struct {
	ContestID uuid.UUID          `json:"contest_id"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type CreateQuestionRequest struct {
	ContestID   uuid.UUID `json:"contest_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"required"`
	Points      int32     `json:"points" validate:"gte=0"`
}

type UpdateQuestionRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Points      int32  `json:"points" validate:"gte=0"`
	IsPublic    *bool  `json:"is_public,omitempty"`
}

type SampleTestCase struct {
	ID             uuid.UUID `json:"id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
}

type QuestionWithSamplesResponse struct {
	Question        models.Question  `json:"question"`
	SampleTestCases []SampleTestCase `json:"sample_test_cases"`
}

type CreateTestCaseRequest struct {
	QuestionID     uuid.UUID `json:"question_id" validate:"required"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	IsSample       bool      `json:"is_sample"`
	TestOrder      int32     `json:"test_order" validate:"gte=0"`
}

type UpdateTestCaseRequest struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsSample       bool   `json:"is_sample"`
	TestOrder      int32  `json:"test_order" validate:"gte=0"`
}

type AlterAdminRequest struct {
	ContestID uuid.UUID `json:"contest_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
}

// Event is published on redis pub/sub for live clients.
type Event struct {
	Type      string      `json:"type"`
	ContestID *uuid.UUID  `json:"contest_id,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventTypeLeaderboardUpdate = "leaderboard_update"
	EventTypeSubmissionVerdict = "submission_verdict"
)

type VerdictEvent struct {
	SubmissionID uuid.UUID               `json:"submission_id"`
	UserID       uuid.UUID               `json:"user_id"`
	QuestionID   uuid.UUID               `json:"question_id"`
	Status       models.SubmissionStatus `json:"status"`
	Passed       int                     `json:"passed"`
	Total        int                     `json:"total"`
}
