package services

import (
	"context"
	"time"

	"crucible/internal/database"
	"crucible/internal/models"
	"crucible/internal/sandbox"
	"crucible/pkg/types"

	"github.com/google/uuid"
)

// The interfaces below are satisfied by the gorm repositories in
// internal/database. Lookups return (nil, nil) when the row does not exist.

type ContestStore interface {
	CreateContest(ctx context.Context, contest *models.Contest) error
	GetContest(ctx context.Context, id uuid.UUID) (*models.Contest, error)
	GetContestBySlug(ctx context.Context, slug string) (*models.Contest, error)
	ListLiveContests(ctx context.Context, now time.Time) ([]models.Contest, error)
	ListUpcomingContests(ctx context.Context, now time.Time) ([]models.Contest, error)
	ListPastContests(ctx context.Context, now time.Time) ([]models.Contest, error)
	ListManagedContests(ctx context.Context, userID uuid.UUID) ([]models.Contest, error)
	UpdateContest(ctx context.Context, contest *models.Contest) error
	DeleteContest(ctx context.Context, id uuid.UUID) error
}

type QuestionStore interface {
	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	GetQuestionsByContest(ctx context.Context, contestID uuid.UUID) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

type TestCaseStore interface {
	CreateTestCase(ctx context.Context, testCase *models.TestCase) error
	GetTestCase(ctx context.Context, id uuid.UUID) (*models.TestCase, error)
	GetTestCasesByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.TestCase, error)
	GetSampleTestCasesByQuestion(ctx context.Context, questionID uuid.UUID, limit int) ([]models.TestCase, error)
	UpdateTestCase(ctx context.Context, testCase *models.TestCase) error
	DeleteTestCase(ctx context.Context, id uuid.UUID) error
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	FinalizeSubmission(ctx context.Context, submission *models.Submission) error
	CountAcceptedSubmissions(ctx context.Context, userID, questionID uuid.UUID) (int64, error)
	GetSubmissionsByUser(ctx context.Context, userID uuid.UUID, questionID *uuid.UUID, limit, offset int) ([]models.Submission, error)
}

type StandingStore interface {
	CreateStanding(ctx context.Context, standing *models.UserContest) error
	GetStanding(ctx context.Context, userID, contestID uuid.UUID) (*models.UserContest, error)
	GetLeaderboard(ctx context.Context, contestID uuid.UUID) ([]models.UserContest, error)
	CountStandingsByContest(ctx context.Context, contestID uuid.UUID) (int64, error)
	RecordAcceptedSubmission(ctx context.Context, in database.AcceptedSubmission) (*database.StandingUpdate, error)
	GetSolvedQuestionIDs(ctx context.Context, userID, contestID uuid.UUID) (map[uuid.UUID]bool, error)
}

type AdminStore interface {
	AddAdmin(ctx context.Context, contestID, adminID uuid.UUID) error
	RemoveAdmin(ctx context.Context, contestID, adminID uuid.UUID) (bool, error)
	IsContestAdmin(ctx context.Context, contestID, userID uuid.UUID) (bool, error)
	GetAdminsByContest(ctx context.Context, contestID uuid.UUID) ([]models.ContestAdmin, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// CodeRunner executes source code once against one stdin.
type CodeRunner interface {
	Run(ctx context.Context, language, code, stdin string) (*sandbox.ExecuteResponse, error)
}

// EventPublisher fans out verdicts and standing changes to live clients.
type EventPublisher interface {
	PublishVerdictUpdate(ctx context.Context, contestID *uuid.UUID, verdict types.VerdictEvent) error
	PublishLeaderboardUpdate(ctx context.Context, contestID uuid.UUID, entry types.LeaderboardEntry) error
}
