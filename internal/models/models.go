package models

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusPending           SubmissionStatus = "Pending"
	SubmissionStatusAccepted          SubmissionStatus = "Accepted"
	SubmissionStatusWrongAnswer       SubmissionStatus = "Wrong Answer"
	SubmissionStatusPartial           SubmissionStatus = "Partial"
	SubmissionStatusRuntimeError      SubmissionStatus = "Runtime Error"
	SubmissionStatusNoTestCases       SubmissionStatus = "No Test Cases"
	SubmissionStatusNoSampleTestCases SubmissionStatus = "No Sample Test Cases"
)

// PersistedSubmissionStatuses are the values a stored submission may carry.
// Run-only statuses never reach the database.
var PersistedSubmissionStatuses = []SubmissionStatus{
	SubmissionStatusPending,
	SubmissionStatusAccepted,
	SubmissionStatusWrongAnswer,
	SubmissionStatusPartial,
	SubmissionStatusRuntimeError,
	SubmissionStatusNoTestCases,
}

func (s SubmissionStatus) IsTerminal() bool {
	return s != SubmissionStatusPending
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Username  string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type Contest struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name        string     `json:"name" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:300;not null;uniqueIndex"`
	Description string     `json:"description" gorm:"type:text"`
	CreatorID   uuid.UUID  `json:"creator_id" gorm:"type:uuid;not null;index"`
	StartTime   time.Time  `json:"start_time" gorm:"not null"`
	EndTime     time.Time  `json:"end_time" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	Questions   []Question `json:"questions,omitempty" gorm:"foreignKey:ContestID;constraint:OnDelete:CASCADE"`
}

// HasStarted and HasEnded treat the window as closed on both ends.
func (c *Contest) HasStarted(now time.Time) bool {
	return !now.Before(c.StartTime)
}

func (c *Contest) HasEnded(now time.Time) bool {
	return now.After(c.EndTime)
}

func (c *Contest) IsLive(now time.Time) bool {
	return c.HasStarted(now) && !c.HasEnded(now)
}

type Question struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ContestID   uuid.UUID  `json:"contest_id" gorm:"type:uuid;not null;index"`
	CreatorID   uuid.UUID  `json:"creator_id" gorm:"type:uuid;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	Points      int32      `json:"points" gorm:"not null;default:0"`
	IsPublic    bool       `json:"is_public" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	TestCases   []TestCase `json:"test_cases,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type TestCase struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	QuestionID     uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Input          string    `json:"input" gorm:"type:text;not null"`
	ExpectedOutput string    `json:"expected_output" gorm:"type:text;not null"`
	IsSample       bool      `json:"is_sample" gorm:"not null;default:false"`
	TestOrder      int32     `json:"test_order" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type Submission struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID          uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index:idx_submissions_user_question"`
	QuestionID      uuid.UUID        `json:"question_id" gorm:"type:uuid;not null;index:idx_submissions_user_question"`
	ContestID       *uuid.UUID       `json:"contest_id,omitempty" gorm:"type:uuid;index"`
	Code            string           `json:"code" gorm:"type:text;not null"`
	Language        string           `json:"language" gorm:"size:30;not null"`
	Status          SubmissionStatus `json:"status" gorm:"type:submission_status;not null;default:'Pending'"`
	Output          string           `json:"output" gorm:"type:text"`
	PassedTestCases int32            `json:"passed_test_cases" gorm:"default:0"`
	TotalTestCases  int32            `json:"total_test_cases" gorm:"default:0"`
	CreatedAt       time.Time        `json:"created_at" gorm:"autoCreateTime"`
	JudgedAt        *time.Time       `json:"judged_at"`
}

// UserContest is a user's standing in one contest. It exists from the moment
// the user joins.
type UserContest struct {
	UserID           uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	ContestID        uuid.UUID  `json:"contest_id" gorm:"type:uuid;primaryKey;index"`
	JoinedAt         time.Time  `json:"joined_at" gorm:"autoCreateTime"`
	SolvedQuestions  int32      `json:"solved_questions" gorm:"not null;default:0"`
	TotalSubmissions int32      `json:"total_submissions" gorm:"not null;default:0"`
	TotalPoints      int32      `json:"total_points" gorm:"not null;default:0"`
	LastSubmissionAt *time.Time `json:"last_submission_at"`
	Rank             int32      `json:"rank" gorm:"not null;default:0"`
	User             *User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (UserContest) TableName() string {
	return "user_contests"
}

// SolvedQuestion records the first accepted submission of a user for a
// question. The primary key is what makes first-solve credit happen once.
type SolvedQuestion struct {
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	QuestionID   uuid.UUID `json:"question_id" gorm:"type:uuid;primaryKey"`
	ContestID    uuid.UUID `json:"contest_id" gorm:"type:uuid;not null;index"`
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null"`
	SolvedAt     time.Time `json:"solved_at" gorm:"not null"`
}

type ContestAdmin struct {
	ContestID uuid.UUID `json:"contest_id" gorm:"type:uuid;primaryKey"`
	AdminID   uuid.UUID `json:"admin_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	Admin     *User     `json:"admin,omitempty" gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE"`
}

func (ContestAdmin) TableName() string {
	return "contest_admins"
}
