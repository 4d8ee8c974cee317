package services

import (
	"context"
	"fmt"
	"time"

	"crucible/internal/authz"
	"crucible/internal/common"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/google/uuid"
)

const maxSampleTestCases = 3

type QuestionService struct {
	questionRepo QuestionStore
	contestRepo  ContestStore
	testCaseRepo TestCaseStore
	gate         *authz.Gate
	now          func() time.Time
}

func NewQuestionService(
	questionRepo QuestionStore,
	contestRepo ContestStore,
	testCaseRepo TestCaseStore,
	gate *authz.Gate,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		contestRepo:  contestRepo,
		testCaseRepo: testCaseRepo,
		gate:         gate,
		now:          time.Now,
	}
}

func (qs *QuestionService) CreateQuestion(ctx context.Context, userID uuid.UUID, req *types.CreateQuestionRequest) (*models.Question, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	contest, err := loadContest(ctx, qs.contestRepo, req.ContestID)
	if err != nil {
		return nil, err
	}
	if _, err := qs.gate.Require(ctx, contest, userID, authz.CapabilityManage, "add questions to this contest"); err != nil {
		return nil, err
	}

	question := &models.Question{
		ID:          uuid.New(),
		ContestID:   contest.ID,
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
	}
	if err := qs.questionRepo.CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return question, nil
}

// GetQuestion returns the question with up to three sample test cases. A
// question is visible if it is public, if its contest has started, or to
// the contest's creator and admins.
func (qs *QuestionService) GetQuestion(ctx context.Context, userID, questionID uuid.UUID) (*types.QuestionWithSamplesResponse, error) {
	question, err := loadQuestion(ctx, qs.questionRepo, questionID)
	if err != nil {
		return nil, err
	}

	if !question.IsPublic {
		contest, err := loadContest(ctx, qs.contestRepo, question.ContestID)
		if err != nil {
			return nil, err
		}
		if !contest.HasStarted(qs.now()) {
			role, err := qs.gate.Classify(ctx, contest, userID)
			if err != nil {
				return nil, err
			}
			if role == authz.RoleNone {
				return nil, fmt.Errorf("user is not authorized to view this question: %w", common.ErrForbidden)
			}
		}
	}

	samples, err := qs.testCaseRepo.GetSampleTestCasesByQuestion(ctx, questionID, maxSampleTestCases)
	if err != nil {
		return nil, fmt.Errorf("failed to get sample test cases: %w", err)
	}

	return &types.QuestionWithSamplesResponse{
		Question:        *question,
		SampleTestCases: ConvertSampleTestCases(samples),
	}, nil
}

func (qs *QuestionService) UpdateQuestion(ctx context.Context, userID, questionID uuid.UUID, req *types.UpdateQuestionRequest) (*models.Question, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	question, contest, err := loadQuestionWithContest(ctx, qs.questionRepo, qs.contestRepo, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := qs.gate.Require(ctx, contest, userID, authz.CapabilityManage, "update this question"); err != nil {
		return nil, err
	}

	question.Title = req.Title
	question.Description = req.Description
	question.Points = req.Points
	if req.IsPublic != nil {
		question.IsPublic = *req.IsPublic
	}

	if err := qs.questionRepo.UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return question, nil
}

func (qs *QuestionService) DeleteQuestion(ctx context.Context, userID, questionID uuid.UUID) error {
	_, contest, err := loadQuestionWithContest(ctx, qs.questionRepo, qs.contestRepo, questionID)
	if err != nil {
		return err
	}
	if _, err := qs.gate.Require(ctx, contest, userID, authz.CapabilityManage, "delete this question"); err != nil {
		return err
	}

	if err := qs.questionRepo.DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}
