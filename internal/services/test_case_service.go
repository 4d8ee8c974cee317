package services

import (
	"context"
	"fmt"

	"crucible/internal/authz"
	"crucible/internal/common"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/google/uuid"
)

type TestCaseService struct {
	testCaseRepo TestCaseStore
	questionRepo QuestionStore
	contestRepo  ContestStore
	gate         *authz.Gate
}

func NewTestCaseService(
	testCaseRepo TestCaseStore,
	questionRepo QuestionStore,
	contestRepo ContestStore,
	gate *authz.Gate,
) *TestCaseService {
	return &TestCaseService{
		testCaseRepo: testCaseRepo,
		questionRepo: questionRepo,
		contestRepo:  contestRepo,
		gate:         gate,
	}
}

func (ts *TestCaseService) authorize(ctx context.Context, userID, questionID uuid.UUID, action string) error {
	_, contest, err := loadQuestionWithContest(ctx, ts.questionRepo, ts.contestRepo, questionID)
	if err != nil {
		return err
	}
	_, err = ts.gate.Require(ctx, contest, userID, authz.CapabilityManage, action)
	return err
}

func (ts *TestCaseService) loadTestCase(ctx context.Context, id uuid.UUID) (*models.TestCase, error) {
	testCase, err := ts.testCaseRepo.GetTestCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	if testCase == nil {
		return nil, fmt.Errorf("test case not found: %w", common.ErrNotFound)
	}
	return testCase, nil
}

func (ts *TestCaseService) CreateTestCase(ctx context.Context, userID uuid.UUID, req *types.CreateTestCaseRequest) (*models.TestCase, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}
	if err := ts.authorize(ctx, userID, req.QuestionID, "add test cases to this question"); err != nil {
		return nil, err
	}

	testCase := &models.TestCase{
		ID:             uuid.New(),
		QuestionID:     req.QuestionID,
		Input:          req.Input,
		ExpectedOutput: req.ExpectedOutput,
		IsSample:       req.IsSample,
		TestOrder:      req.TestOrder,
	}
	if err := ts.testCaseRepo.CreateTestCase(ctx, testCase); err != nil {
		return nil, fmt.Errorf("failed to create test case: %w", err)
	}

	return testCase, nil
}

// ListTestCases returns every test case, hidden ones included.
func (ts *TestCaseService) ListTestCases(ctx context.Context, userID, questionID uuid.UUID) ([]models.TestCase, error) {
	if err := ts.authorize(ctx, userID, questionID, "view test cases for this question"); err != nil {
		return nil, err
	}

	testCases, err := ts.testCaseRepo.GetTestCasesByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}
	if testCases == nil {
		testCases = []models.TestCase{}
	}
	return testCases, nil
}

func (ts *TestCaseService) UpdateTestCase(ctx context.Context, userID, testCaseID uuid.UUID, req *types.UpdateTestCaseRequest) (*models.TestCase, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	testCase, err := ts.loadTestCase(ctx, testCaseID)
	if err != nil {
		return nil, err
	}
	if err := ts.authorize(ctx, userID, testCase.QuestionID, "update this test case"); err != nil {
		return nil, err
	}

	testCase.Input = req.Input
	testCase.ExpectedOutput = req.ExpectedOutput
	testCase.IsSample = req.IsSample
	testCase.TestOrder = req.TestOrder

	if err := ts.testCaseRepo.UpdateTestCase(ctx, testCase); err != nil {
		return nil, fmt.Errorf("failed to update test case: %w", err)
	}
	return testCase, nil
}

func (ts *TestCaseService) DeleteTestCase(ctx context.Context, userID, testCaseID uuid.UUID) error {
	testCase, err := ts.loadTestCase(ctx, testCaseID)
	if err != nil {
		return err
	}
	if err := ts.authorize(ctx, userID, testCase.QuestionID, "delete this test case"); err != nil {
		return err
	}

	if err := ts.testCaseRepo.DeleteTestCase(ctx, testCaseID); err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}
	return nil
}
