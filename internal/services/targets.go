package services

import (
	"context"
	"fmt"

	"crucible/internal/common"
	"crucible/internal/models"

	"github.com/google/uuid"
)

func loadContest(ctx context.Context, contests ContestStore, id uuid.UUID) (*models.Contest, error) {
	contest, err := contests.GetContest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, fmt.Errorf("contest not found: %w", common.ErrNotFound)
	}
	return contest, nil
}

func loadQuestion(ctx context.Context, questions QuestionStore, id uuid.UUID) (*models.Question, error) {
	question, err := questions.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, fmt.Errorf("question not found: %w", common.ErrNotFound)
	}
	return question, nil
}

// loadQuestionWithContest resolves a question and the contest that owns it,
// the unit the authorization gate works on.
func loadQuestionWithContest(
	ctx context.Context,
	questions QuestionStore,
	contests ContestStore,
	id uuid.UUID,
) (*models.Question, *models.Contest, error) {
	question, err := loadQuestion(ctx, questions, id)
	if err != nil {
		return nil, nil, err
	}
	contest, err := loadContest(ctx, contests, question.ContestID)
	if err != nil {
		return nil, nil, err
	}
	return question, contest, nil
}
