package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crucible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSubmissionAlreadyJudged is returned when a verdict is written to a
// submission that has already left the Pending state.
var ErrSubmissionAlreadyJudged = errors.New("submission already judged")

type SubmissionRepository struct {
	db *GormDB
}

func NewSubmissionRepository(db *GormDB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &submission, nil
}

// FinalizeSubmission writes the verdict. Only a Pending submission can be
// finalized, so the transition happens exactly once.
func (r *SubmissionRepository) FinalizeSubmission(ctx context.Context, submission *models.Submission) error {
	if !submission.Status.IsTerminal() {
		return fmt.Errorf("cannot finalize submission %s with status %s", submission.ID, submission.Status)
	}

	judgedAt := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", submission.ID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":            submission.Status,
			"output":            submission.Output,
			"passed_test_cases": submission.PassedTestCases,
			"total_test_cases":  submission.TotalTestCases,
			"judged_at":         judgedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("submission %s: %w", submission.ID, ErrSubmissionAlreadyJudged)
	}

	submission.JudgedAt = &judgedAt
	return nil
}

func (r *SubmissionRepository) CountAcceptedSubmissions(
	ctx context.Context,
	userID uuid.UUID,
	questionID uuid.UUID,
) (int64, error) {
	return countAccepted(r.db.WithContext(ctx), userID, questionID)
}

func countAccepted(db *gorm.DB, userID, questionID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&models.Submission{}).
		Where("user_id = ? AND question_id = ? AND status = ?", userID, questionID, models.SubmissionStatusAccepted).
		Count(&count).Error

	return count, err
}

func (r *SubmissionRepository) GetSubmissionsByUser(
	ctx context.Context,
	userID uuid.UUID,
	questionID *uuid.UUID,
	limit, offset int,
) ([]models.Submission, error) {
	var submissions []models.Submission
	query := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)

	if questionID != nil {
		query = query.Where("question_id = ?", *questionID)
	}

	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
