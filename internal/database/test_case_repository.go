package database

import (
	"context"
	"errors"
	"time"

	"crucible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestCaseRepository struct {
	db *GormDB
}

func NewTestCaseRepository(db *GormDB) *TestCaseRepository {
	return &TestCaseRepository{db: db}
}

func (r *TestCaseRepository) CreateTestCase(ctx context.Context, testCase *models.TestCase) error {
	return r.db.WithContext(ctx).Create(testCase).Error
}

func (r *TestCaseRepository) BatchCreateTestCases(
	ctx context.Context,
	testCases []*models.TestCase,
) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		for _, tc := range testCases {
			if err := tx.Create(tc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TestCaseRepository) GetTestCase(ctx context.Context, id uuid.UUID) (*models.TestCase, error) {
	var testCase models.TestCase
	err := r.db.WithContext(ctx).First(&testCase, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &testCase, nil
}

// GetTestCasesByQuestion returns the test cases in evaluation order.
func (r *TestCaseRepository) GetTestCasesByQuestion(
	ctx context.Context,
	questionID uuid.UUID,
) ([]models.TestCase, error) {
	var testCases []models.TestCase
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("test_order ASC, created_at ASC").
		Find(&testCases).Error

	if err != nil {
		return nil, err
	}

	return testCases, nil
}

func (r *TestCaseRepository) GetSampleTestCasesByQuestion(
	ctx context.Context,
	questionID uuid.UUID,
	limit int,
) ([]models.TestCase, error) {
	var testCases []models.TestCase
	query := r.db.WithContext(ctx).
		Where("question_id = ? AND is_sample = ?", questionID, true).
		Order("test_order ASC, created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&testCases).Error; err != nil {
		return nil, err
	}

	return testCases, nil
}

func (r *TestCaseRepository) UpdateTestCase(ctx context.Context, testCase *models.TestCase) error {
	return r.db.WithContext(ctx).
		Model(&models.TestCase{}).
		Where("id = ?", testCase.ID).
		Updates(map[string]interface{}{
			"input":           testCase.Input,
			"expected_output": testCase.ExpectedOutput,
			"is_sample":       testCase.IsSample,
			"test_order":      testCase.TestOrder,
			"updated_at":      time.Now(),
		}).Error
}

func (r *TestCaseRepository) DeleteTestCase(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TestCase{}, "id = ?", id).Error
}

func (r *TestCaseRepository) CountTestCasesByQuestion(
	ctx context.Context,
	questionID uuid.UUID,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TestCase{}).
		Where("question_id = ?", questionID).
		Count(&count).Error

	return count, err
}
