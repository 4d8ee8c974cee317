package database

import (
	"context"
	"errors"
	"time"

	"crucible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	db *GormDB
}

func NewQuestionRepository(db *GormDB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &question, nil
}

func (r *QuestionRepository) GetQuestionsByContest(ctx context.Context, contestID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at ASC").
		Find(&questions).Error

	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *QuestionRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"title":       question.Title,
			"description": question.Description,
			"points":      question.Points,
			"is_public":   question.IsPublic,
			"updated_at":  time.Now(),
		}).Error
}

func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.TestCase{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, "id = ?", id).Error
	})
}
