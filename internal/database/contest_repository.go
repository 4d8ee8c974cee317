package database

import (
	"context"
	"errors"
	"time"

	"crucible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContestRepository struct {
	db *GormDB
}

func NewContestRepository(db *GormDB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) CreateContest(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Create(contest).Error
}

func (r *ContestRepository) GetContestBySlug(ctx context.Context, slug string) (*models.Contest, error) {
	var contest models.Contest
	err := r.db.WithContext(ctx).First(&contest, "slug = ?", slug).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &contest, nil
}

func (r *ContestRepository) GetContest(ctx context.Context, id uuid.UUID) (*models.Contest, error) {
	var contest models.Contest
	err := r.db.WithContext(ctx).First(&contest, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &contest, nil
}

// ListLiveContests returns contests whose window contains now, inclusive.
func (r *ContestRepository) ListLiveContests(ctx context.Context, now time.Time) ([]models.Contest, error) {
	var contests []models.Contest
	err := r.db.WithContext(ctx).
		Where("start_time <= ? AND end_time >= ?", now, now).
		Order("end_time ASC").
		Find(&contests).Error

	if err != nil {
		return nil, err
	}

	return contests, nil
}

func (r *ContestRepository) ListUpcomingContests(ctx context.Context, now time.Time) ([]models.Contest, error) {
	var contests []models.Contest
	err := r.db.WithContext(ctx).
		Where("start_time > ?", now).
		Order("start_time ASC").
		Find(&contests).Error

	if err != nil {
		return nil, err
	}

	return contests, nil
}

func (r *ContestRepository) ListPastContests(ctx context.Context, now time.Time) ([]models.Contest, error) {
	var contests []models.Contest
	err := r.db.WithContext(ctx).
		Where("end_time < ?", now).
		Order("end_time DESC").
		Find(&contests).Error

	if err != nil {
		return nil, err
	}

	return contests, nil
}

// ListManagedContests returns contests the user created or administers.
func (r *ContestRepository) ListManagedContests(ctx context.Context, userID uuid.UUID) ([]models.Contest, error) {
	var contests []models.Contest
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", userID).
		Or("id IN (?)", r.db.WithContext(ctx).
			Model(&models.ContestAdmin{}).
			Select("contest_id").
			Where("admin_id = ?", userID)).
		Order("start_time DESC").
		Find(&contests).Error

	if err != nil {
		return nil, err
	}

	return contests, nil
}

func (r *ContestRepository) UpdateContest(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).
		Model(&models.Contest{}).
		Where("id = ?", contest.ID).
		Updates(map[string]interface{}{
			"name":        contest.Name,
			"slug":        contest.Slug,
			"description": contest.Description,
			"start_time":  contest.StartTime,
			"end_time":    contest.EndTime,
			"updated_at":  time.Now(),
		}).Error
}

// DeleteContest removes the contest together with everything hanging off it.
func (r *ContestRepository) DeleteContest(ctx context.Context, id uuid.UUID) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		questionIDs := tx.Model(&models.Question{}).Select("id").Where("contest_id = ?", id)

		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.TestCase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contest_id = ?", id).Delete(&models.SolvedQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contest_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contest_id = ?", id).Delete(&models.UserContest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contest_id = ?", id).Delete(&models.ContestAdmin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contest_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Contest{}, "id = ?", id).Error
	})
}
