package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crucible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStandingNotFound is returned when an accepted submission is recorded for
// a user who never joined the contest.
var ErrStandingNotFound = errors.New("standing not found")

// AcceptedSubmission identifies an accepted contest submission to be credited.
type AcceptedSubmission struct {
	UserID       uuid.UUID
	ContestID    uuid.UUID
	QuestionID   uuid.UUID
	SubmissionID uuid.UUID
	Points       int32
	AcceptedAt   time.Time
}

// StandingUpdate is the outcome of crediting an accepted submission.
type StandingUpdate struct {
	Standing      models.UserContest
	FirstSolve    bool
	AcceptedCount int64
}

type StandingRepository struct {
	db *GormDB
}

func NewStandingRepository(db *GormDB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) CreateStanding(ctx context.Context, standing *models.UserContest) error {
	return r.db.WithContext(ctx).Create(standing).Error
}

func (r *StandingRepository) GetStanding(ctx context.Context, userID, contestID uuid.UUID) (*models.UserContest, error) {
	var standing models.UserContest
	err := r.db.WithContext(ctx).
		First(&standing, "user_id = ? AND contest_id = ?", userID, contestID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &standing, nil
}

// GetLeaderboard orders by points, then by whoever reached them first.
// Users without an accepted submission sort last.
func (r *StandingRepository) GetLeaderboard(ctx context.Context, contestID uuid.UUID) ([]models.UserContest, error) {
	var standings []models.UserContest
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Preload("User").
		Order("total_points DESC").
		Order("last_submission_at ASC NULLS LAST").
		Order("joined_at ASC").
		Find(&standings).Error

	if err != nil {
		return nil, err
	}

	return standings, nil
}

// RecordAcceptedSubmission credits an accepted submission to the user's
// standing in a single transaction. The standing row is locked for the
// duration, and the solved-question insert decides whether this is the
// first solve: a second acceptance for the same question conflicts on the
// primary key and leaves solved_questions and total_points untouched.
func (r *StandingRepository) RecordAcceptedSubmission(ctx context.Context, in AcceptedSubmission) (*StandingUpdate, error) {
	var update StandingUpdate

	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var standing models.UserContest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&standing, "user_id = ? AND contest_id = ?", in.UserID, in.ContestID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStandingNotFound
			}
			return fmt.Errorf("failed to lock standing: %w", err)
		}

		accepted, err := countAccepted(tx, in.UserID, in.QuestionID)
		if err != nil {
			return fmt.Errorf("failed to count accepted submissions: %w", err)
		}
		update.AcceptedCount = accepted

		solved := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SolvedQuestion{
			UserID:       in.UserID,
			QuestionID:   in.QuestionID,
			ContestID:    in.ContestID,
			SubmissionID: in.SubmissionID,
			SolvedAt:     in.AcceptedAt,
		})
		if solved.Error != nil {
			return fmt.Errorf("failed to record solved question: %w", solved.Error)
		}
		update.FirstSolve = solved.RowsAffected == 1

		changes := map[string]interface{}{
			"total_submissions":  gorm.Expr("total_submissions + 1"),
			"last_submission_at": in.AcceptedAt,
		}
		if update.FirstSolve {
			changes["solved_questions"] = gorm.Expr("solved_questions + 1")
			changes["total_points"] = gorm.Expr("total_points + ?", in.Points)
		}

		err = tx.Model(&models.UserContest{}).
			Where("user_id = ? AND contest_id = ?", in.UserID, in.ContestID).
			Updates(changes).Error
		if err != nil {
			return fmt.Errorf("failed to update standing: %w", err)
		}

		return tx.First(&update.Standing, "user_id = ? AND contest_id = ?", in.UserID, in.ContestID).Error
	})
	if err != nil {
		return nil, err
	}

	return &update, nil
}

func (r *StandingRepository) CountStandingsByContest(
	ctx context.Context,
	contestID uuid.UUID,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserContest{}).
		Where("contest_id = ?", contestID).
		Count(&count).Error

	return count, err
}

// GetSolvedQuestionIDs returns the questions the user has solved in the contest.
func (r *StandingRepository) GetSolvedQuestionIDs(
	ctx context.Context,
	userID, contestID uuid.UUID,
) (map[uuid.UUID]bool, error) {
	var solved []models.SolvedQuestion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Find(&solved).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]bool, len(solved))
	for _, s := range solved {
		result[s.QuestionID] = true
	}
	return result, nil
}
