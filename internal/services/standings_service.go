package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crucible/internal/database"
	"crucible/internal/logger"
	"crucible/internal/models"
	"crucible/pkg/types"

	"go.uber.org/zap"
)

const defaultStandingsBackoff = 100 * time.Millisecond

// StandingsService credits accepted contest submissions to the submitter's
// standing.
type StandingsService struct {
	standingRepo StandingStore
	events       EventPublisher
	retries      int
	backoff      time.Duration
	logger       *zap.Logger
}

func NewStandingsService(standingRepo StandingStore, events EventPublisher, retries int, logger *zap.Logger) *StandingsService {
	if retries < 1 {
		retries = 1
	}
	return &StandingsService{
		standingRepo: standingRepo,
		events:       events,
		retries:      retries,
		backoff:      defaultStandingsBackoff,
		logger:       logger,
	}
}

// RecordAccepted updates the standing for an accepted contest submission.
// Points and solved count move only on the first acceptance of the question;
// the submission counter and last submission time move every time. The
// repository operation is atomic, so a failed attempt can be retried.
func (s *StandingsService) RecordAccepted(ctx context.Context, submission *models.Submission, question *models.Question) (*database.StandingUpdate, error) {
	if submission.ContestID == nil {
		return nil, fmt.Errorf("submission %s is not a contest submission", submission.ID)
	}
	if submission.Status != models.SubmissionStatusAccepted {
		return nil, fmt.Errorf("submission %s is %s, not accepted", submission.ID, submission.Status)
	}

	log := logger.WithContext(ctx, s.logger).With(
		zap.String("submission_id", submission.ID.String()),
		zap.String("contest_id", submission.ContestID.String()),
		zap.String("user_id", submission.UserID.String()),
	)

	acceptedAt := time.Now()
	if submission.JudgedAt != nil {
		acceptedAt = *submission.JudgedAt
	}
	in := database.AcceptedSubmission{
		UserID:       submission.UserID,
		ContestID:    *submission.ContestID,
		QuestionID:   question.ID,
		SubmissionID: submission.ID,
		Points:       question.Points,
		AcceptedAt:   acceptedAt,
	}

	var (
		update *database.StandingUpdate
		err    error
	)
	for attempt := 1; ; attempt++ {
		update, err = s.standingRepo.RecordAcceptedSubmission(ctx, in)
		if err == nil || errors.Is(err, database.ErrStandingNotFound) || attempt >= s.retries {
			break
		}

		log.Warn("standings update failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		if werr := wait(ctx, s.backoff*time.Duration(attempt)); werr != nil {
			err = werr
			break
		}
	}
	if err != nil {
		log.Error("standings not updated for accepted submission", zap.Error(err))
		return nil, fmt.Errorf("failed to update standings: %w", err)
	}

	log.Info("standings updated",
		zap.Bool("first_solve", update.FirstSolve),
		zap.Int64("accepted_count", update.AcceptedCount),
		zap.Int32("solved_questions", update.Standing.SolvedQuestions),
		zap.Int32("total_points", update.Standing.TotalPoints),
	)

	entry := types.LeaderboardEntry{
		UserID:           update.Standing.UserID,
		TotalPoints:      update.Standing.TotalPoints,
		SolvedQuestions:  update.Standing.SolvedQuestions,
		TotalSubmissions: update.Standing.TotalSubmissions,
		LastSubmissionAt: update.Standing.LastSubmissionAt,
	}
	if err := s.events.PublishLeaderboardUpdate(ctx, in.ContestID, entry); err != nil {
		log.Warn("failed to publish leaderboard update", zap.Error(err))
	}

	return update, nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
