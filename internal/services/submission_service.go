package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crucible/internal/common"
	"crucible/internal/database"
	"crucible/internal/judge"
	"crucible/internal/logger"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SubmissionService struct {
	questionRepo   QuestionStore
	contestRepo    ContestStore
	testCaseRepo   TestCaseStore
	submissionRepo SubmissionStore
	standingRepo   StandingStore
	standings      *StandingsService
	runner         CodeRunner
	events         EventPublisher
	logger         *zap.Logger
	now            func() time.Time

	// Verdict writes share the standings retry budget.
	retries int
	backoff time.Duration
}

func NewSubmissionService(
	questionRepo QuestionStore,
	contestRepo ContestStore,
	testCaseRepo TestCaseStore,
	submissionRepo SubmissionStore,
	standingRepo StandingStore,
	standings *StandingsService,
	runner CodeRunner,
	events EventPublisher,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		questionRepo:   questionRepo,
		contestRepo:    contestRepo,
		testCaseRepo:   testCaseRepo,
		submissionRepo: submissionRepo,
		standingRepo:   standingRepo,
		standings:      standings,
		runner:         runner,
		events:         events,
		logger:         logger,
		now:            time.Now,
		retries:        standings.retries,
		backoff:        standings.backoff,
	}
}

// Submit judges or runs code against a public question.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, req *types.SubmitCodeRequest) (*types.SubmissionResponse, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, fmt.Errorf("question not found: %w", common.ErrNotFound)
	}
	if !question.IsPublic {
		return nil, fmt.Errorf("question is not public: %w", common.ErrForbidden)
	}

	return s.process(ctx, userID, question, nil, req.Code, req.Language, req.IsRun)
}

// SubmitContest judges or runs code against a question of a live contest the
// caller has joined. Runs are gated the same way: registration and the contest
// window are checked before any sample test executes.
func (s *SubmissionService) SubmitContest(ctx context.Context, userID uuid.UUID, req *types.ContestSubmitCodeRequest) (*types.SubmissionResponse, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	var (
		question *models.Question
		contest  *models.Contest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.questionRepo.GetQuestion(gctx, req.QuestionID)
		if err != nil {
			return fmt.Errorf("failed to get question: %w", err)
		}
		if q == nil {
			return fmt.Errorf("question not found: %w", common.ErrNotFound)
		}
		question = q
		return nil
	})
	g.Go(func() error {
		c, err := s.contestRepo.GetContest(gctx, req.ContestID)
		if err != nil {
			return fmt.Errorf("failed to get contest: %w", err)
		}
		if c == nil {
			return fmt.Errorf("contest not found: %w", common.ErrNotFound)
		}
		contest = c
		return nil
	})
	g.Go(func() error {
		standing, err := s.standingRepo.GetStanding(gctx, userID, req.ContestID)
		if err != nil {
			return fmt.Errorf("failed to get standing: %w", err)
		}
		if standing == nil {
			return fmt.Errorf("user is not registered for this contest: %w", common.ErrForbidden)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if question.ContestID != contest.ID {
		return nil, fmt.Errorf("question does not belong to this contest: %w", common.ErrForbidden)
	}

	now := s.now()
	if !contest.HasStarted(now) {
		return nil, fmt.Errorf("contest has not started yet: %w", common.ErrForbidden)
	}
	if contest.HasEnded(now) {
		return nil, fmt.Errorf("contest has ended: %w", common.ErrForbidden)
	}

	return s.process(ctx, userID, question, &contest.ID, req.Code, req.Language, req.IsRun)
}

// ListSubmissions returns the caller's own submissions, newest first.
func (s *SubmissionService) ListSubmissions(ctx context.Context, userID uuid.UUID, questionID *uuid.UUID, limit, offset int) ([]models.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	submissions, err := s.submissionRepo.GetSubmissionsByUser(ctx, userID, questionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// GetSubmission returns one of the caller's submissions. Other users'
// submissions are reported as missing.
func (s *SubmissionService) GetSubmission(ctx context.Context, userID, submissionID uuid.UUID) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil || submission.UserID != userID {
		return nil, fmt.Errorf("submission not found: %w", common.ErrNotFound)
	}
	return submission, nil
}

func (s *SubmissionService) process(
	ctx context.Context,
	userID uuid.UUID,
	question *models.Question,
	contestID *uuid.UUID,
	code, language string,
	isRun bool,
) (*types.SubmissionResponse, error) {
	if isRun {
		return s.run(ctx, question, code, language)
	}
	return s.judge(ctx, userID, question, contestID, code, language)
}

// run evaluates the sample test cases only. Nothing is persisted.
func (s *SubmissionService) run(ctx context.Context, question *models.Question, code, language string) (*types.SubmissionResponse, error) {
	samples, err := s.testCaseRepo.GetSampleTestCasesByQuestion(ctx, question.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get sample test cases: %w", err)
	}

	eval, err := s.evaluate(ctx, models.ModeRun, samples, code, language)
	if err != nil {
		return nil, err
	}

	return newResponse(nil, eval, true), nil
}

// judge evaluates every test case and records the verdict. Once the Pending
// submission is stored, judging runs to completion even if the caller goes
// away.
func (s *SubmissionService) judge(
	ctx context.Context,
	userID uuid.UUID,
	question *models.Question,
	contestID *uuid.UUID,
	code, language string,
) (*types.SubmissionResponse, error) {
	log := logger.WithContext(ctx, s.logger)

	testCases, err := s.testCaseRepo.GetTestCasesByQuestion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	submission := &models.Submission{
		ID:         uuid.New(),
		UserID:     userID,
		QuestionID: question.ID,
		ContestID:  contestID,
		Code:       code,
		Language:   language,
		Status:     models.SubmissionStatusPending,
	}
	if err := s.submissionRepo.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	judgeCtx := context.WithoutCancel(ctx)

	eval, err := s.evaluate(judgeCtx, models.ModeSubmit, testCases, code, language)
	if err != nil {
		return nil, err
	}

	submission.Status = eval.Status()
	submission.Output = eval.Transcript()
	submission.PassedTestCases = int32(eval.Passed())
	submission.TotalTestCases = int32(eval.Total())
	if err := s.saveVerdict(judgeCtx, submission); err != nil {
		log.Error("verdict not saved, submission left pending",
			zap.String("submission_id", submission.ID.String()),
			zap.String("status", string(submission.Status)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save verdict: %w", err)
	}

	log.Info("submission judged",
		zap.String("submission_id", submission.ID.String()),
		zap.String("question_id", question.ID.String()),
		zap.String("status", string(submission.Status)),
		zap.Int("passed", eval.Passed()),
		zap.Int("total", eval.Total()),
	)

	resp := newResponse(&submission.ID, eval, false)

	if contestID != nil && submission.Status == models.SubmissionStatusAccepted {
		_, err := s.standings.RecordAccepted(judgeCtx, submission, question)
		updated := err == nil
		resp.StandingsUpdated = &updated
	}

	verdict := types.VerdictEvent{
		SubmissionID: submission.ID,
		UserID:       userID,
		QuestionID:   question.ID,
		Status:       submission.Status,
		Passed:       eval.Passed(),
		Total:        eval.Total(),
	}
	if err := s.events.PublishVerdictUpdate(judgeCtx, contestID, verdict); err != nil {
		log.Warn("failed to publish verdict", zap.String("submission_id", submission.ID.String()), zap.Error(err))
	}

	return resp, nil
}

// saveVerdict finalizes the submission with bounded retries. A submission
// that is already judged counts as saved, since an earlier attempt may have
// committed before its error came back.
func (s *SubmissionService) saveVerdict(ctx context.Context, submission *models.Submission) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = s.submissionRepo.FinalizeSubmission(ctx, submission)
		if err == nil || errors.Is(err, database.ErrSubmissionAlreadyJudged) {
			return nil
		}
		if attempt >= s.retries {
			return err
		}

		logger.WithContext(ctx, s.logger).Warn("saving verdict failed, retrying",
			zap.String("submission_id", submission.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if werr := wait(ctx, s.backoff*time.Duration(attempt)); werr != nil {
			return werr
		}
	}
}

// evaluate runs the test cases one at a time, in order. A failed sandbox
// call fails that test case only.
func (s *SubmissionService) evaluate(
	ctx context.Context,
	mode models.EvaluationMode,
	testCases []models.TestCase,
	code, language string,
) (*judge.Evaluation, error) {
	eval := judge.NewEvaluation(mode)

	for _, tc := range testCases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := s.runner.Run(ctx, language, code, tc.Input)
		if err != nil {
			logger.WithContext(ctx, s.logger).Warn("test case execution failed",
				zap.String("test_case_id", tc.ID.String()),
				zap.String("language", language),
				zap.Error(err),
			)
		}
		eval.Record(tc, resp, err)
	}

	return eval, nil
}

func newResponse(submissionID *uuid.UUID, eval *judge.Evaluation, isRun bool) *types.SubmissionResponse {
	results := eval.Results()
	if results == nil {
		results = []models.TestCaseResult{}
	}
	return &types.SubmissionResponse{
		SubmissionID:    submissionID,
		Status:          eval.Status(),
		Output:          eval.Transcript(),
		PassedTestCases: eval.Passed(),
		TotalTestCases:  eval.Total(),
		IsRun:           isRun,
		TestCaseResults: results,
	}
}
