package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crucible/internal/authz"
	"crucible/internal/common"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	PhaseLive     = "live"
	PhaseUpcoming = "upcoming"
	PhasePast     = "past"
)

type ContestService struct {
	contestRepo  ContestStore
	questionRepo QuestionStore
	standingRepo StandingStore
	adminRepo    AdminStore
	gate         *authz.Gate
	logger       *zap.Logger
	now          func() time.Time
}

func NewContestService(
	contestRepo ContestStore,
	questionRepo QuestionStore,
	standingRepo StandingStore,
	adminRepo AdminStore,
	gate *authz.Gate,
	logger *zap.Logger,
) *ContestService {
	return &ContestService{
		contestRepo:  contestRepo,
		questionRepo: questionRepo,
		standingRepo: standingRepo,
		adminRepo:    adminRepo,
		gate:         gate,
		logger:       logger,
		now:          time.Now,
	}
}

func contestSlug(name string, id uuid.UUID) string {
	base := slug.Make(name)
	if base == "" {
		base = "contest"
	}
	return base + "-" + strings.SplitN(id.String(), "-", 2)[0]
}

func (cs *ContestService) CreateContest(ctx context.Context, userID uuid.UUID, req *types.CreateContestRequest) (*models.Contest, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	id := uuid.New()
	contest := &models.Contest{
		ID:          id,
		Name:        req.Name,
		Slug:        contestSlug(req.Name, id),
		Description: req.Description,
		CreatorID:   userID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}

	if err := cs.contestRepo.CreateContest(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}

	cs.logger.Info("contest created",
		zap.String("contest_id", contest.ID.String()),
		zap.String("creator_id", userID.String()),
	)
	return contest, nil
}

func (cs *ContestService) GetContest(ctx context.Context, userID, contestID uuid.UUID) (*types.ContestDetailsResponse, error) {
	contest, err := loadContest(ctx, cs.contestRepo, contestID)
	if err != nil {
		return nil, err
	}
	return cs.details(ctx, userID, contest)
}

func (cs *ContestService) GetContestBySlug(ctx context.Context, userID uuid.UUID, slugValue string) (*types.ContestDetailsResponse, error) {
	contest, err := cs.contestRepo.GetContestBySlug(ctx, slugValue)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, fmt.Errorf("contest not found: %w", common.ErrNotFound)
	}
	return cs.details(ctx, userID, contest)
}

func (cs *ContestService) details(ctx context.Context, userID uuid.UUID, contest *models.Contest) (*types.ContestDetailsResponse, error) {
	role, err := cs.gate.Classify(ctx, contest, userID)
	if err != nil {
		return nil, err
	}

	standing, err := cs.standingRepo.GetStanding(ctx, userID, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get standing: %w", err)
	}

	participants, err := cs.standingRepo.CountStandingsByContest(ctx, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	return &types.ContestDetailsResponse{
		Contest:          *contest,
		IsRegistered:     standing != nil,
		Role:             role.String(),
		ParticipantCount: participants,
	}, nil
}

func (cs *ContestService) ListContests(ctx context.Context, phase string) ([]models.Contest, error) {
	now := cs.now()

	var (
		contests []models.Contest
		err      error
	)
	switch strings.ToLower(phase) {
	case PhaseLive, "":
		contests, err = cs.contestRepo.ListLiveContests(ctx, now)
	case PhaseUpcoming:
		contests, err = cs.contestRepo.ListUpcomingContests(ctx, now)
	case PhasePast:
		contests, err = cs.contestRepo.ListPastContests(ctx, now)
	default:
		return nil, fmt.Errorf("unknown contest phase %q: %w", phase, common.ErrBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}

	return contests, nil
}

func (cs *ContestService) ListManagedContests(ctx context.Context, userID uuid.UUID) ([]models.Contest, error) {
	contests, err := cs.contestRepo.ListManagedContests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list managed contests: %w", err)
	}
	return contests, nil
}

func (cs *ContestService) UpdateContest(ctx context.Context, userID, contestID uuid.UUID, req *types.UpdateContestRequest) (*models.Contest, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}

	contest, err := loadContest(ctx, cs.contestRepo, contestID)
	if err != nil {
		return nil, err
	}
	if _, err := cs.gate.Require(ctx, contest, userID, authz.CapabilityCreator, "update this contest"); err != nil {
		return nil, err
	}

	if contest.Name != req.Name {
		contest.Slug = contestSlug(req.Name, contest.ID)
	}
	contest.Name = req.Name
	contest.Description = req.Description
	contest.StartTime = req.StartTime
	contest.EndTime = req.EndTime

	if err := cs.contestRepo.UpdateContest(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}

	return contest, nil
}

func (cs *ContestService) DeleteContest(ctx context.Context, userID, contestID uuid.UUID) error {
	contest, err := loadContest(ctx, cs.contestRepo, contestID)
	if err != nil {
		return err
	}
	if _, err := cs.gate.Require(ctx, contest, userID, authz.CapabilityCreator, "delete this contest"); err != nil {
		return err
	}

	if err := cs.contestRepo.DeleteContest(ctx, contestID); err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}

	cs.logger.Info("contest deleted",
		zap.String("contest_id", contestID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

func (cs *ContestService) GetContestForManagement(ctx context.Context, userID, contestID uuid.UUID) (*types.ManageContestResponse, error) {
	contest, err := loadContest(ctx, cs.contestRepo, contestID)
	if err != nil {
		return nil, err
	}
	role, err := cs.gate.Require(ctx, contest, userID, authz.CapabilityManage, "manage this contest")
	if err != nil {
		return nil, err
	}

	questions, err := cs.questionRepo.GetQuestionsByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	admins, err := cs.adminRepo.GetAdminsByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admins: %w", err)
	}

	if questions == nil {
		questions = []models.Question{}
	}
	return &types.ManageContestResponse{
		Contest:   *contest,
		Role:      role.String(),
		Questions: questions,
		Admins:    ConvertAdminsToSummaries(admins),
	}, nil
}

// Participate registers the user for the contest, creating an empty standing.
func (cs *ContestService) Participate(ctx context.Context, userID, contestID uuid.UUID) (*models.UserContest, error) {
	contest, err := loadContest(ctx, cs.contestRepo, contestID)
	if err != nil {
		return nil, err
	}
	if contest.HasEnded(cs.now()) {
		return nil, fmt.Errorf("contest has ended: %w", common.ErrForbidden)
	}

	existing, err := cs.standingRepo.GetStanding(ctx, userID, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get standing: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("already registered for this contest: %w", common.ErrConflict)
	}

	standing := &models.UserContest{UserID: userID, ContestID: contestID}
	if err := cs.standingRepo.CreateStanding(ctx, standing); err != nil {
		if common.IsUniqueViolation(err) {
			return nil, fmt.Errorf("already registered for this contest: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("failed to register for contest: %w", err)
	}

	return standing, nil
}

// GetContestQuestions lists the contest's questions with the caller's solved
// flags. Before the start only the creator and admins may look.
func (cs *ContestService) GetContestQuestions(ctx context.Context, userID, contestID uuid.UUID) (*types.ContestQuestionsResponse, error) {
	contest, err := loadContest(ctx, cs.contestRepo, contestID)
	if err != nil {
		return nil, err
	}

	if !contest.HasStarted(cs.now()) {
		role, err := cs.gate.Classify(ctx, contest, userID)
		if err != nil {
			return nil, err
		}
		if role == authz.RoleNone {
			return nil, fmt.Errorf("contest has not started yet: %w", common.ErrForbidden)
		}
	}

	questions, err := cs.questionRepo.GetQuestionsByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	solved, err := cs.standingRepo.GetSolvedQuestionIDs(ctx, userID, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get solved questions: %w", err)
	}

	return &types.ContestQuestionsResponse{
		Contest:   *contest,
		Questions: ConvertQuestionsToSummaries(questions, solved),
	}, nil
}

func (cs *ContestService) GetLeaderboard(ctx context.Context, contestID uuid.UUID) (*types.LeaderboardResponse, error) {
	if _, err := loadContest(ctx, cs.contestRepo, contestID); err != nil {
		return nil, err
	}

	standings, err := cs.standingRepo.GetLeaderboard(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return &types.LeaderboardResponse{
		ContestID: contestID,
		Entries:   ConvertStandingsToLeaderboard(standings),
		UpdatedAt: cs.now(),
	}, nil
}
