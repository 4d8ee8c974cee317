package services

import (
	"context"
	"fmt"

	"crucible/internal/authz"
	"crucible/internal/common"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AdminService struct {
	contestRepo ContestStore
	userRepo    UserStore
	adminRepo   AdminStore
	gate        *authz.Gate
	logger      *zap.Logger
}

func NewAdminService(
	contestRepo ContestStore,
	userRepo UserStore,
	adminRepo AdminStore,
	gate *authz.Gate,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		contestRepo: contestRepo,
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		gate:        gate,
		logger:      logger,
	}
}

// resolve loads the contest and the target user together and checks that
// the caller is the contest creator.
func (as *AdminService) resolve(ctx context.Context, userID uuid.UUID, req *types.AlterAdminRequest, action string) (*models.Contest, *models.User, error) {
	if err := types.Validate(req); err != nil {
		return nil, nil, err
	}

	var (
		contest *models.Contest
		target  *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := loadContest(gctx, as.contestRepo, req.ContestID)
		contest = c
		return err
	})
	g.Go(func() error {
		u, err := as.userRepo.GetUserByEmail(gctx, req.Email)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("user not found with email %s: %w", req.Email, common.ErrNotFound)
		}
		target = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if _, err := as.gate.Require(ctx, contest, userID, authz.CapabilityCreator, action); err != nil {
		return nil, nil, err
	}

	return contest, target, nil
}

func (as *AdminService) AddAdmin(ctx context.Context, userID uuid.UUID, req *types.AlterAdminRequest) error {
	contest, target, err := as.resolve(ctx, userID, req, "add admins to this contest")
	if err != nil {
		return err
	}
	if target.ID == contest.CreatorID {
		return fmt.Errorf("the contest creator cannot be added as an admin: %w", common.ErrBadRequest)
	}

	if err := as.adminRepo.AddAdmin(ctx, contest.ID, target.ID); err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user is already an admin of this contest: %w", common.ErrConflict)
		}
		return fmt.Errorf("failed to add admin: %w", err)
	}

	as.logger.Info("contest admin added",
		zap.String("contest_id", contest.ID.String()),
		zap.String("admin_id", target.ID.String()),
	)
	return nil
}

func (as *AdminService) RemoveAdmin(ctx context.Context, userID uuid.UUID, req *types.AlterAdminRequest) error {
	contest, target, err := as.resolve(ctx, userID, req, "remove admins from this contest")
	if err != nil {
		return err
	}

	removed, err := as.adminRepo.RemoveAdmin(ctx, contest.ID, target.ID)
	if err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	if !removed {
		return fmt.Errorf("user is not an admin of this contest: %w", common.ErrNotFound)
	}

	as.logger.Info("contest admin removed",
		zap.String("contest_id", contest.ID.String()),
		zap.String("admin_id", target.ID.String()),
	)
	return nil
}
