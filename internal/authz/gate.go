// Package authz decides what a user may do to a contest and everything that
// belongs to it.
package authz

import (
	"context"
	"fmt"

	"crucible/internal/common"
	"crucible/internal/models"

	"github.com/google/uuid"
)

// Role is the relationship between a user and a contest.
type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleCreator
)

func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Capability names a class of operations guarded by the gate.
type Capability int

const (
	// CapabilityCreator covers deleting the contest, changing its name or
	// time window, and managing its admin list.
	CapabilityCreator Capability = iota
	// CapabilityManage covers questions, test cases and the management view.
	CapabilityManage
)

func (c Capability) allows(r Role) bool {
	switch c {
	case CapabilityCreator:
		return r == RoleCreator
	case CapabilityManage:
		return r == RoleCreator || r == RoleAdmin
	}
	return false
}

type AdminLookup interface {
	IsContestAdmin(ctx context.Context, contestID, userID uuid.UUID) (bool, error)
}

type Gate struct {
	admins AdminLookup
}

func NewGate(admins AdminLookup) *Gate {
	return &Gate{admins: admins}
}

// Classify checks the creator first so the admin lookup is only paid for
// non-creators.
func (g *Gate) Classify(ctx context.Context, contest *models.Contest, userID uuid.UUID) (Role, error) {
	if contest.CreatorID == userID {
		return RoleCreator, nil
	}

	isAdmin, err := g.admins.IsContestAdmin(ctx, contest.ID, userID)
	if err != nil {
		return RoleNone, fmt.Errorf("failed to check admin membership: %w", err)
	}
	if isAdmin {
		return RoleAdmin, nil
	}

	return RoleNone, nil
}

// Require returns the caller's role, or ErrForbidden when the role does not
// grant the capability. action is used in the error message.
func (g *Gate) Require(
	ctx context.Context,
	contest *models.Contest,
	userID uuid.UUID,
	capability Capability,
	action string,
) (Role, error) {
	role, err := g.Classify(ctx, contest, userID)
	if err != nil {
		return RoleNone, err
	}

	if !capability.allows(role) {
		return role, fmt.Errorf("user is not authorized to %s: %w", action, common.ErrForbidden)
	}

	return role, nil
}
