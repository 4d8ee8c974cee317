package authz

import (
	"context"
	"errors"
	"testing"

	"crucible/internal/common"
	"crucible/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmins struct {
	members map[uuid.UUID]bool
	err     error
	calls   int
}

func (f *fakeAdmins) IsContestAdmin(_ context.Context, _, userID uuid.UUID) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.members[userID], nil
}

func TestClassify(t *testing.T) {
	creator := uuid.New()
	admin := uuid.New()
	stranger := uuid.New()
	contest := &models.Contest{ID: uuid.New(), CreatorID: creator}

	admins := &fakeAdmins{members: map[uuid.UUID]bool{admin: true}}
	gate := NewGate(admins)
	ctx := context.Background()

	role, err := gate.Classify(ctx, contest, creator)
	require.NoError(t, err)
	assert.Equal(t, RoleCreator, role)
	assert.Equal(t, 0, admins.calls, "creator check must not hit the admin lookup")

	role, err = gate.Classify(ctx, contest, admin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = gate.Classify(ctx, contest, stranger)
	require.NoError(t, err)
	assert.Equal(t, RoleNone, role)
}

func TestClassifyPropagatesLookupFailure(t *testing.T) {
	gate := NewGate(&fakeAdmins{err: errors.New("connection reset")})
	contest := &models.Contest{ID: uuid.New(), CreatorID: uuid.New()}

	role, err := gate.Classify(context.Background(), contest, uuid.New())
	require.Error(t, err)
	assert.Equal(t, RoleNone, role)
	assert.NotErrorIs(t, err, common.ErrForbidden)
}

func TestRequire(t *testing.T) {
	creator := uuid.New()
	admin := uuid.New()
	stranger := uuid.New()
	contest := &models.Contest{ID: uuid.New(), CreatorID: creator}
	gate := NewGate(&fakeAdmins{members: map[uuid.UUID]bool{admin: true}})

	tests := []struct {
		name       string
		user       uuid.UUID
		capability Capability
		allowed    bool
	}{
		{"creator may delete", creator, CapabilityCreator, true},
		{"admin may not delete", admin, CapabilityCreator, false},
		{"stranger may not delete", stranger, CapabilityCreator, false},
		{"creator may manage", creator, CapabilityManage, true},
		{"admin may manage", admin, CapabilityManage, true},
		{"stranger may not manage", stranger, CapabilityManage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Require(context.Background(), contest, tt.user, tt.capability, "do this")
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, common.ErrForbidden)
			assert.Contains(t, err.Error(), "do this")
		})
	}
}
