package authz

import (
	"testing"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) authz.Authorizer {
	t.Helper()
	a, err := NewAuthorizer(user.RolePermissions)
	require.NoError(t, err)
	return a
}

func ptr(s string) *string { return &s }

func TestRoleMatrix(t *testing.T) {
	a := newEngine(t)

	tests := []struct {
		role user.Role
		perm user.Permission
		want bool
	}{
		{user.RoleAdmin, user.PermissionWorksheetVerify, true},
		{user.RoleAdmin, user.PermissionWorksheetApprove, true},
		{user.RoleTeamLead, user.PermissionWorksheetVerify, true},
		{user.RoleTeamLead, user.PermissionWorksheetApprove, false},
		{user.RoleManager, user.PermissionWorksheetApprove, true},
		{user.RoleManager, user.PermissionWorksheetVerify, false},
		{user.RoleAssociate, user.PermissionWorksheetReject, false},
		{user.RoleTeamLead, user.PermissionWorksheetReject, true},
		{user.RoleManager, user.PermissionAttendanceForceClose, false},
		{user.RoleAdmin, user.PermissionAttendanceForceClose, true},
		{user.RoleManager, user.PermissionUserDelete, false},
		{user.Role("owner"), user.PermissionUserList, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Can(tt.role, tt.perm), "%s %s", tt.role, tt.perm)
	}
}

func TestRequireWrapsForbidden(t *testing.T) {
	a := newEngine(t)
	err := a.Require(user.Actor{ID: "x", Role: user.RoleAssociate}, user.PermissionTaskCreate)
	assert.ErrorIs(t, err, authz.ErrForbidden)
	assert.NoError(t, a.Require(user.Actor{ID: "x", Role: user.RoleTeamLead}, user.PermissionTaskCreate))
}

func TestScopeAndAccess(t *testing.T) {
	a := newEngine(t)
	associate := user.Owner{ID: "a1", ManagerID: ptr("m1"), TeamLeadID: ptr("t1")}

	assert.NoError(t, a.RequireAccess(user.Actor{ID: "adm", Role: user.RoleAdmin}, associate))
	assert.NoError(t, a.RequireAccess(user.Actor{ID: "m1", Role: user.RoleManager}, associate))
	assert.NoError(t, a.RequireAccess(user.Actor{ID: "t1", Role: user.RoleTeamLead}, associate))
	assert.NoError(t, a.RequireAccess(user.Actor{ID: "a1", Role: user.RoleAssociate}, associate))

	assert.ErrorIs(t, a.RequireAccess(user.Actor{ID: "m2", Role: user.RoleManager}, associate), authz.ErrForbidden)
	assert.ErrorIs(t, a.RequireAccess(user.Actor{ID: "t2", Role: user.RoleTeamLead}, associate), authz.ErrForbidden)
	assert.ErrorIs(t, a.RequireAccess(user.Actor{ID: "a2", Role: user.RoleAssociate}, associate), authz.ErrForbidden)

	// A manager is not granted access through the team-lead edge.
	assert.ErrorIs(t, a.RequireAccess(user.Actor{ID: "t1", Role: user.RoleManager}, associate), authz.ErrForbidden)
}

func TestCanCreate(t *testing.T) {
	a := newEngine(t)

	tests := []struct {
		creator user.Role
		target  user.Role
		allowed bool
	}{
		{user.RoleAdmin, user.RoleAdmin, false},
		{user.RoleAdmin, user.RoleManager, true},
		{user.RoleAdmin, user.RoleAssociate, true},
		{user.RoleManager, user.RoleManager, false},
		{user.RoleManager, user.RoleTeamLead, true},
		{user.RoleTeamLead, user.RoleTeamLead, false},
		{user.RoleTeamLead, user.RoleAssociate, true},
		{user.RoleAssociate, user.RoleAssociate, false},
	}
	for _, tt := range tests {
		err := a.CanCreate(user.Actor{ID: "c", Role: tt.creator}, tt.target)
		if tt.allowed {
			assert.NoError(t, err, "%s -> %s", tt.creator, tt.target)
		} else {
			assert.ErrorIs(t, err, user.ErrCannotCreateRole, "%s -> %s", tt.creator, tt.target)
		}
	}
}
