package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestScopeAllows(t *testing.T) {
	associate := Owner{ID: "a1", ManagerID: ptr("m1"), TeamLeadID: ptr("t1")}

	tests := []struct {
		name  string
		scope Scope
		want  bool
	}{
		{"admin", Scope{All: true}, true},
		{"self", Scope{SelfID: "a1"}, true},
		{"other associate", Scope{SelfID: "a2"}, false},
		{"manager of owner", Scope{SelfID: "m1", ManagerID: "m1"}, true},
		{"other manager", Scope{SelfID: "m2", ManagerID: "m2"}, false},
		{"team lead of owner", Scope{SelfID: "t1", TeamLeadID: "t1"}, true},
		{"other team lead", Scope{SelfID: "t2", TeamLeadID: "t2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Allows(associate))
		})
	}

	orphan := Owner{ID: "a3"}
	assert.False(t, Scope{ManagerID: "m1", TeamLeadID: "t1"}.Allows(orphan))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeEmployeeID("  abc123 "))
	assert.Nil(t, NormalizeEmail(nil))
	assert.Nil(t, NormalizeEmail(ptr("   ")))
	assert.Equal(t, "asha@example.com", *NormalizeEmail(ptr(" Asha@Example.COM ")))
}

func TestRoleRank(t *testing.T) {
	assert.Greater(t, RoleAdmin.Rank(), RoleManager.Rank())
	assert.Greater(t, RoleManager.Rank(), RoleTeamLead.Rank())
	assert.Greater(t, RoleTeamLead.Rank(), RoleAssociate.Rank())
	assert.False(t, Role("owner").IsValid())
}

func TestActorContext(t *testing.T) {
	_, err := ActorFromContext(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := WithActor(context.Background(), Actor{ID: "u1", Role: RoleManager})
	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, RoleManager, actor.Role)
}

func TestCreateUserRequestValidate(t *testing.T) {
	req := CreateUserRequest{
		EmployeeID: " emp001 ",
		Email:      ptr(""),
		FullName:   "Asha Rao",
		Password:   "secret1",
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "EMP001", req.EmployeeID)
	assert.Nil(t, req.Email)
	assert.Equal(t, RoleAssociate, req.Role)

	bad := CreateUserRequest{EmployeeID: "e", FullName: "A", Password: "123", Role: "owner", ManagerID: ptr("nope")}
	err := bad.Validate()
	require.Error(t, err)
	for _, field := range []string{"employee_id", "full_name", "password", "role", "manager_id"} {
		assert.Contains(t, err.Error(), field)
	}
}
