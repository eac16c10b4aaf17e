package authz

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// creatable lists, per creator role, the roles it may create.
var creatable = map[user.Role][]user.Role{
	user.RoleAdmin:    {user.RoleManager, user.RoleTeamLead, user.RoleAssociate},
	user.RoleManager:  {user.RoleTeamLead, user.RoleAssociate},
	user.RoleTeamLead: {user.RoleAssociate},
}

type engine struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds the policy engine from a role matrix.
func NewAuthorizer(matrix map[user.Role][]user.Permission) (authz.Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	var rules [][]string
	for role, perms := range matrix {
		for _, perm := range perms {
			obj, act := split(perm)
			rules = append(rules, []string{string(role), obj, act})
		}
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("failed to load role matrix: %w", err)
		}
	}

	return &engine{enforcer: e}, nil
}

func split(perm user.Permission) (string, string) {
	obj, act, found := strings.Cut(string(perm), ".")
	if !found {
		return obj, "*"
	}
	return obj, act
}

func (e *engine) Can(role user.Role, perm user.Permission) bool {
	obj, act := split(perm)
	ok, err := e.enforcer.Enforce(string(role), obj, act)
	if err != nil {
		slog.Error("policy evaluation failed", "role", role, "permission", perm, "error", err)
		return false
	}
	return ok
}

func (e *engine) Require(actor user.Actor, perm user.Permission) error {
	if !e.Can(actor.Role, perm) {
		return fmt.Errorf("%w: %s", authz.ErrForbidden, perm)
	}
	return nil
}

func (e *engine) Scope(actor user.Actor) user.Scope {
	switch actor.Role {
	case user.RoleAdmin:
		return user.Scope{All: true}
	case user.RoleManager:
		return user.Scope{SelfID: actor.ID, ManagerID: actor.ID}
	case user.RoleTeamLead:
		return user.Scope{SelfID: actor.ID, TeamLeadID: actor.ID}
	default:
		return user.Scope{SelfID: actor.ID}
	}
}

func (e *engine) RequireAccess(actor user.Actor, owner user.Owner) error {
	if !e.Scope(actor).Allows(owner) {
		return authz.ErrForbidden
	}
	return nil
}

func (e *engine) CanCreate(actor user.Actor, target user.Role) error {
	for _, r := range creatable[actor.Role] {
		if r == target {
			return nil
		}
	}
	return user.ErrCannotCreateRole
}
