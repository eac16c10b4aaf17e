// Package authz decides what an actor may do and which records an actor may see.
package authz

import (
	"errors"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

var ErrForbidden = errors.New("you do not have permission to perform this action")

type Authorizer interface {
	// Can reports whether role holds perm in the role matrix.
	Can(role user.Role, perm user.Permission) bool
	// Require fails with ErrForbidden when actor's role lacks perm.
	Require(actor user.Actor, perm user.Permission) error
	// Scope is the visibility filter of actor over owned records.
	Scope(actor user.Actor) user.Scope
	// RequireAccess fails with ErrForbidden when owner is outside actor's scope.
	RequireAccess(actor user.Actor, owner user.Owner) error
	// CanCreate fails with user.ErrCannotCreateRole when actor may not create
	// a user with role target.
	CanCreate(actor user.Actor, target user.Role) error
}
