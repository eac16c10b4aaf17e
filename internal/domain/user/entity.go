package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleTeamLead  Role = "team_lead"
	RoleAssociate Role = "employee"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleTeamLead, RoleAssociate}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeamLead, RoleAssociate:
		return true
	}
	return false
}

// Rank orders roles by seniority; Admin is highest.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 4
	case RoleManager:
		return 3
	case RoleTeamLead:
		return 2
	case RoleAssociate:
		return 1
	}
	return 0
}

// User is an account in the hierarchy. Role is fixed at creation.
type User struct {
	ID           string
	EmployeeID   string
	Email        *string
	FullName     string
	PasswordHash string
	Role         Role
	Phone        *string
	Department   *string
	ManagerID    *string
	TeamLeadID   *string
	IsActive     bool
	CreatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Owner() Owner {
	return Owner{ID: u.ID, ManagerID: u.ManagerID, TeamLeadID: u.TeamLeadID}
}

func (u User) Actor() Actor {
	return Actor{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		FullName:   u.FullName,
		Role:       u.Role,
		ManagerID:  u.ManagerID,
		TeamLeadID: u.TeamLeadID,
	}
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NormalizeEmployeeID trims and uppercases an employee identifier.
func NormalizeEmployeeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NormalizeEmail lowercases an email; blank input means no email.
func NormalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}

// Owner is the ownership chain of a resource: the user who owns it and that
// user's supervisors.
type Owner struct {
	ID         string
	ManagerID  *string
	TeamLeadID *string
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID         string
	EmployeeID string
	FullName   string
	Role       Role
	ManagerID  *string
	TeamLeadID *string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Scope is the visibility filter of an actor over owned resources. A resource
// is visible when any populated clause matches its owner.
type Scope struct {
	All        bool
	SelfID     string
	ManagerID  string
	TeamLeadID string
}

func (s Scope) Allows(o Owner) bool {
	if s.All {
		return true
	}
	if s.SelfID != "" && o.ID == s.SelfID {
		return true
	}
	if s.ManagerID != "" && o.ManagerID != nil && *o.ManagerID == s.ManagerID {
		return true
	}
	if s.TeamLeadID != "" && o.TeamLeadID != nil && *o.TeamLeadID == s.TeamLeadID {
		return true
	}
	return false
}
