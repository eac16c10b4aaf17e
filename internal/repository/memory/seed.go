package memory

import (
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

// Org is a two-branch hierarchy used by service tests:
//
//	Admin
//	Manager ── Lead ── Associate, Peer
//	Manager2 ── Lead2 ── Outsider
type Org struct {
	Admin     user.User
	Manager   user.User
	Lead      user.User
	Associate user.User
	Peer      user.User
	Manager2  user.User
	Lead2     user.User
	Outsider  user.User

	Team  team.Team
	Team2 team.Team
}

const (
	AdminID     = "0b7e0000-0000-4000-8000-000000000001"
	ManagerID   = "0b7e0000-0000-4000-8000-000000000002"
	LeadID      = "0b7e0000-0000-4000-8000-000000000003"
	AssociateID = "0b7e0000-0000-4000-8000-000000000004"
	PeerID      = "0b7e0000-0000-4000-8000-000000000005"
	Manager2ID  = "0b7e0000-0000-4000-8000-000000000006"
	Lead2ID     = "0b7e0000-0000-4000-8000-000000000007"
	OutsiderID  = "0b7e0000-0000-4000-8000-000000000008"
	TeamID      = "0b7e0000-0000-4000-8000-0000000000a1"
	Team2ID     = "0b7e0000-0000-4000-8000-0000000000a2"
)

// SeedOrg inserts the Org hierarchy with both teams and their rosters.
func (s *Store) SeedOrg(now time.Time) Org {
	s.mu.Lock()
	defer s.mu.Unlock()

	put := func(id, code, name string, role user.Role, managerID, leadID string) user.User {
		u := user.User{
			ID:         id,
			EmployeeID: code,
			FullName:   name,
			Role:       role,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if managerID != "" {
			u.ManagerID = &managerID
		}
		if leadID != "" {
			u.TeamLeadID = &leadID
		}
		s.users[id] = u
		return u
	}

	org := Org{
		Admin:     put(AdminID, "ADM001", "Asha Admin", user.RoleAdmin, "", ""),
		Manager:   put(ManagerID, "MGR001", "Meera Manager", user.RoleManager, "", ""),
		Lead:      put(LeadID, "TL001", "Tarun Lead", user.RoleTeamLead, ManagerID, ""),
		Associate: put(AssociateID, "EMP001", "Arjun Associate", user.RoleAssociate, ManagerID, LeadID),
		Peer:      put(PeerID, "EMP002", "Priya Peer", user.RoleAssociate, ManagerID, LeadID),
		Manager2:  put(Manager2ID, "MGR002", "Mohan Manager", user.RoleManager, "", ""),
		Lead2:     put(Lead2ID, "TL002", "Tara Lead", user.RoleTeamLead, Manager2ID, ""),
		Outsider:  put(OutsiderID, "EMP003", "Omar Outsider", user.RoleAssociate, Manager2ID, Lead2ID),
	}

	org.Team = team.Team{ID: TeamID, Name: "Platform", TeamLeadID: LeadID, ManagerID: ManagerID, Members: []string{AssociateID, PeerID}, IsActive: true, CreatedAt: now, UpdatedAt: now}
	org.Team2 = team.Team{ID: Team2ID, Name: "Payments", TeamLeadID: Lead2ID, ManagerID: Manager2ID, Members: []string{OutsiderID}, IsActive: true, CreatedAt: now, UpdatedAt: now}
	s.teams[TeamID] = cloneTeam(org.Team)
	s.teams[Team2ID] = cloneTeam(org.Team2)
	return org
}
