package team

import (
	"slices"
	"time"
)

// Team links one team lead and one manager to a set of associates. Members'
// team_lead_id and manager_id mirror the team and are updated together with
// membership.
type Team struct {
	ID          string
	Name        string
	Description *string
	TeamLeadID  string
	ManagerID   string
	Members     []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Team) HasMember(userID string) bool {
	return slices.Contains(t.Members, userID)
}
