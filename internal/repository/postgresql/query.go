package postgresql

import (
	"fmt"
	"strings"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

// queryArgs collects positional arguments while a statement is assembled.
type queryArgs []any

func (a *queryArgs) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// conditions is an AND list of WHERE fragments.
type conditions []string

func (c *conditions) and(format string, args ...any) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

func (c conditions) where() string {
	if len(c) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c, " AND ")
}

// scopeCondition renders scope against the users row aliased as alias.
func scopeCondition(scope user.Scope, alias string, args *queryArgs) string {
	if scope.All {
		return "TRUE"
	}
	var clauses []string
	if scope.SelfID != "" {
		clauses = append(clauses, fmt.Sprintf("%s.id = %s", alias, args.add(scope.SelfID)))
	}
	if scope.ManagerID != "" {
		clauses = append(clauses, fmt.Sprintf("%s.manager_id = %s", alias, args.add(scope.ManagerID)))
	}
	if scope.TeamLeadID != "" {
		clauses = append(clauses, fmt.Sprintf("%s.team_lead_id = %s", alias, args.add(scope.TeamLeadID)))
	}
	if len(clauses) == 0 {
		return "FALSE"
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

func limitOffset(p pagination.Params, args *queryArgs) string {
	return fmt.Sprintf("LIMIT %s OFFSET %s", args.add(p.Limit), args.add(p.Skip))
}
