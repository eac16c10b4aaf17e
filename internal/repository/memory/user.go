package memory

import (
	"context"
	"strings"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

type userRepository struct {
	s *Store
}

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.EmployeeID == u.EmployeeID {
			return user.User{}, user.ErrEmployeeIDExists
		}
		if u.Email != nil && existing.Email != nil && *existing.Email == *u.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	u.ID, _ = r.s.nextID(u.ID)
	r.s.users[u.ID] = u
	return u, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) GetByEmployeeID(_ context.Context, employeeID string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) List(_ context.Context, filter user.UserFilter, scope user.Scope) ([]user.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []user.User
	for _, u := range r.s.users {
		if !scope.Allows(u.Owner()) {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if search != "" && !matches(u, search) {
			continue
		}
		out = append(out, u)
	}
	sortDesc(out, func(u user.User) string { return u.CreatedAt.Format("20060102150405.000000000") + u.ID })
	items, total := window(out, filter.Params)
	return items, total, nil
}

func matches(u user.User, search string) bool {
	if strings.Contains(strings.ToLower(u.FullName), search) || strings.Contains(strings.ToLower(u.EmployeeID), search) {
		return true
	}
	return u.Email != nil && strings.Contains(*u.Email, search)
}

func (r *userRepository) Update(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return user.User{}, user.ErrUserNotFound
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r *userRepository) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.IsActive = active
	r.s.users[id] = u
	return nil
}

func (r *userRepository) SetHierarchy(_ context.Context, ids []string, teamLeadID, managerID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		u, ok := r.s.users[id]
		if !ok {
			continue
		}
		u.TeamLeadID = teamLeadID
		u.ManagerID = managerID
		r.s.users[id] = u
	}
	return nil
}

func (r *userRepository) CountByRole(_ context.Context, role user.Role) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
