// Package memory is test scaffolding: it implements the repository
// interfaces over process memory for service and HTTP tests. It is not a
// production backend and cmd/api never constructs it; data is lost on exit
// and there is no persistence or cross-process locking.
//
// Writes follow the same conditional-update contract as the PostgreSQL
// repositories, which lets service tests exercise the state machines.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

// Store holds every table behind one lock.
type Store struct {
	mu            sync.RWMutex
	users         map[string]user.User
	teams         map[string]team.Team
	sessions      map[string]attendance.TimeSession
	breakSettings map[string]attendance.BreakSettings
	worksheets    map[string]worksheet.Worksheet
	tasks         map[string]task.Task
	forms         map[string]form.Form
	notifications []notification.Notification
	seq           int64
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]user.User),
		teams:         make(map[string]team.Team),
		sessions:      make(map[string]attendance.TimeSession),
		breakSettings: make(map[string]attendance.BreakSettings),
		worksheets:    make(map[string]worksheet.Worksheet),
		tasks:         make(map[string]task.Task),
		forms:         make(map[string]form.Form),
	}
}

// nextID returns a fresh identifier and an insertion sequence used to keep
// ordering stable when timestamps tie.
func (s *Store) nextID(id string) (string, int64) {
	s.seq++
	if id == "" {
		id = uuid.NewString()
	}
	return id, s.seq
}

// ownerOf resolves the ownership chain of a record owned by userID. Caller
// holds the lock.
func (s *Store) ownerOf(userID string) user.Owner {
	u, ok := s.users[userID]
	if !ok {
		return user.Owner{ID: userID}
	}
	return u.Owner()
}

func (s *Store) nameOf(userID string) *string {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	name := u.FullName
	return &name
}

// Transactor runs fn directly. The store has no partial-failure mode to roll back.
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ database.Transactor = Transactor{}

func window[T any](items []T, p pagination.Params) ([]T, int64) {
	total := int64(len(items))
	if p.Skip >= len(items) {
		return []T{}, total
	}
	end := len(items)
	if p.Limit > 0 && p.Skip+p.Limit < end {
		end = p.Skip + p.Limit
	}
	return items[p.Skip:end], total
}

func sortDesc[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) > key(items[j]) })
}
