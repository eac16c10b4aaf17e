package user

import (
	"context"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/password"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/memory"
	authzservice "github.com/pagemantra/worktrack-backend-go/internal/service/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   user.UserService
	repo  user.UserRepository
	admin user.User
	mgr   user.User
	tl    user.User
	emp   user.User
}

const (
	adminID = "00000000-0000-4000-8000-000000000001"
	mgrID   = "00000000-0000-4000-8000-000000000002"
	tlID    = "00000000-0000-4000-8000-000000000003"
	empID   = "00000000-0000-4000-8000-000000000004"
	mgr2ID  = "00000000-0000-4000-8000-000000000005"
)

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewUserRepository(memory.NewStore())
	a, err := authzservice.NewAuthorizer(user.RolePermissions)
	require.NoError(t, err)
	clk := &clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}

	f := &fixture{repo: repo}
	f.svc = NewUserService(repo, a, password.NewBcrypt(bcrypt.MinCost), clk)

	mk := func(id, code string, role user.Role, mgr, tl *string) user.User {
		u, err := repo.Create(ctx, user.User{ID: id, EmployeeID: code, FullName: "User " + code, Role: role, ManagerID: mgr, TeamLeadID: tl, IsActive: true, CreatedAt: clk.Now()})
		require.NoError(t, err)
		return u
	}
	f.admin = mk(adminID, "ADM001", user.RoleAdmin, nil, nil)
	f.mgr = mk(mgrID, "MGR001", user.RoleManager, nil, nil)
	f.tl = mk(tlID, "TL001", user.RoleTeamLead, ptr(mgrID), nil)
	f.emp = mk(empID, "EMP001", user.RoleAssociate, ptr(mgrID), ptr(tlID))
	return f
}

func as(u user.User) context.Context {
	return user.WithActor(context.Background(), u.Actor())
}

func TestCreateHierarchy(t *testing.T) {
	f := setup(t)

	t.Run("team lead fills both supervisors", func(t *testing.T) {
		got, err := f.svc.Create(as(f.tl), user.CreateUserRequest{EmployeeID: "new01", FullName: "New One", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "NEW01", got.EmployeeID)
		assert.Equal(t, user.RoleAssociate, got.Role)
		assert.Equal(t, tlID, *got.TeamLeadID)
		assert.Equal(t, mgrID, *got.ManagerID)
	})

	t.Run("manager becomes manager of created user", func(t *testing.T) {
		got, err := f.svc.Create(as(f.mgr), user.CreateUserRequest{EmployeeID: "new02", FullName: "New Two", Password: "secret1", Role: user.RoleTeamLead})
		require.NoError(t, err)
		assert.Equal(t, mgrID, *got.ManagerID)
		assert.Nil(t, got.TeamLeadID)
	})

	t.Run("admin must name an active manager", func(t *testing.T) {
		_, err := f.svc.Create(as(f.admin), user.CreateUserRequest{EmployeeID: "new03", FullName: "New Three", Password: "secret1"})
		assert.ErrorIs(t, err, user.ErrInvalidManager)

		_, err = f.svc.Create(as(f.admin), user.CreateUserRequest{EmployeeID: "new03", FullName: "New Three", Password: "secret1", ManagerID: ptr(f.tl.ID)})
		assert.ErrorIs(t, err, user.ErrInvalidManager)
	})

	t.Run("admin team lead must report to the manager", func(t *testing.T) {
		other, err := f.repo.Create(context.Background(), user.User{ID: mgr2ID, EmployeeID: "MGR002", FullName: "Other", Role: user.RoleManager, IsActive: true})
		require.NoError(t, err)

		_, err = f.svc.Create(as(f.admin), user.CreateUserRequest{EmployeeID: "new04", FullName: "New Four", Password: "secret1", ManagerID: ptr(other.ID), TeamLeadID: ptr(f.tl.ID)})
		assert.ErrorIs(t, err, user.ErrInvalidTeamLead)

		got, err := f.svc.Create(as(f.admin), user.CreateUserRequest{EmployeeID: "new04", FullName: "New Four", Password: "secret1", ManagerID: ptr(f.mgr.ID), TeamLeadID: ptr(f.tl.ID)})
		require.NoError(t, err)
		assert.Equal(t, tlID, *got.TeamLeadID)
	})

	t.Run("admin creates manager without hierarchy", func(t *testing.T) {
		got, err := f.svc.Create(as(f.admin), user.CreateUserRequest{EmployeeID: "boss", FullName: "Big Boss", Password: "secret1", Role: user.RoleManager, ManagerID: ptr(f.mgr.ID)})
		require.NoError(t, err)
		assert.Nil(t, got.ManagerID)
	})

	t.Run("team lead cannot create team lead", func(t *testing.T) {
		_, err := f.svc.Create(as(f.tl), user.CreateUserRequest{EmployeeID: "new05", FullName: "New Five", Password: "secret1", Role: user.RoleTeamLead})
		assert.ErrorIs(t, err, user.ErrCannotCreateRole)
	})

	t.Run("associate cannot create", func(t *testing.T) {
		_, err := f.svc.Create(as(f.emp), user.CreateUserRequest{EmployeeID: "new06", FullName: "New Six", Password: "secret1"})
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("duplicate identifiers", func(t *testing.T) {
		_, err := f.svc.Create(as(f.tl), user.CreateUserRequest{EmployeeID: "emp001", FullName: "Dup", Password: "secret1"})
		assert.ErrorIs(t, err, user.ErrEmployeeIDExists)

		_, err = f.svc.Create(as(f.tl), user.CreateUserRequest{EmployeeID: "mail1", Email: ptr("Same@Example.com"), FullName: "Mail", Password: "secret1"})
		require.NoError(t, err)
		_, err = f.svc.Create(as(f.tl), user.CreateUserRequest{EmployeeID: "mail2", Email: ptr("same@example.com"), FullName: "Mail", Password: "secret1"})
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
}

func TestCreateHashesPassword(t *testing.T) {
	f := setup(t)
	got, err := f.svc.Create(as(f.tl), user.CreateUserRequest{EmployeeID: "hash1", FullName: "Hash Me", Password: "secret1"})
	require.NoError(t, err)

	stored, err := f.repo.GetByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, password.NewBcrypt(bcrypt.MinCost).Compare(stored.PasswordHash, "secret1"))
	assert.Equal(t, f.tl.ID, *stored.CreatedBy)
}

func TestListScoped(t *testing.T) {
	f := setup(t)

	page, err := f.svc.List(as(f.tl), user.UserFilter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(page.Items))
	for _, u := range page.Items {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{tlID, empID}, ids)

	page, err = f.svc.List(as(f.emp), user.UserFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, empID, page.Items[0].ID)

	page, err = f.svc.List(as(f.admin), user.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
}

func TestRoleListings(t *testing.T) {
	f := setup(t)

	managers, err := f.svc.ListManagers(as(f.admin))
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, mgrID, managers[0].ID)

	_, err = f.svc.ListManagers(as(f.mgr))
	assert.ErrorIs(t, err, authz.ErrForbidden)

	leads, err := f.svc.ListTeamLeads(as(f.mgr))
	require.NoError(t, err)
	require.Len(t, leads, 1)

	staff, err := f.svc.ListEmployees(as(f.tl))
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, empID, staff[0].ID)
}

func TestGetByIDAccess(t *testing.T) {
	f := setup(t)

	_, err := f.svc.GetByID(as(f.tl), f.emp.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(as(f.emp), f.tl.ID)
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	_, err = f.svc.GetByID(as(f.admin), "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdate(t *testing.T) {
	f := setup(t)

	got, err := f.svc.Update(as(f.emp), f.emp.ID, user.UpdateUserRequest{FullName: ptr("  Asha Rao ")})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.FullName)

	_, err = f.svc.Update(as(f.emp), f.emp.ID, user.UpdateUserRequest{IsActive: ptr(false)})
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	got, err = f.svc.Update(as(f.tl), f.emp.ID, user.UpdateUserRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = f.svc.Update(as(f.tl), f.mgr.ID, user.UpdateUserRequest{Phone: ptr("123")})
	assert.ErrorIs(t, err, user.ErrAccessDenied)
}

func TestDelete(t *testing.T) {
	f := setup(t)

	assert.ErrorIs(t, f.svc.Delete(as(f.mgr), f.emp.ID), authz.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(as(f.admin), f.admin.ID), user.ErrCannotDeleteSelf)
	assert.ErrorIs(t, f.svc.Delete(as(f.admin), "missing"), user.ErrUserNotFound)

	require.NoError(t, f.svc.Delete(as(f.admin), f.emp.ID))
	stored, err := f.repo.GetByID(context.Background(), f.emp.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestRequiresActor(t *testing.T) {
	f := setup(t)
	_, err := f.svc.List(context.Background(), user.UserFilter{})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}
