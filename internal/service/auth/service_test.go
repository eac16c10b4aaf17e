package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/auth"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/jwt"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/password"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt-signing-0123"

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (auth.AuthService, user.UserRepository) {
	t.Helper()
	repo := memory.NewUserRepository(memory.NewStore())
	svc := NewAuthService(
		repo,
		password.NewBcrypt(bcrypt.MinCost),
		jwt.NewJWTService(testSecret, time.Hour, time.Minute),
		&clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	)
	return svc, repo
}

func TestRegisterAdminOnce(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	got, err := svc.RegisterAdmin(ctx, user.RegisterAdminRequest{EmployeeID: " adm001 ", FullName: "Root Admin", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, got.Role)
	assert.Equal(t, "ADM001", got.EmployeeID)
	assert.True(t, got.IsActive)

	_, err = svc.RegisterAdmin(ctx, user.RegisterAdminRequest{EmployeeID: "adm002", FullName: "Second Admin", Password: "secret1"})
	assert.ErrorIs(t, err, auth.ErrAdminExists)
}

func TestLogin(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, user.RegisterAdminRequest{EmployeeID: "adm001", Email: ptr("root@example.com"), FullName: "Root Admin", Password: "secret1"})
	require.NoError(t, err)

	t.Run("by employee id", func(t *testing.T) {
		tok, err := svc.Login(ctx, auth.LoginRequest{EmployeeID: "adm001", Password: "secret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, tok.AccessToken)
		assert.Equal(t, "bearer", tok.TokenType)
		assert.Equal(t, "ADM001", tok.User.EmployeeID)
		assert.True(t, tok.ExpiresAt.After(time.Now()))
	})

	t.Run("by email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Email: ptr("ROOT@example.com"), Password: "secret1"})
		assert.NoError(t, err)
	})

	t.Run("employee id wins over email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{EmployeeID: "nobody", Email: ptr("root@example.com"), Password: "secret1"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{EmployeeID: "adm001", Password: "nope"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("missing identifier", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Password: "secret1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "employee_id")
	})

	t.Run("inactive", func(t *testing.T) {
		u, err := repo.GetByEmployeeID(ctx, "ADM001")
		require.NoError(t, err)
		require.NoError(t, repo.SetActive(ctx, u.ID, false))

		_, err = svc.Login(ctx, auth.LoginRequest{EmployeeID: "adm001", Password: "secret1"})
		assert.ErrorIs(t, err, user.ErrInactiveUser)
	})
}

func TestMe(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, user.ErrUnauthenticated)

	created, err := svc.RegisterAdmin(context.Background(), user.RegisterAdminRequest{EmployeeID: "adm001", FullName: "Root Admin", Password: "secret1"})
	require.NoError(t, err)

	ctx := user.WithActor(context.Background(), user.Actor{ID: created.ID, Role: user.RoleAdmin})
	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, me.ID)
}
