package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var migrationsDir = filepath.Join("..", "..", "..", "..", "migrations")

// newTestDatabase connects to TEST_DATABASE_URL, rebuilds the schema and
// closes the pool when t ends. Without the variable the test is skipped.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1, TimeZone: "UTC"})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, applyMigration(ctx, db, "000001_init.down.sql"))
	require.NoError(t, applyMigration(ctx, db, "000001_init.up.sql"))
	return db
}

func applyMigration(ctx context.Context, db *database.DB, name string) error {
	sql, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := db.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

// createUser inserts an active user with the given role and supervisors.
func createUser(t *testing.T, db *database.DB, employeeID, name string, role user.Role, managerID, teamLeadID *string) user.User {
	t.Helper()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		EmployeeID:   employeeID,
		FullName:     name,
		PasswordHash: "hash",
		Role:         role,
		ManagerID:    managerID,
		TeamLeadID:   teamLeadID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }
