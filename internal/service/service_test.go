package service

import (
	"context"
	"database/sql"
	"testing"

	"safetrack/common/database"
	"safetrack/internal/auth"
	"safetrack/internal/domain"
	"safetrack/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repos struct {
	users     repository.UsersRepository
	reports   repository.ReportsRepository
	responses repository.ResponsesRepository
}

func setupRepos(t *testing.T) repos {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.InitSchema(context.Background(), db))
	return newRepos(db)
}

func newRepos(db *sql.DB) repos {
	return repos{
		users:     repository.NewSQLUsersRepository(db, repository.SQLite),
		reports:   repository.NewSQLReportsRepository(db, repository.SQLite),
		responses: repository.NewSQLResponsesRepository(db, repository.SQLite),
	}
}

func newAuth(r repos) AuthService {
	return NewAuthService(r.users, auth.NewTokenIssuer("test-secret", 0), zap.NewNop())
}

// register creates an account and returns its identity.
func register(t *testing.T, svc AuthService, name, email string) domain.Identity {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return domain.Identity{ID: resp.User.ID, Role: resp.User.Role}
}
