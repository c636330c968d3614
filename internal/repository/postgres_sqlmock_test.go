package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"safetrack/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b IN ($2,$3)", Postgres.rebind("SELECT 1 WHERE a = ? AND b IN (?,?)"))
	assert.Equal(t, "a = ?", SQLite.rebind("a = ?"))
}

func TestGetUserByEmail_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSQLUsersRepository(db, Postgres)

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "age", "weight", "height", "mobile", "profile_image",
		"blood_type", "gender", "medical_conditions", "allergies", "medications", "created_at", "updated_at", "last_login",
	}).AddRow("u-1", "Ann", "ann@example.com", "hash", "user", 34.0, nil, 170.0, "0771234567", "",
		"O+", "Female", `["asthma"]`, `[]`, `[]`, created.UnixMilli(), created.UnixMilli(), nil)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	u, err := repo.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	require.NotNil(t, u.Age)
	assert.Equal(t, 34.0, *u.Age)
	assert.Nil(t, u.Weight)
	assert.Equal(t, []string{"asthma"}, u.MedicalConditions)
	assert.Equal(t, created, u.CreatedAt)
	assert.Nil(t, u.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSQLUsersRepository(db, Postgres)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	now := time.Now()
	err := repo.CreateUser(context.Background(), &domain.User{ID: "u-1", Email: "a@b.c", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReports_FiltersAndSearch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSQLReportsRepository(db, Postgres)

	now := time.Now().UnixMilli()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "name", "age", "last_seen", "contact_number", "description", "location",
		"category", "status", "images", "created_at", "updated_at",
	}).AddRow("r-1", "u-1", "Lost dog", "", "", "", "", "Brown 50% lab", "Park", "Other", "Active", `["/uploads/a.jpg"]`, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1 AND category = $2 AND (LOWER(title) LIKE $3`)).
		WithArgs("Active", "Other", `%50\%%`, `%50\%%`).
		WillReturnRows(rows)

	list, err := repo.ListReports(context.Background(), domain.ReportFilter{Status: "Active", Category: "Other", Search: "50%"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"/uploads/a.jpg"}, list[0].Images)
	assert.NotNil(t, list[0].Responses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteResponsesByReport_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSQLResponsesRepository(db, Postgres)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM responses WHERE report_id = $1`)).
		WithArgs("r-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteResponsesByReport(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountReportsByUser_AllTime(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSQLReportsRepository(db, Postgres)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reports`).
		WithArgs("u-1", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountReportsByUser(context.Background(), "u-1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
