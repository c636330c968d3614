package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"safetrack/internal/domain"
)

// UsersRepository account persistence. Lookups return sql.ErrNoRows when absent.
type UsersRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// GetSummaries returns name/email for each id found; unknown ids are skipped.
	GetSummaries(ctx context.Context, ids []string) (map[string]*domain.UserSummary, error)
}

type SQLUsersRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLUsersRepository(db *sql.DB, dialect Dialect) *SQLUsersRepository {
	return &SQLUsersRepository{db: db, dialect: dialect}
}

var _ UsersRepository = (*SQLUsersRepository)(nil)

const userColumns = `id, name, email, password_hash, role, age, weight, height, mobile, profile_image,
	blood_type, gender, medical_conditions, allergies, medications, created_at, updated_at, last_login`

func (r *SQLUsersRepository) CreateUser(ctx context.Context, u *domain.User) error {
	query := r.dialect.rebind(`INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	var lastLogin sql.NullInt64
	if u.LastLogin != nil {
		lastLogin = sql.NullInt64{Int64: toMillis(*u.LastLogin), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		nullFloat(u.Age), nullFloat(u.Weight), nullFloat(u.Height),
		u.Mobile, u.ProfileImage, u.BloodType, u.Gender,
		encodeList(u.MedicalConditions), encodeList(u.Allergies), encodeList(u.Medications),
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt), lastLogin,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", translateErr(err))
	}
	return nil
}

func (r *SQLUsersRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return scanUser(row)
}

func (r *SQLUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	return scanUser(row)
}

func (r *SQLUsersRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	query := r.dialect.rebind(`UPDATE users SET
		name = ?, age = ?, weight = ?, height = ?, mobile = ?, profile_image = ?,
		blood_type = ?, gender = ?, medical_conditions = ?, allergies = ?, medications = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		u.Name, nullFloat(u.Age), nullFloat(u.Weight), nullFloat(u.Height), u.Mobile, u.ProfileImage,
		u.BloodType, u.Gender, encodeList(u.MedicalConditions), encodeList(u.Allergies), encodeList(u.Medications),
		toMillis(u.UpdatedAt), u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *SQLUsersRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`UPDATE users SET last_login = ? WHERE id = ?`), toMillis(at), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (r *SQLUsersRepository) GetSummaries(ctx context.Context, ids []string) (map[string]*domain.UserSummary, error) {
	out := make(map[string]*domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := r.dialect.rebind(`SELECT id, name, email FROM users WHERE id IN (` + placeholders(len(ids)) + `)`)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query user summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		out[s.ID] = &s
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var age, weight, height sql.NullFloat64
	var conditions, allergies, medications string
	var createdAt, updatedAt int64
	var lastLogin sql.NullInt64

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&age, &weight, &height,
		&u.Mobile, &u.ProfileImage, &u.BloodType, &u.Gender,
		&conditions, &allergies, &medications,
		&createdAt, &updatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	u.Age, u.Weight, u.Height = floatPtr(age), floatPtr(weight), floatPtr(height)
	u.MedicalConditions = decodeList(conditions)
	u.Allergies = decodeList(allergies)
	u.Medications = decodeList(medications)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	if lastLogin.Valid {
		t := fromMillis(lastLogin.Int64)
		u.LastLogin = &t
	}
	return &u, nil
}
