package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"safetrack/internal/domain"
)

// ReportsRepository incident reports. Responses are stored separately, see
// ResponsesRepository.
type ReportsRepository interface {
	CreateReport(ctx context.Context, r *domain.Report) error
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	// ListReports newest first.
	ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
	UpdateReport(ctx context.Context, r *domain.Report) error
	// DeleteReport returns the number of rows removed.
	DeleteReport(ctx context.Context, id string) (int64, error)
	// CountReportsByUser counts reports created at or after since (zero time: all).
	CountReportsByUser(ctx context.Context, userID string, since time.Time) (int, error)
	ListReportsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Report, error)
}

type SQLReportsRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLReportsRepository(db *sql.DB, dialect Dialect) *SQLReportsRepository {
	return &SQLReportsRepository{db: db, dialect: dialect}
}

var _ ReportsRepository = (*SQLReportsRepository)(nil)

const reportColumns = `id, user_id, title, name, age, last_seen, contact_number, description, location,
	category, status, images, created_at, updated_at`

func (r *SQLReportsRepository) CreateReport(ctx context.Context, rep *domain.Report) error {
	query := r.dialect.rebind(`INSERT INTO reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		rep.ID, rep.UserID, rep.Title, rep.Name, rep.Age, rep.LastSeen, rep.ContactNumber,
		rep.Description, rep.Location, rep.Category, rep.Status, encodeList(rep.Images),
		toMillis(rep.CreatedAt), toMillis(rep.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *SQLReportsRepository) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+reportColumns+` FROM reports WHERE id = ?`), id)
	return scanReport(row)
}

func (r *SQLReportsRepository) ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	return r.queryReports(ctx, query, args...)
}

func (r *SQLReportsRepository) UpdateReport(ctx context.Context, rep *domain.Report) error {
	query := r.dialect.rebind(`UPDATE reports SET
		title = ?, name = ?, age = ?, last_seen = ?, contact_number = ?, description = ?, location = ?,
		category = ?, status = ?, images = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		rep.Title, rep.Name, rep.Age, rep.LastSeen, rep.ContactNumber, rep.Description, rep.Location,
		rep.Category, rep.Status, encodeList(rep.Images), toMillis(rep.UpdatedAt), rep.ID,
	)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *SQLReportsRepository) DeleteReport(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM reports WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("delete report: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLReportsRepository) CountReportsByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		r.dialect.rebind(`SELECT COUNT(*) FROM reports WHERE user_id = ? AND created_at >= ?`),
		userID, sinceMillis(since),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

func (r *SQLReportsRepository) ListReportsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryReports(ctx, query, userID, limit, offset)
}

func (r *SQLReportsRepository) queryReports(ctx context.Context, query string, args ...any) ([]*domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := []*domain.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rep domain.Report
	var images string
	var createdAt, updatedAt int64
	err := row.Scan(
		&rep.ID, &rep.UserID, &rep.Title, &rep.Name, &rep.Age, &rep.LastSeen, &rep.ContactNumber,
		&rep.Description, &rep.Location, &rep.Category, &rep.Status, &images, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.Images = decodeList(images)
	rep.Responses = []*domain.Response{}
	rep.CreatedAt = fromMillis(createdAt)
	rep.UpdatedAt = fromMillis(updatedAt)
	return &rep, nil
}

func sinceMillis(since time.Time) int64 {
	if since.IsZero() {
		return 0
	}
	return toMillis(since)
}
