package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"safetrack/internal/domain"
)

// ResponsesRepository replies to reports. A response points at its report by
// id; nothing points back, so deleting a report's responses first and the
// report second never leaves a dangling reference on the report side.
type ResponsesRepository interface {
	CreateResponse(ctx context.Context, resp *domain.Response) error
	GetResponse(ctx context.Context, id string) (*domain.Response, error)
	ListResponsesByReport(ctx context.Context, reportID string, newestFirst bool) ([]*domain.Response, error)
	// ListResponsesByReports oldest first, grouped by report id.
	ListResponsesByReports(ctx context.Context, reportIDs []string) (map[string][]*domain.Response, error)
	UpdateResponse(ctx context.Context, resp *domain.Response) error
	DeleteResponse(ctx context.Context, id string) (int64, error)
	DeleteResponsesByReport(ctx context.Context, reportID string) (int64, error)
	CountResponsesByUser(ctx context.Context, userID string, since time.Time) (int, error)
	ListResponsesByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Response, error)
}

type SQLResponsesRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLResponsesRepository(db *sql.DB, dialect Dialect) *SQLResponsesRepository {
	return &SQLResponsesRepository{db: db, dialect: dialect}
}

var _ ResponsesRepository = (*SQLResponsesRepository)(nil)

const responseColumns = `id, report_id, user_id, content, images, created_at, updated_at`

func (r *SQLResponsesRepository) CreateResponse(ctx context.Context, resp *domain.Response) error {
	query := r.dialect.rebind(`INSERT INTO responses (` + responseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		resp.ID, resp.ReportID, resp.UserID, resp.Content, encodeList(resp.Images),
		toMillis(resp.CreatedAt), toMillis(resp.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	return nil
}

func (r *SQLResponsesRepository) GetResponse(ctx context.Context, id string) (*domain.Response, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+responseColumns+` FROM responses WHERE id = ?`), id)
	return scanResponse(row)
}

func (r *SQLResponsesRepository) ListResponsesByReport(ctx context.Context, reportID string, newestFirst bool) ([]*domain.Response, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	query := `SELECT ` + responseColumns + ` FROM responses WHERE report_id = ? ORDER BY created_at ` + order
	return r.queryResponses(ctx, query, reportID)
}

func (r *SQLResponsesRepository) ListResponsesByReports(ctx context.Context, reportIDs []string) (map[string][]*domain.Response, error) {
	out := make(map[string][]*domain.Response, len(reportIDs))
	if len(reportIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(reportIDs))
	for i, id := range reportIDs {
		args[i] = id
	}
	query := `SELECT ` + responseColumns + ` FROM responses WHERE report_id IN (` + placeholders(len(reportIDs)) + `) ORDER BY created_at ASC`
	list, err := r.queryResponses(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, resp := range list {
		out[resp.ReportID] = append(out[resp.ReportID], resp)
	}
	return out, nil
}

func (r *SQLResponsesRepository) UpdateResponse(ctx context.Context, resp *domain.Response) error {
	res, err := r.db.ExecContext(ctx,
		r.dialect.rebind(`UPDATE responses SET content = ?, images = ?, updated_at = ? WHERE id = ?`),
		resp.Content, encodeList(resp.Images), toMillis(resp.UpdatedAt), resp.ID,
	)
	if err != nil {
		return fmt.Errorf("update response: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *SQLResponsesRepository) DeleteResponse(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM responses WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("delete response: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLResponsesRepository) DeleteResponsesByReport(ctx context.Context, reportID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM responses WHERE report_id = ?`), reportID)
	if err != nil {
		return 0, fmt.Errorf("delete responses of report: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLResponsesRepository) CountResponsesByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		r.dialect.rebind(`SELECT COUNT(*) FROM responses WHERE user_id = ? AND created_at >= ?`),
		userID, sinceMillis(since),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

func (r *SQLResponsesRepository) ListResponsesByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryResponses(ctx, query, userID, limit, offset)
}

func (r *SQLResponsesRepository) queryResponses(ctx context.Context, query string, args ...any) ([]*domain.Response, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	out := []*domain.Response{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func scanResponse(row rowScanner) (*domain.Response, error) {
	var resp domain.Response
	var images string
	var createdAt, updatedAt int64
	if err := row.Scan(&resp.ID, &resp.ReportID, &resp.UserID, &resp.Content, &images, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	resp.Images = decodeList(images)
	resp.CreatedAt = fromMillis(createdAt)
	resp.UpdatedAt = fromMillis(updatedAt)
	return &resp, nil
}
