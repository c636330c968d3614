package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safetrack/internal/domain"
	"safetrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService incident reports. Reads attach the author summary and the
// report's responses (oldest first, each with its author).
type ReportService interface {
	CreateReport(ctx context.Context, who domain.Identity, fields map[string]any) (*domain.Report, error)
	ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
	// ListActiveReports ignores filter.Status.
	ListActiveReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	UpdateReport(ctx context.Context, who domain.Identity, id string, fields map[string]any) (*domain.Report, error)
	// DeleteReport removes the report's responses, then the report.
	DeleteReport(ctx context.Context, who domain.Identity, id string) error
	// ExportReports admin only; returns an xlsx workbook.
	ExportReports(ctx context.Context, who domain.Identity, filter domain.ReportFilter) ([]byte, error)
}

type reportService struct {
	users     repository.UsersRepository
	reports   repository.ReportsRepository
	responses repository.ResponsesRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewReportService(
	users repository.UsersRepository,
	reports repository.ReportsRepository,
	responses repository.ResponsesRepository,
	logger *zap.Logger,
) ReportService {
	return &reportService{users: users, reports: reports, responses: responses, logger: logger, now: time.Now}
}

// validID ids are UUIDs; anything else can never match a stored document.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *reportService) CreateReport(ctx context.Context, who domain.Identity, fields map[string]any) (*domain.Report, error) {
	patch, err := ParseReportPatch(fields)
	if err != nil {
		return nil, err
	}
	if patch.Description == "" || patch.Location == "" {
		return nil, &ValidationError{
			Message: "Missing required fields",
			Details: map[string]any{
				"required": []string{"description", "location"},
				"received": map[string]bool{
					"description": patch.Description != "",
					"location":    patch.Location != "",
				},
			},
		}
	}

	now := s.now().UTC()
	report := &domain.Report{
		ID:        uuid.NewString(),
		UserID:    who.ID,
		Category:  domain.CategoryMissingPerson,
		Status:    domain.StatusActive,
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// a new report always starts Active
	patch.Status = ""
	patch.Apply(report)

	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	s.logger.Info("Report created", zap.String("report_id", report.ID), zap.String("user_id", who.ID))

	if err := s.attach(ctx, []*domain.Report{report}); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	reports, err := s.reports.ListReports(ctx, filter)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	if err := s.attach(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *reportService) ListActiveReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	filter.Status = domain.StatusActive
	return s.ListReports(ctx, filter)
}

func (s *reportService) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, []*domain.Report{report}); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) load(ctx context.Context, id string) (*domain.Report, error) {
	if !validID(id) {
		return nil, ErrInvalidID
	}
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return report, nil
}

func (s *reportService) UpdateReport(ctx context.Context, who domain.Identity, id string, fields map[string]any) (*domain.Report, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.CanModify(report.UserID) {
		return nil, ErrForbidden
	}
	patch, err := ParseReportPatch(fields)
	if err != nil {
		return nil, err
	}

	patch.Apply(report)
	report.UpdatedAt = s.now().UTC()
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, notFound(err)
	}
	if err := s.attach(ctx, []*domain.Report{report}); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) DeleteReport(ctx context.Context, who domain.Identity, id string) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !who.CanModify(report.UserID) {
		s.logger.Warn("Report delete refused", zap.String("report_id", id), zap.String("user_id", who.ID))
		return ErrForbidden
	}

	removed, err := s.responses.DeleteResponsesByReport(ctx, id)
	if err != nil {
		return fmt.Errorf("delete responses of report %s: %w", id, err)
	}
	n, err := s.reports.DeleteReport(ctx, id)
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete report %s: no rows removed", id)
	}
	s.logger.Info("Report deleted",
		zap.String("report_id", id),
		zap.String("user_id", who.ID),
		zap.Int64("responses_deleted", removed),
	)
	return nil
}

func (s *reportService) ExportReports(ctx context.Context, who domain.Identity, filter domain.ReportFilter) ([]byte, error) {
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	reports, err := s.ListReports(ctx, filter)
	if err != nil {
		return nil, err
	}
	return GenerateReportExport(reports)
}

// attach joins author summaries and responses onto reports in memory.
func (s *reportService) attach(ctx context.Context, reports []*domain.Report) error {
	if len(reports) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	byReport, err := s.responses.ListResponsesByReports(ctx, ids)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}

	userIDs := map[string]struct{}{}
	for _, r := range reports {
		userIDs[r.UserID] = struct{}{}
		for _, resp := range byReport[r.ID] {
			userIDs[resp.UserID] = struct{}{}
		}
	}
	summaries, err := s.users.GetSummaries(ctx, keys(userIDs))
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}

	for _, r := range reports {
		r.User = summaries[r.UserID]
		r.Responses = byReport[r.ID]
		if r.Responses == nil {
			r.Responses = []*domain.Response{}
		}
		for _, resp := range r.Responses {
			resp.User = summaries[resp.UserID]
		}
	}
	return nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// ParseReportPatch reads report fields from a decoded JSON body. Strings are
// trimmed, numbers are accepted where text is expected, and empty values
// leave the field unset.
func ParseReportPatch(fields map[string]any) (domain.ReportPatch, error) {
	text := func(key string) string {
		return strings.TrimSpace(stringify(fields[key]))
	}
	p := domain.ReportPatch{
		Title:         text("title"),
		Name:          text("name"),
		Age:           text("age"),
		LastSeen:      text("lastSeen"),
		ContactNumber: text("contactNumber"),
		Description:   text("description"),
		Location:      text("location"),
		Category:      text("category"),
		Status:        text("status"),
	}

	var errs []string
	if p.Category != "" && !contains(domain.ReportCategories, p.Category) {
		errs = append(errs, "Invalid category")
	}
	if p.Status != "" && !contains(domain.ReportStatuses, p.Status) {
		errs = append(errs, "Invalid status")
	}
	if v, ok := fields["images"]; ok && v != nil {
		images, ok := stringList(v)
		if !ok {
			errs = append(errs, "Images must be an array")
		} else {
			p.Images = images
		}
	}
	if len(errs) > 0 {
		return p, invalid("Validation failed", errs...)
	}
	return p, nil
}

func stringList(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, true
}
