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

const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// ResponseService replies posted on reports.
type ResponseService interface {
	CreateResponse(ctx context.Context, who domain.Identity, reportID string, fields map[string]any) (*domain.Response, error)
	// ListResponses newest first unless order is SortOldest.
	ListResponses(ctx context.Context, reportID, order string) ([]*domain.Response, error)
	UpdateResponse(ctx context.Context, who domain.Identity, id string, fields map[string]any) (*domain.Response, error)
	DeleteResponse(ctx context.Context, who domain.Identity, id string) error
}

type responseService struct {
	users     repository.UsersRepository
	reports   repository.ReportsRepository
	responses repository.ResponsesRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewResponseService(
	users repository.UsersRepository,
	reports repository.ReportsRepository,
	responses repository.ResponsesRepository,
	logger *zap.Logger,
) ResponseService {
	return &responseService{users: users, reports: reports, responses: responses, logger: logger, now: time.Now}
}

func (s *responseService) requireReport(ctx context.Context, reportID string) error {
	if !validID(reportID) {
		return ErrInvalidID
	}
	if _, err := s.reports.GetReport(ctx, reportID); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *responseService) CreateResponse(ctx context.Context, who domain.Identity, reportID string, fields map[string]any) (*domain.Response, error) {
	content := strings.TrimSpace(stringify(fields["content"]))
	if content == "" {
		return nil, &ValidationError{
			Message: "Missing required fields",
			Details: map[string]any{"required": []string{"content"}},
		}
	}
	images := []string{}
	if v, ok := fields["images"]; ok && v != nil {
		list, ok := stringList(v)
		if !ok {
			return nil, invalid("Validation failed", "Images must be an array")
		}
		images = list
	}
	if err := s.requireReport(ctx, reportID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	resp := &domain.Response{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		UserID:    who.ID,
		Content:   content,
		Images:    images,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.responses.CreateResponse(ctx, resp); err != nil {
		return nil, err
	}
	s.logger.Info("Response created", zap.String("response_id", resp.ID), zap.String("report_id", reportID))

	if err := s.attach(ctx, []*domain.Response{resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *responseService) ListResponses(ctx context.Context, reportID, order string) ([]*domain.Response, error) {
	if err := s.requireReport(ctx, reportID); err != nil {
		return nil, err
	}
	list, err := s.responses.ListResponsesByReport(ctx, reportID, order != SortOldest)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Response{}
	}
	if err := s.attach(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *responseService) load(ctx context.Context, id string) (*domain.Response, error) {
	if !validID(id) {
		return nil, ErrInvalidID
	}
	resp, err := s.responses.GetResponse(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return resp, nil
}

func (s *responseService) UpdateResponse(ctx context.Context, who domain.Identity, id string, fields map[string]any) (*domain.Response, error) {
	resp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.CanModify(resp.UserID) {
		return nil, ErrForbidden
	}

	if content := strings.TrimSpace(stringify(fields["content"])); content != "" {
		resp.Content = content
	}
	if v, ok := fields["images"]; ok && v != nil {
		list, ok := stringList(v)
		if !ok {
			return nil, invalid("Validation failed", "Images must be an array")
		}
		resp.Images = list
	}
	resp.UpdatedAt = s.now().UTC()
	if err := s.responses.UpdateResponse(ctx, resp); err != nil {
		return nil, notFound(err)
	}
	if err := s.attach(ctx, []*domain.Response{resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *responseService) DeleteResponse(ctx context.Context, who domain.Identity, id string) error {
	resp, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !who.CanModify(resp.UserID) {
		return ErrForbidden
	}
	if _, err := s.responses.DeleteResponse(ctx, id); err != nil {
		return fmt.Errorf("delete response %s: %w", id, err)
	}
	s.logger.Info("Response deleted", zap.String("response_id", id), zap.String("user_id", who.ID))
	return nil
}

func (s *responseService) attach(ctx context.Context, list []*domain.Response) error {
	if len(list) == 0 {
		return nil
	}
	ids := map[string]struct{}{}
	for _, r := range list {
		ids[r.UserID] = struct{}{}
	}
	summaries, err := s.users.GetSummaries(ctx, keys(ids))
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}
	for _, r := range list {
		r.User = summaries[r.UserID]
	}
	return nil
}
