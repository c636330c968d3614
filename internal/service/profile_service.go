package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"safetrack/internal/domain"
	"safetrack/internal/repository"
	"safetrack/internal/upload"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentWindow = 30 * 24 * time.Hour

var (
	validGenders    = []string{"Male", "Female", "Other", "Prefer not to say"}
	validBloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// ProfileService the authenticated user's own profile, statistics and activity feed.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	// UpdateProfile validates every supplied field of a decoded JSON body and
	// applies them together; nothing is written when any field fails.
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*domain.User, error)
	UploadImage(ctx context.Context, userID string, img ImageUpload) (*domain.User, error)
	Stats(ctx context.Context, userID string) (*domain.UserStats, error)
	Activity(ctx context.Context, userID string, limit, offset int) (*ActivityPage, error)
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type ActivityPage struct {
	Data  []domain.Activity `json:"data"`
	Total int               `json:"total"`
}

type profileService struct {
	users     repository.UsersRepository
	reports   repository.ReportsRepository
	responses repository.ResponsesRepository
	uploads   upload.Store
	logger    *zap.Logger
	now       func() time.Time
}

func NewProfileService(
	users repository.UsersRepository,
	reports repository.ReportsRepository,
	responses repository.ResponsesRepository,
	uploads upload.Store,
	logger *zap.Logger,
) ProfileService {
	return &profileService{
		users:     users,
		reports:   reports,
		responses: responses,
		uploads:   uploads,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*domain.User, error) {
	patch, errs := ParseProfileUpdate(fields)
	if len(errs) > 0 {
		return nil, invalid("Validation failed", errs...)
	}
	return s.apply(ctx, userID, patch)
}

func (s *profileService) apply(ctx context.Context, userID string, patch domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	patch.Apply(user)
	user.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *profileService) UploadImage(ctx context.Context, userID string, img ImageUpload) (*domain.User, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, notFound(err)
	}
	url, err := s.uploads.Save(ctx, img.Filename, img.ContentType, img.Body)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) {
			return nil, invalid("Only image files are allowed")
		}
		return nil, fmt.Errorf("store profile image: %w", err)
	}
	s.logger.Info("Profile image stored", zap.String("user_id", userID), zap.String("url", url))
	return s.apply(ctx, userID, domain.ProfileUpdate{ProfileImage: &url})
}

func (s *profileService) Stats(ctx context.Context, userID string) (*domain.UserStats, error) {
	since := s.now().Add(-recentWindow)
	var st domain.UserStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalReports, err = s.reports.CountReportsByUser(gctx, userID, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		st.TotalResponses, err = s.responses.CountResponsesByUser(gctx, userID, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		st.RecentReports, err = s.reports.CountReportsByUser(gctx, userID, since)
		return err
	})
	g.Go(func() (err error) {
		st.RecentResponses, err = s.responses.CountResponsesByUser(gctx, userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count user activity: %w", err)
	}

	st.TotalActivity = st.TotalReports + st.TotalResponses
	st.RecentActivity = st.RecentReports + st.RecentResponses
	return &st, nil
}

// Activity merges the newest reports and responses of the user, each page
// fetched independently, and returns the first limit entries of the merge.
func (s *profileService) Activity(ctx context.Context, userID string, limit, offset int) (*ActivityPage, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var (
		reports   []*domain.Report
		responses []*domain.Response
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reports, err = s.reports.ListReportsByUser(gctx, userID, limit, offset)
		return err
	})
	g.Go(func() (err error) {
		responses, err = s.responses.ListResponsesByUser(gctx, userID, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	activities := make([]domain.Activity, 0, len(reports)+len(responses))
	for _, r := range reports {
		status := r.Status
		if status == "" {
			status = domain.StatusActive
		}
		activities = append(activities, domain.Activity{
			ID:          r.ID,
			Type:        "report",
			Title:       "Missing Person Report: " + reportLabel(r),
			Description: r.Description,
			CreatedAt:   r.CreatedAt,
			Status:      status,
		})
	}

	parents := map[string]*domain.Report{}
	for _, resp := range responses {
		if _, ok := parents[resp.ReportID]; ok {
			continue
		}
		parent, err := s.reports.GetReport(ctx, resp.ReportID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load report %s: %w", resp.ReportID, err)
		}
		parents[resp.ReportID] = parent
	}
	for _, resp := range responses {
		label := "Report"
		if p := parents[resp.ReportID]; p != nil {
			label = reportLabel(p)
		}
		activities = append(activities, domain.Activity{
			ID:          resp.ID,
			Type:        "response",
			Title:       "Response to: " + label,
			Description: resp.Content,
			CreatedAt:   resp.CreatedAt,
			Status:      "submitted",
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	page := &ActivityPage{Data: activities, Total: len(activities)}
	if len(page.Data) > limit {
		page.Data = page.Data[:limit]
	}
	return page, nil
}

func reportLabel(r *domain.Report) string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Title != "":
		return r.Title
	default:
		return "Report"
	}
}

// ParseProfileUpdate validates a decoded JSON profile body. Every failing
// field contributes one message; unknown keys are ignored.
func ParseProfileUpdate(fields map[string]any) (domain.ProfileUpdate, []string) {
	var (
		p    domain.ProfileUpdate
		errs []string
	)

	if v, ok := fields["name"]; ok {
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
			name := strings.TrimSpace(s)
			p.Name = &name
		} else {
			errs = append(errs, "Name must be a non-empty string")
		}
	}

	numeric := []struct {
		key      string
		min, max float64
		msg      string
		dst      **float64
	}{
		{"age", 1, 120, "Age must be a number between 1 and 120", &p.Age},
		{"height", 30, 300, "Height must be a number between 30 and 300 cm", &p.Height},
		{"weight", 20, 300, "Weight must be a number between 20 and 300 kg", &p.Weight},
	}
	for _, f := range numeric {
		v, ok := fields[f.key]
		if !ok {
			continue
		}
		n, isNum := coerceNumber(v)
		if !isNum || n < f.min || n > f.max {
			errs = append(errs, f.msg)
			continue
		}
		*f.dst = &n
	}

	if v, ok := fields["mobile"]; ok {
		digits := digitsOnly(stringify(v))
		if len(digits) != 10 {
			errs = append(errs, "Mobile number must be 10 digits")
		} else {
			p.Mobile = &digits
		}
	}

	if v, ok := fields["gender"]; ok {
		if s, isStr := v.(string); isStr && contains(validGenders, s) {
			p.Gender = &s
		} else {
			errs = append(errs, "Invalid gender selection")
		}
	}

	if v, ok := fields["bloodType"]; ok {
		if s, isStr := v.(string); isStr && contains(validBloodTypes, s) {
			p.BloodType = &s
		} else {
			errs = append(errs, "Invalid blood type")
		}
	}

	if v, ok := fields["profileImage"]; ok {
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
			img := strings.TrimSpace(s)
			p.ProfileImage = &img
		} else {
			errs = append(errs, "Profile image must be a valid URL")
		}
	}

	lists := []struct {
		key string
		msg string
		dst **[]string
	}{
		{"medicalConditions", "Medical conditions must be an array", &p.MedicalConditions},
		{"allergies", "Allergies must be an array", &p.Allergies},
		{"medications", "Medications must be an array", &p.Medications},
	}
	for _, f := range lists {
		v, ok := fields[f.key]
		if !ok {
			continue
		}
		arr, isArr := v.([]any)
		if !isArr {
			errs = append(errs, f.msg)
			continue
		}
		kept := []string{}
		for _, item := range arr {
			if s, isStr := item.(string); isStr && strings.TrimSpace(s) != "" {
				kept = append(kept, s)
			}
		}
		*f.dst = &kept
	}

	return p, errs
}

// coerceNumber numbers and numeric strings pass, booleans map to 1/0;
// null, blank strings and everything else fail.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		return n, err == nil && !math.IsNaN(n)
	}
	return 0, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
