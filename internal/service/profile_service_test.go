package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"safetrack/internal/domain"
	"safetrack/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseProfileUpdate(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		errs   []string
		check  func(t *testing.T, p domain.ProfileUpdate)
	}{
		{
			name:   "numeric strings and phone normalization",
			fields: map[string]any{"age": "34", "height": 172.5, "weight": "70", "mobile": "(555) 123-4567"},
			check: func(t *testing.T, p domain.ProfileUpdate) {
				assert.Equal(t, 34.0, *p.Age)
				assert.Equal(t, 172.5, *p.Height)
				assert.Equal(t, 70.0, *p.Weight)
				assert.Equal(t, "5551234567", *p.Mobile)
			},
		},
		{
			name:   "numeric mobile",
			fields: map[string]any{"mobile": 5551234567.0},
			check: func(t *testing.T, p domain.ProfileUpdate) {
				assert.Equal(t, "5551234567", *p.Mobile)
			},
		},
		{
			name: "every failure is collected",
			fields: map[string]any{
				"name":              "  ",
				"age":               0.0,
				"height":            "tall",
				"weight":            301.0,
				"mobile":            "12345",
				"gender":            "Robot",
				"bloodType":         "C+",
				"profileImage":      "",
				"medicalConditions": "asthma",
				"allergies":         map[string]any{},
				"medications":       12.0,
			},
			errs: []string{
				"Name must be a non-empty string",
				"Age must be a number between 1 and 120",
				"Height must be a number between 30 and 300 cm",
				"Weight must be a number between 20 and 300 kg",
				"Mobile number must be 10 digits",
				"Invalid gender selection",
				"Invalid blood type",
				"Profile image must be a valid URL",
				"Medical conditions must be an array",
				"Allergies must be an array",
				"Medications must be an array",
			},
		},
		{
			name:   "null age fails",
			fields: map[string]any{"age": nil},
			errs:   []string{"Age must be a number between 1 and 120"},
		},
		{
			name:   "lists drop blanks and non-strings",
			fields: map[string]any{"allergies": []any{"pollen", " ", 3.0, "dust"}, "gender": "Prefer not to say", "bloodType": "AB-"},
			check: func(t *testing.T, p domain.ProfileUpdate) {
				assert.Equal(t, []string{"pollen", "dust"}, *p.Allergies)
				assert.Equal(t, "Prefer not to say", *p.Gender)
				assert.Equal(t, "AB-", *p.BloodType)
				assert.Nil(t, p.Medications)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, errs := ParseProfileUpdate(tt.fields)
			assert.Equal(t, tt.errs, errs)
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func newProfile(t *testing.T, r repos) ProfileService {
	t.Helper()
	store, err := upload.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return NewProfileService(r.users, r.reports, r.responses, store, zap.NewNop())
}

func TestProfileService_UpdateAndUpload(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)
	who := register(t, newAuth(r), "Ann", "ann@example.com")
	svc := newProfile(t, r)

	_, err := svc.UpdateProfile(ctx, who.ID, map[string]any{"age": 200.0, "name": "Annie"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Validation failed", verr.Message)

	unchanged, err := svc.GetProfile(ctx, who.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", unchanged.Name, "a rejected update writes nothing")

	u, err := svc.UpdateProfile(ctx, who.ID, map[string]any{"age": 41.0, "name": "Annie", "medications": []any{"aspirin"}})
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.Name)
	assert.Equal(t, 41.0, *u.Age)
	assert.Equal(t, []string{"aspirin"}, u.Medications)

	u, err = svc.UploadImage(ctx, who.ID, ImageUpload{Filename: "me.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.ProfileImage, "/uploads/profile-"))

	_, err = svc.UploadImage(ctx, who.ID, ImageUpload{Filename: "x.txt", ContentType: "text/plain", Body: strings.NewReader("txt")})
	assert.True(t, errors.As(err, &verr))

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileService_StatsAndActivity(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)
	authSvc := newAuth(r)
	ann := register(t, authSvc, "Ann", "ann@example.com")
	bob := register(t, authSvc, "Bob", "bob@example.com")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reports := NewReportService(r.users, r.reports, r.responses, zap.NewNop()).(*reportService)
	responses := NewResponseService(r.users, r.reports, r.responses, zap.NewNop()).(*responseService)

	reports.now = func() time.Time { return now.Add(-60 * 24 * time.Hour) }
	old, err := reports.CreateReport(ctx, ann, map[string]any{"name": "Jamie", "description": "d", "location": "park"})
	require.NoError(t, err)

	reports.now = func() time.Time { return now.Add(-time.Hour) }
	recent, err := reports.CreateReport(ctx, bob, map[string]any{"title": "Lost dog", "description": "d", "location": "mall"})
	require.NoError(t, err)

	responses.now = func() time.Time { return now.Add(-30 * time.Minute) }
	_, err = responses.CreateResponse(ctx, ann, recent.ID, map[string]any{"content": "seen near gate 3"})
	require.NoError(t, err)

	svc := newProfile(t, r).(*profileService)
	svc.now = func() time.Time { return now }

	st, err := svc.Stats(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStats{
		TotalReports: 1, TotalResponses: 1,
		RecentReports: 0, RecentResponses: 1,
		TotalActivity: 2, RecentActivity: 1,
	}, *st)

	page, err := svc.Activity(ctx, ann.ID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "response", page.Data[0].Type)
	assert.Equal(t, "Response to: Lost dog", page.Data[0].Title)
	assert.Equal(t, "submitted", page.Data[0].Status)
	assert.Equal(t, "report", page.Data[1].Type)
	assert.Equal(t, "Missing Person Report: Jamie", page.Data[1].Title)
	assert.Equal(t, old.ID, page.Data[1].ID)

	page, err = svc.Activity(ctx, ann.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.Total)
}
