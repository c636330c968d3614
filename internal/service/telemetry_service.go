package service

import (
	"context"
	"fmt"
	"time"

	"safetrack/internal/store"
	"safetrack/internal/telemetry"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	gpsHistoryLimit       = 10
	heartbeatHistoryLimit = 20
	changeTestReadings    = 5
)

// TelemetryService read-only views over the tracker's telemetry. Reads of
// absent paths return ErrNotFound unless noted otherwise.
type TelemetryService interface {
	LatestData(ctx context.Context) (telemetry.Document, error)
	GPSHistory(ctx context.Context) ([]telemetry.Document, error)
	// Status never fails; store errors degrade to the offline status.
	Status(ctx context.Context) telemetry.Status
	Health(ctx context.Context) (*telemetry.HealthProjection, error)
	Combined(ctx context.Context) (*telemetry.Combined, error)
	HeartbeatHistory(ctx context.Context) ([]telemetry.Document, error)
	ValidateHeartRate(ctx context.Context) (*HeartRateValidation, error)
	// AverageHeartRate returns either an average or the rejection of the
	// current reading.
	AverageHeartRate(ctx context.Context) (*telemetry.Average, *telemetry.AverageRejection, error)
	Debug(ctx context.Context) (*DebugSnapshot, error)
	HealthData(ctx context.Context) (*HealthDataView, error)
	// RawData reports the latest health snapshot as-is, nil included.
	RawData(ctx context.Context) (*RawDataView, error)
	TestChange(ctx context.Context) (*ChangeTest, error)
	TestConnection(ctx context.Context) (*ConnectionTest, error)
	Backend() string
	Ping(ctx context.Context) error
}

type HeartRateValidation struct {
	Valid      bool                       `json:"valid"`
	Message    string                     `json:"message"`
	Validation telemetry.ValidationReport `json:"validation"`
	Data       ValidationData             `json:"data"`
}

type ValidationData struct {
	BPM            any `json:"bpm"`
	PulseValue     any `json:"pulseValue"`
	WaveformLength int `json:"waveformLength"`
	Timestamp      any `json:"timestamp"`
}

type DebugSnapshot struct {
	Message        string                        `json:"message"`
	LatestHealth   telemetry.Document            `json:"latestHealth"`
	Heartbeat      map[string]telemetry.Document `json:"heartbeat"`
	CurrentStatus  telemetry.Document            `json:"currentStatus"`
	AvailablePaths DebugPaths                    `json:"availablePaths"`
}

type DebugPaths struct {
	LatestHealth  []string `json:"latestHealth"`
	Heartbeat     []string `json:"heartbeat"`
	CurrentStatus []string `json:"currentStatus"`
}

type HealthDataView struct {
	Message           string             `json:"message"`
	Data              telemetry.Document `json:"data"`
	PossibleBPMFields map[string]any     `json:"possibleBPMFields"`
	AllFields         []string           `json:"allFields"`
}

type RawDataView struct {
	Message     string             `json:"message"`
	Timestamp   string             `json:"timestamp"`
	Data        telemetry.Document `json:"data"`
	DataType    string             `json:"dataType"`
	IsNull      bool               `json:"isNull"`
	IsUndefined bool               `json:"isUndefined"`
}

type ChangeTest struct {
	Message  string                   `json:"message"`
	Readings []telemetry.ChangeSample `json:"readings"`
	telemetry.ChangeSummary
}

type ConnectionTest struct {
	Message        string                        `json:"message"`
	Connected      bool                          `json:"connected"`
	Backend        string                        `json:"backend"`
	AvailablePaths []string                      `json:"availablePaths"`
	SampleData     map[string]telemetry.Document `json:"sampleData"`
}

type telemetryService struct {
	store          store.TelemetryStore
	paths          telemetry.Paths
	changeInterval time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

func NewTelemetryService(ts store.TelemetryStore, root string, changeInterval time.Duration, logger *zap.Logger) TelemetryService {
	return &telemetryService{
		store:          ts,
		paths:          telemetry.PathsFor(root),
		changeInterval: changeInterval,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *telemetryService) Backend() string { return s.store.Name() }

func (s *telemetryService) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

func (s *telemetryService) read(ctx context.Context, path string) (telemetry.Document, error) {
	doc, err := s.store.ReadLastValue(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}

func (s *telemetryService) readRequired(ctx context.Context, path string) (telemetry.Document, error) {
	doc, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *telemetryService) history(ctx context.Context, path string, n int) ([]telemetry.Document, error) {
	entries, err := s.store.ReadLastN(ctx, path, n)
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return telemetry.FlattenEntries(entries), nil
}

func (s *telemetryService) LatestData(ctx context.Context) (telemetry.Document, error) {
	return s.readRequired(ctx, s.paths.CurrentStatus)
}

func (s *telemetryService) GPSHistory(ctx context.Context) ([]telemetry.Document, error) {
	return s.history(ctx, s.paths.GPS, gpsHistoryLimit)
}

func (s *telemetryService) HeartbeatHistory(ctx context.Context) ([]telemetry.Document, error) {
	return s.history(ctx, s.paths.Heartbeat, heartbeatHistoryLimit)
}

func (s *telemetryService) Status(ctx context.Context) telemetry.Status {
	doc, err := s.read(ctx, s.paths.CurrentStatus)
	if err != nil {
		s.logger.Warn("Status read failed, reporting offline", zap.Error(err))
		return telemetry.OfflineStatus(s.now())
	}
	return telemetry.ProjectStatus(doc, s.now())
}

func (s *telemetryService) Health(ctx context.Context) (*telemetry.HealthProjection, error) {
	doc, err := s.readRequired(ctx, s.paths.LatestHealth)
	if err != nil {
		return nil, err
	}
	h := telemetry.ProjectHealth(doc)
	return &h, nil
}

// Combined reads status and health concurrently and waits for both.
func (s *telemetryService) Combined(ctx context.Context) (*telemetry.Combined, error) {
	var status, health telemetry.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		status, err = s.read(gctx, s.paths.CurrentStatus)
		return err
	})
	g.Go(func() (err error) {
		health, err = s.read(gctx, s.paths.LatestHealth)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if status == nil {
		return nil, ErrNotFound
	}
	c := telemetry.BuildCombined(status, health)
	return &c, nil
}

func (s *telemetryService) ValidateHeartRate(ctx context.Context) (*HeartRateValidation, error) {
	doc, err := s.readRequired(ctx, s.paths.LatestHealth)
	if err != nil {
		return nil, err
	}

	report := telemetry.Validate(doc)
	out := &HeartRateValidation{
		Valid:      report.Valid(),
		Message:    "Heart rate validation passed",
		Validation: report,
		Data: ValidationData{
			PulseValue:     doc.Get("pulse_value"),
			WaveformLength: len(telemetry.Samples(doc.Get("waveform"))),
			Timestamp:      doc.Get("timestamp"),
		},
	}
	if bpm, field := telemetry.ResolveBPMField(doc); field != "" {
		out.Data.BPM = bpm
	}
	if !out.Valid {
		out.Message = "Heart rate validation failed"
		s.logger.Debug("Heart rate validation failed", zap.Strings("criteria", report.Failed()))
	}
	return out, nil
}

func (s *telemetryService) AverageHeartRate(ctx context.Context) (*telemetry.Average, *telemetry.AverageRejection, error) {
	doc, err := s.readRequired(ctx, s.paths.LatestHealth)
	if err != nil {
		return nil, nil, err
	}
	avg, rejected := telemetry.ComputeAverage(doc)
	if rejected != nil {
		return nil, rejected, nil
	}
	return &avg, nil, nil
}

func (s *telemetryService) Debug(ctx context.Context) (*DebugSnapshot, error) {
	var (
		health, status telemetry.Document
		beats          []telemetry.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		health, err = s.read(gctx, s.paths.LatestHealth)
		return err
	})
	g.Go(func() (err error) {
		beats, err = s.store.ReadLastN(gctx, s.paths.Heartbeat, heartbeatHistoryLimit)
		return err
	})
	g.Go(func() (err error) {
		status, err = s.read(gctx, s.paths.CurrentStatus)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DebugSnapshot{
		Message:       "Firebase data structure debug",
		LatestHealth:  health,
		Heartbeat:     telemetry.EntryMap(beats),
		CurrentStatus: status,
		AvailablePaths: DebugPaths{
			LatestHealth:  health.Keys(),
			Heartbeat:     telemetry.EntryKeys(beats),
			CurrentStatus: status.Keys(),
		},
	}, nil
}

func (s *telemetryService) HealthData(ctx context.Context) (*HealthDataView, error) {
	doc, err := s.readRequired(ctx, s.paths.LatestHealth)
	if err != nil {
		return nil, err
	}
	return &HealthDataView{
		Message:           "Current health data structure",
		Data:              doc,
		PossibleBPMFields: telemetry.BPMCandidates(doc),
		AllFields:         doc.Keys(),
	}, nil
}

func (s *telemetryService) RawData(ctx context.Context) (*RawDataView, error) {
	doc, err := s.read(ctx, s.paths.LatestHealth)
	if err != nil {
		return nil, err
	}
	return &RawDataView{
		Message:   "Raw ESP32 data",
		Timestamp: telemetry.FormatISO(s.now()),
		Data:      doc,
		// JSON null and objects both report "object"
		DataType: "object",
		IsNull:   doc == nil,
	}, nil
}

// TestChange samples the latest health snapshot several times, changeInterval
// apart, to tell a live device from a stale snapshot.
func (s *telemetryService) TestChange(ctx context.Context) (*ChangeTest, error) {
	samples := make([]telemetry.ChangeSample, 0, changeTestReadings)
	for i := 0; i < changeTestReadings; i++ {
		if i > 0 && s.changeInterval > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.changeInterval):
			}
		}
		doc, err := s.read(ctx, s.paths.LatestHealth)
		if err != nil {
			return nil, err
		}
		samples = append(samples, telemetry.NewChangeSample(doc, s.now()))
	}

	return &ChangeTest{
		Message:       "ESP32 data change test",
		Readings:      samples,
		ChangeSummary: telemetry.SummarizeChange(samples),
	}, nil
}

func (s *telemetryService) TestConnection(ctx context.Context) (*ConnectionTest, error) {
	paths, err := s.store.Paths(ctx, s.paths.Root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.paths.Root, err)
	}

	sample := make(map[string]telemetry.Document, len(paths))
	for _, p := range paths {
		doc, err := s.store.ReadLastValue(ctx, s.paths.Root+"/"+p)
		if err != nil {
			// logs are not last-value paths; they are listed but not sampled
			s.logger.Debug("Skipping sample", zap.String("path", p), zap.Error(err))
			continue
		}
		if doc != nil {
			sample[p] = doc
		}
	}

	return &ConnectionTest{
		Message:        "Firebase connection test",
		Connected:      true,
		Backend:        s.store.Name(),
		AvailablePaths: paths,
		SampleData:     sample,
	}, nil
}
