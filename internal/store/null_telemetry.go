package store

import (
	"context"

	"safetrack/internal/telemetry"
)

// NullTelemetryStore is used when no telemetry backend is configured or
// reachable: every path reads as never written.
type NullTelemetryStore struct{}

var _ TelemetryStore = NullTelemetryStore{}

func (NullTelemetryStore) Name() string { return "null" }

func (NullTelemetryStore) Ping(context.Context) error { return nil }

func (NullTelemetryStore) ReadLastValue(context.Context, string) (telemetry.Document, error) {
	return nil, nil
}

func (NullTelemetryStore) ReadLastN(context.Context, string, int) ([]telemetry.Entry, error) {
	return nil, nil
}

func (NullTelemetryStore) Paths(context.Context, string) ([]string, error) {
	return []string{}, nil
}
