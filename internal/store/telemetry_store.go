package store

import (
	"context"
	"errors"

	"safetrack/internal/telemetry"
)

// ErrMiss is returned by lower-level lookups; TelemetryStore methods
// translate it to a nil result.
var ErrMiss = errors.New("telemetry path not found")

// TelemetryStore read side of the path-addressed telemetry store.
// A path that was never written is not an error: ReadLastValue returns
// (nil, nil) and ReadLastN returns (nil, nil).
type TelemetryStore interface {
	ReadLastValue(ctx context.Context, path string) (telemetry.Document, error)
	ReadLastN(ctx context.Context, path string, n int) ([]telemetry.Entry, error)
	// Paths lists the direct children of root.
	Paths(ctx context.Context, root string) ([]string, error)
	Ping(ctx context.Context) error
	Name() string
}

// TelemetryWriter write side, used by the device bridge.
type TelemetryWriter interface {
	WriteLastValue(ctx context.Context, path string, doc telemetry.Document) error
	Append(ctx context.Context, path string, doc telemetry.Document) (string, error)
}
