package telemetry

import (
	"math"
	"time"
)

// ISOMillis renders times the way the dashboard expects: UTC, millisecond precision.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

// maxDateMillis bounds epoch milliseconds a JavaScript Date can represent.
const maxDateMillis = 8.64e15

// Status liveness summary of the device.
type Status struct {
	Wifi       bool   `json:"wifi"`
	GPS        bool   `json:"gps"`
	Heartbeat  bool   `json:"heartbeat"`
	LastUpdate string `json:"lastUpdate"`
}

// OfflineStatus is reported when nothing is known about the device.
func OfflineStatus(now time.Time) Status {
	return Status{LastUpdate: FormatISO(now)}
}

// ProjectStatus never fails: a nil snapshot yields OfflineStatus.
func ProjectStatus(doc Document, now time.Time) Status {
	if doc == nil {
		return OfflineStatus(now)
	}

	heartbeat := doc.Truthy("bpm_valid")
	if !doc.Has("bpm_valid") {
		heartbeat = doc.Truthy("valid_bpm")
	}

	last := now
	raw := doc.Get("timestamp")
	if ts, ok := ParseTimestamp(raw); ok {
		last = ts
	} else if beyondDateRange(raw) {
		// not a date at all; same answer as an unreadable snapshot
		return OfflineStatus(now)
	}

	return Status{
		Wifi:       doc.Truthy("wifi_connected"),
		GPS:        doc.Truthy("gps_valid"),
		Heartbeat:  heartbeat,
		LastUpdate: FormatISO(last),
	}
}

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// ParseTimestamp accepts epoch milliseconds or an RFC 3339 string.
// Zero, empty and unparseable values are rejected, as is anything outside
// years 0..9999, which ISO-8601 cannot render in its basic form.
func ParseTimestamp(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
	}
	ms, ok := toNumber(v)
	if !ok || ms == 0 || math.IsNaN(ms) || math.Abs(ms) > maxDateMillis {
		return time.Time{}, false
	}
	t := time.UnixMilli(int64(ms))
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func beyondDateRange(v any) bool {
	ms, ok := toNumber(v)
	return ok && (math.IsNaN(ms) || math.Abs(ms) > maxDateMillis)
}
