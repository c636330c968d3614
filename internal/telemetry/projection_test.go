package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStatus_EmptyStoreIsOffline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := ProjectStatus(nil, now)

	assert.Equal(t, Status{Wifi: false, GPS: false, Heartbeat: false, LastUpdate: "2025-03-01T12:00:00.000Z"}, s)
	_, err := time.Parse(time.RFC3339, s.LastUpdate)
	assert.NoError(t, err)
}

func TestProjectStatus_FromSnapshot(t *testing.T) {
	now := time.Now()
	doc := Document{"wifi_connected": true, "gps_valid": false, "bpm_valid": true, "timestamp": 1700000000123.0}

	s := ProjectStatus(doc, now)
	assert.True(t, s.Wifi)
	assert.False(t, s.GPS)
	assert.True(t, s.Heartbeat)
	assert.Equal(t, "2023-11-14T22:13:20.123Z", s.LastUpdate)
}

func TestProjectStatus_HeartbeatFallsBackToValidBPM(t *testing.T) {
	now := time.Now()
	assert.True(t, ProjectStatus(Document{"valid_bpm": true}, now).Heartbeat)
	assert.False(t, ProjectStatus(Document{"bpm_valid": false, "valid_bpm": true}, now).Heartbeat)
}

func TestProjectStatus_ImplausibleTimestamps(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, ts := range []float64{1e16, -1e16, 1e300} {
		s := ProjectStatus(Document{"wifi_connected": true, "timestamp": ts}, now)
		assert.Equal(t, OfflineStatus(now), s, "timestamp %g", ts)
	}

	// representable by a JS Date but past year 9999
	s := ProjectStatus(Document{"wifi_connected": true, "timestamp": 1e15}, now)
	assert.True(t, s.Wifi)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", s.LastUpdate)
	_, err := time.Parse(time.RFC3339, s.LastUpdate)
	assert.NoError(t, err)

	_, ok := ParseTimestamp(-8.64e15)
	assert.False(t, ok)
	parsed, ok := ParseTimestamp(253402300799000.0)
	require.True(t, ok)
	assert.Equal(t, 9999, parsed.UTC().Year())
}

func TestProjectHealth_Defaults(t *testing.T) {
	h := ProjectHealth(Document{"bpm": 72.0, "pulse_value": 3300.0, "health_id": "h-1"})

	assert.Equal(t, 72.0, h.HeartRate.BPM)
	assert.False(t, h.HeartRate.Valid)
	assert.Equal(t, RateNormal, h.HeartRate.Status)
	assert.Equal(t, ZoneNormal, h.HeartRate.Zone)
	assert.Equal(t, PulseThreshold, h.Pulse.Threshold)
	assert.Equal(t, SignalStrong, h.Pulse.Signal)
	assert.Equal(t, DefaultDevice, h.Device)
	assert.Equal(t, "h-1", h.HealthID)
	assert.NotNil(t, h.Waveform)
}

func TestProjectHealth_IsIdempotent(t *testing.T) {
	doc := Document{"bpm": 91.0, "valid_bpm": true, "pulse_value": 2500.0, "waveform": []any{1.0, 2.0}, "timestamp": 1.0}
	a, err := json.Marshal(ProjectHealth(doc))
	require.NoError(t, err)
	b, err := json.Marshal(ProjectHealth(doc))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestBuildCombined_InvalidGPSHidesCoordinates(t *testing.T) {
	status := Document{"gps_valid": false, "latitude": 6.9271, "longitude": 79.8612, "wifi_connected": true}
	c := BuildCombined(status, nil)

	assert.Equal(t, Unavailable{Valid: false, Message: "GPS signal not available"}, c.GPS)
	assert.Equal(t, Unavailable{Valid: false, Message: "Heartbeat data not available"}, c.Heartbeat)
	assert.True(t, c.System.Wifi)
	assert.Equal(t, DefaultDevice, c.System.Device)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "latitude")
}

func TestBuildCombined_ValidFixAndHealth(t *testing.T) {
	status := Document{"gps_valid": true, "latitude": 0.0, "longitude": 79.8612, "timestamp": 5.0, "device": "tracker-2"}
	health := Document{"bpm": 150.0, "valid_bpm": true, "pulse_value": 4100.0, "waveform": []any{1.0}}

	c := BuildCombined(status, health)
	fix, ok := c.GPS.(GPSFix)
	require.True(t, ok)
	assert.Equal(t, 0.0, fix.Latitude)
	assert.True(t, fix.Valid)

	hb, ok := c.Heartbeat.(HeartbeatView)
	require.True(t, ok)
	assert.Equal(t, RateHigh, hb.Status)
	assert.Equal(t, ZoneModerate, hb.Zone)
	assert.Equal(t, 4100.0, hb.PulseValue)
	assert.Equal(t, "tracker-2", c.System.Device)
}

func TestComputeAverage(t *testing.T) {
	avg, rej := ComputeAverage(Document{"heartRate": map[string]any{"bpm": 72.5}, "timestamp": 9.0})
	require.Nil(t, rej)
	assert.Equal(t, int64(73), avg.AverageBPM)
	assert.Equal(t, 1, avg.ReadingsCount)
	assert.Equal(t, 10000, avg.TimePeriod)
	require.Len(t, avg.Readings, 1)
	assert.Equal(t, 72.5, avg.Readings[0].BPM)

	_, rej = ComputeAverage(Document{"bpm": 220.0})
	require.NotNil(t, rej)
	assert.Equal(t, 220.0, rej.CurrentBPM)

	_, rej = ComputeAverage(Document{"bpm": 80.0, "valid_bpm": false})
	require.NotNil(t, rej)
}

func TestSummarizeChange(t *testing.T) {
	now := time.Now()
	static := []ChangeSample{
		NewChangeSample(Document{"bpm": 70.0}, now),
		NewChangeSample(Document{"bpm": 70.0}, now),
		NewChangeSample(nil, now),
	}
	s := SummarizeChange(static)
	assert.False(t, s.IsChanging)
	assert.Equal(t, []any{70.0, 70.0}, s.BPMValues)
	assert.Equal(t, "Data is static (same value)", s.Conclusion)

	moving := append(static, NewChangeSample(Document{"bpm": 71.0}, now))
	s = SummarizeChange(moving)
	assert.True(t, s.IsChanging)
	assert.Equal(t, []any{70.0, 71.0}, s.UniqueBPMs)
}

func TestFlattenEntries(t *testing.T) {
	rows := FlattenEntries([]Entry{{Key: "a", Doc: Document{"lat": 1.0}}, {Key: "b", Doc: Document{"lat": 2.0}}})
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["id"])
	assert.Equal(t, 2.0, rows[1]["lat"])
}
