package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = float64(3000 + i)
	}
	return out
}

func TestValidate_AllCriteriaPass(t *testing.T) {
	r := Validate(Document{"pulse_value": 3300.0, "bpm": 75.0, "valid_bpm": true, "waveform": samples(30)})

	assert.True(t, r.Valid())
	assert.True(t, r.PulseValue.Valid)
	assert.True(t, r.HeartRate.Valid)
	assert.True(t, r.Waveform.Valid)
	assert.True(t, r.SignalQuality.Valid)
	assert.Empty(t, r.Failed())
	assert.Equal(t, 30, r.Waveform.Length)
	assert.Equal(t, 10, r.Waveform.Required)
	assert.Equal(t, "500-8000", r.PulseValue.Range)
	assert.Equal(t, "30-220 BPM", r.HeartRate.Range)
}

func TestValidate_WeakPulseFailsBothSignalCriteria(t *testing.T) {
	r := Validate(Document{"pulse_value": 100.0, "bpm": 75.0, "valid_bpm": true, "waveform": samples(30)})

	assert.False(t, r.Valid())
	assert.False(t, r.PulseValue.Valid)
	assert.False(t, r.SignalQuality.Valid)
	assert.True(t, r.HeartRate.Valid)
	assert.True(t, r.Waveform.Valid)
	assert.Equal(t, []string{"pulseValue", "signalQuality"}, r.Failed())
	require.NotNil(t, r.PulseValue.Value)
	assert.Equal(t, 100.0, *r.PulseValue.Value)
}

func TestValidate_HeartRateNeedsDeviceFlag(t *testing.T) {
	r := Validate(Document{"pulse_value": 3300.0, "bpm": 75.0, "waveform": samples(10)})
	assert.False(t, r.HeartRate.Valid)
	assert.True(t, r.Waveform.Valid, "exactly 10 samples is enough")

	r = Validate(Document{"pulse_value": 3300.0, "bpm": 221.0, "valid_bpm": true, "waveform": samples(10)})
	assert.False(t, r.HeartRate.Valid)
}

func TestValidate_EmptySnapshot(t *testing.T) {
	r := Validate(Document{})

	assert.False(t, r.Valid())
	assert.Nil(t, r.PulseValue.Value)
	assert.Nil(t, r.HeartRate.Value)
	assert.Equal(t, 0, r.Waveform.Length)
	assert.Len(t, r.Failed(), 4)
}
