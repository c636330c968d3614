package telemetry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRate_Boundaries(t *testing.T) {
	cases := []struct {
		bpm  float64
		want RateStatus
	}{
		{0, RateNoSignal},
		{math.NaN(), RateNoSignal},
		{-5, RateSlow},
		{59.999, RateSlow},
		{60, RateNormal},
		{100, RateNormal},
		{100.001, RateElevated},
		{140, RateElevated},
		{140.5, RateHigh},
		{250, RateHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyRate(c.bpm), "bpm=%v", c.bpm)
	}
}

func TestClassifyZone_Boundaries(t *testing.T) {
	cases := []struct {
		bpm  float64
		want RateZone
	}{
		{0, ZoneNoSignal},
		{59, ZoneResting},
		{60, ZoneNormal},
		{99.9, ZoneNormal},
		{100, ZoneLight},
		{139, ZoneLight},
		{140, ZoneModerate},
		{169.9, ZoneModerate},
		{170, ZoneIntense},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyZone(c.bpm), "bpm=%v", c.bpm)
	}
}

func TestClassifyPulse_Boundaries(t *testing.T) {
	cases := []struct {
		pulse float64
		want  SignalStrength
	}{
		{0, SignalNone},
		{1, SignalVeryWeak},
		{999, SignalVeryWeak},
		{1000, SignalWeak},
		{1999, SignalWeak},
		{2000, SignalNormal},
		{3000, SignalStrong},
		{3999, SignalStrong},
		{4000, SignalVeryStrong},
		{9000, SignalVeryStrong},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyPulse(c.pulse), "pulse=%v", c.pulse)
	}
}

func TestClassifiers_AreTotal(t *testing.T) {
	for v := -10.0; v <= 300; v += 0.25 {
		assert.NotEmpty(t, ClassifyRate(v))
		assert.NotEmpty(t, ClassifyZone(v))
		assert.NotEmpty(t, ClassifyPulse(v*20))
	}
}
