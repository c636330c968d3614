package telemetry

import "math"

// RateStatus coarse heart rate label shown on the dashboard
type RateStatus string

const (
	RateNoSignal RateStatus = "No Signal"
	RateSlow     RateStatus = "Slow"
	RateNormal   RateStatus = "Normal"
	RateElevated RateStatus = "Elevated"
	RateHigh     RateStatus = "High"
)

// RateZone exercise zone for a heart rate
type RateZone string

const (
	ZoneNoSignal RateZone = "No Signal"
	ZoneResting  RateZone = "Resting"
	ZoneNormal   RateZone = "Normal"
	ZoneLight    RateZone = "Light Exercise"
	ZoneModerate RateZone = "Moderate Exercise"
	ZoneIntense  RateZone = "Intense Exercise"
)

// SignalStrength label for a raw PPG ADC reading
type SignalStrength string

const (
	SignalNone       SignalStrength = "No Signal"
	SignalVeryWeak   SignalStrength = "Very Weak"
	SignalWeak       SignalStrength = "Weak"
	SignalNormal     SignalStrength = "Normal"
	SignalStrong     SignalStrength = "Strong"
	SignalVeryStrong SignalStrength = "Very Strong"
)

// Calibration constants for the tracker's sensor.
const (
	slowBelow      = 60
	normalUpTo     = 100
	elevatedUpTo   = 140
	moderateBelow  = 170
	veryWeakBelow  = 1000
	weakBelow      = 2000
	pulseNormBelow = 3000
	strongBelow    = 4000
)

func absent(v float64) bool {
	return v == 0 || math.IsNaN(v)
}

// ClassifyRate buckets bpm. 0 means no reading.
func ClassifyRate(bpm float64) RateStatus {
	switch {
	case absent(bpm):
		return RateNoSignal
	case bpm < slowBelow:
		return RateSlow
	case bpm <= normalUpTo:
		return RateNormal
	case bpm <= elevatedUpTo:
		return RateElevated
	default:
		return RateHigh
	}
}

// ClassifyZone buckets bpm into an exercise zone. 0 means no reading.
func ClassifyZone(bpm float64) RateZone {
	switch {
	case absent(bpm):
		return ZoneNoSignal
	case bpm < slowBelow:
		return ZoneResting
	case bpm < normalUpTo:
		return ZoneNormal
	case bpm < elevatedUpTo:
		return ZoneLight
	case bpm < moderateBelow:
		return ZoneModerate
	default:
		return ZoneIntense
	}
}

// ClassifyPulse buckets a raw pulse reading. A reading of exactly 0 is
// reported as no signal.
func ClassifyPulse(pulse float64) SignalStrength {
	switch {
	case absent(pulse):
		return SignalNone
	case pulse < veryWeakBelow:
		return SignalVeryWeak
	case pulse < weakBelow:
		return SignalWeak
	case pulse < pulseNormBelow:
		return SignalNormal
	case pulse < strongBelow:
		return SignalStrong
	default:
		return SignalVeryStrong
	}
}
