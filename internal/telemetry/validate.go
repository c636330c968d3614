package telemetry

import "fmt"

// RangeRule inclusive numeric bounds check.
type RangeRule struct {
	Min  float64
	Max  float64
	Unit string
}

func (r RangeRule) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r RangeRule) String() string {
	if r.Unit == "" {
		return fmt.Sprintf("%g-%g", r.Min, r.Max)
	}
	return fmt.Sprintf("%g-%g %s", r.Min, r.Max, r.Unit)
}

var (
	pulseRange = RangeRule{Min: 500, Max: 8000}
	bpmRange   = RangeRule{Min: 30, Max: 220, Unit: "BPM"}
)

// MinWaveformSamples samples needed before a waveform counts as usable.
const MinWaveformSamples = 10

// RangeCriterion result of one bounds check. Value is nil when the field
// was missing or not numeric.
type RangeCriterion struct {
	Valid bool     `json:"valid"`
	Value *float64 `json:"value"`
	Range string   `json:"range"`
}

// LengthCriterion result of the waveform sample count check.
type LengthCriterion struct {
	Valid    bool `json:"valid"`
	Length   int  `json:"length"`
	Required int  `json:"required"`
}

// ValidationReport per-criterion verdicts for one health snapshot.
type ValidationReport struct {
	PulseValue    RangeCriterion  `json:"pulseValue"`
	HeartRate     RangeCriterion  `json:"heartRate"`
	Waveform      LengthCriterion `json:"waveform"`
	SignalQuality RangeCriterion  `json:"signalQuality"`
}

// Valid is true only when every criterion passed.
func (r ValidationReport) Valid() bool {
	return r.PulseValue.Valid && r.HeartRate.Valid && r.Waveform.Valid && r.SignalQuality.Valid
}

// Failed names the criteria that did not pass, in report order.
func (r ValidationReport) Failed() []string {
	var out []string
	if !r.PulseValue.Valid {
		out = append(out, "pulseValue")
	}
	if !r.HeartRate.Valid {
		out = append(out, "heartRate")
	}
	if !r.Waveform.Valid {
		out = append(out, "waveform")
	}
	if !r.SignalQuality.Valid {
		out = append(out, "signalQuality")
	}
	return out
}

// Validate checks whether a health snapshot is a plausible, sufficiently
// sampled reading. Heart rate also requires the device's own valid_bpm flag.
func Validate(doc Document) ValidationReport {
	pulse, pulseOK := doc.Number("pulse_value")

	bpm, _, bpmOK := resolveBPM(doc)

	samples := Samples(doc.Get("waveform"))

	return ValidationReport{
		PulseValue:    checkRange(pulseRange, pulse, pulseOK),
		HeartRate:     checkHeartRate(bpm, bpmOK, doc.Truthy("valid_bpm")),
		Waveform:      checkLength(len(samples), MinWaveformSamples),
		SignalQuality: checkRange(pulseRange, pulse, pulseOK),
	}
}

func checkRange(rule RangeRule, v float64, ok bool) RangeCriterion {
	c := RangeCriterion{Range: rule.String()}
	if !ok {
		return c
	}
	c.Value = &v
	c.Valid = rule.Contains(v)
	return c
}

func checkHeartRate(bpm float64, ok bool, deviceValid bool) RangeCriterion {
	c := checkRange(bpmRange, bpm, ok)
	c.Valid = c.Valid && deviceValid
	return c
}

func checkLength(n, required int) LengthCriterion {
	return LengthCriterion{Valid: n >= required, Length: n, Required: required}
}
