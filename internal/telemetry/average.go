package telemetry

import "math"

const (
	// AveragePeriodMs window the average nominally covers.
	AveragePeriodMs = 10000
	maxPlausibleBPM = 220
	averageNote     = "Using current reading as average (historical data not available)"
)

type Reading struct {
	BPM       float64 `json:"bpm"`
	Timestamp any     `json:"timestamp,omitempty"`
}

// Average reports the current reading as the average over AveragePeriodMs.
// History is not consulted; ReadingsCount is always 1 for a valid result.
type Average struct {
	AverageBPM    int64          `json:"averageBPM"`
	ReadingsCount int            `json:"readingsCount"`
	TimePeriod    int            `json:"timePeriod"`
	Readings      []Reading      `json:"readings"`
	Note          string         `json:"note"`
	Debug         map[string]any `json:"debug"`
}

// AverageRejection explains why the current reading cannot stand in for an average.
type AverageRejection struct {
	CurrentBPM float64 `json:"currentBPM"`
	ValidBPM   any     `json:"valid_bpm,omitempty"`
	IsValid    bool    `json:"isValid"`
}

// ComputeAverage accepts the reading when its validity resolves true and
// 0 < bpm < 220.
func ComputeAverage(doc Document) (Average, *AverageRejection) {
	bpm := ResolveBPM(doc)
	valid := ResolveBPMValidity(doc) && bpm > 0 && bpm < maxPlausibleBPM
	if !valid {
		return Average{}, &AverageRejection{CurrentBPM: bpm, ValidBPM: doc.Get("valid_bpm"), IsValid: false}
	}

	rounded := roundHalfUp(bpm)
	return Average{
		AverageBPM:    rounded,
		ReadingsCount: 1,
		TimePeriod:    AveragePeriodMs,
		Readings:      []Reading{{BPM: bpm, Timestamp: doc.Get("timestamp")}},
		Note:          averageNote,
		Debug:         map[string]any{"rawBPM": bpm, "roundedBPM": rounded},
	}, nil
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
