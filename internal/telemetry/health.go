package telemetry

// PulseThreshold ADC level the firmware uses for beat detection.
const PulseThreshold = 3300

// DefaultDevice reported when a snapshot does not name its device.
const DefaultDevice = "ESP32_Health_Tracker"

type HeartRateView struct {
	BPM    float64    `json:"bpm"`
	Valid  bool       `json:"valid"`
	Status RateStatus `json:"status"`
	Zone   RateZone   `json:"zone"`
}

type PulseView struct {
	Value     float64        `json:"value"`
	Threshold int            `json:"threshold"`
	Signal    SignalStrength `json:"signal"`
}

// HealthProjection public shape of the latest health snapshot.
type HealthProjection struct {
	HeartRate HeartRateView `json:"heartRate"`
	Pulse     PulseView     `json:"pulse"`
	Waveform  []any         `json:"waveform"`
	Timestamp any           `json:"timestamp,omitempty"`
	Device    string        `json:"device"`
	HealthID  any           `json:"healthId,omitempty"`
}

// ProjectHealth maps a health snapshot. valid comes only from the device's
// valid_bpm flag here; a missing flag reads as false.
func ProjectHealth(doc Document) HealthProjection {
	bpm := ResolveBPM(doc)
	pulse, _ := doc.Number("pulse_value")

	waveform := Samples(doc.Get("waveform"))
	if waveform == nil {
		waveform = []any{}
	}

	return HealthProjection{
		HeartRate: HeartRateView{
			BPM:    bpm,
			Valid:  doc.Truthy("valid_bpm"),
			Status: ClassifyRate(bpm),
			Zone:   ClassifyZone(bpm),
		},
		Pulse: PulseView{
			Value:     pulse,
			Threshold: PulseThreshold,
			Signal:    ClassifyPulse(pulse),
		},
		Waveform:  waveform,
		Timestamp: doc.Get("timestamp"),
		Device:    doc.String("device", DefaultDevice),
		HealthID:  doc.Get("health_id"),
	}
}
