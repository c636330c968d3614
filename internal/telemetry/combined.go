package telemetry

const (
	msgGPSUnavailable       = "GPS signal not available"
	msgHeartbeatUnavailable = "Heartbeat data not available"
)

// Unavailable stands in for a section the device has no usable data for.
type Unavailable struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type GPSFix struct {
	Latitude  any  `json:"latitude"`
	Longitude any  `json:"longitude"`
	Valid     bool `json:"valid"`
	Timestamp any  `json:"timestamp,omitempty"`
}

type HeartbeatView struct {
	BPM        float64    `json:"bpm"`
	Valid      bool       `json:"valid"`
	Status     RateStatus `json:"status"`
	Zone       RateZone   `json:"zone"`
	PulseValue float64    `json:"pulseValue"`
	Waveform   []any      `json:"waveform"`
}

type SystemView struct {
	Wifi      bool   `json:"wifi"`
	Firebase  bool   `json:"firebase"`
	Device    string `json:"device"`
	Timestamp any    `json:"timestamp,omitempty"`
}

// Combined joins status and health. GPS and Heartbeat hold either their
// data view or an Unavailable.
type Combined struct {
	GPS       any        `json:"gps"`
	Heartbeat any        `json:"heartbeat"`
	System    SystemView `json:"system"`
}

// BuildCombined requires a status snapshot; health may be nil. Coordinates
// are only emitted when the device flags the fix as valid.
func BuildCombined(status, health Document) Combined {
	out := Combined{
		GPS:       Unavailable{Valid: false, Message: msgGPSUnavailable},
		Heartbeat: Unavailable{Valid: false, Message: msgHeartbeatUnavailable},
		System: SystemView{
			Wifi:      status.Truthy("wifi_connected"),
			Firebase:  status.Truthy("firebase_ready"),
			Device:    status.String("device", DefaultDevice),
			Timestamp: status.Get("timestamp"),
		},
	}

	if status.Truthy("gps_valid") {
		out.GPS = GPSFix{
			Latitude:  status.Get("latitude"),
			Longitude: status.Get("longitude"),
			Valid:     true,
			Timestamp: status.Get("timestamp"),
		}
	}

	if health != nil {
		h := ProjectHealth(health)
		out.Heartbeat = HeartbeatView{
			BPM:        h.HeartRate.BPM,
			Valid:      h.HeartRate.Valid,
			Status:     h.HeartRate.Status,
			Zone:       h.HeartRate.Zone,
			PulseValue: h.Pulse.Value,
			Waveform:   h.Waveform,
		}
	}
	return out
}
