package telemetry

// Firmware revisions have published heart rate under several names. The
// order below decides which one wins when a snapshot carries more than one.
var bpmFields = []fieldPath{
	{"bpm"},
	{"heartRate", "bpm"},
	{"heart_rate"},
	{"heartbeat"},
	{"BPM"},
	{"HeartRate"},
}

var validityFields = []fieldPath{
	{"valid_bpm"},
	{"validBPM"},
	{"heartRate", "valid"},
}

type fieldPath []string

func (p fieldPath) String() string {
	s := p[0]
	for _, part := range p[1:] {
		s += "." + part
	}
	return s
}

// lookup walks p; a key written as JSON null still counts as present.
func (p fieldPath) lookup(doc Document) (any, bool) {
	cur := doc
	for i, key := range p {
		if i == len(p)-1 {
			if !cur.Has(key) {
				return nil, false
			}
			return cur[key], true
		}
		next, ok := cur.Object(key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// ResolveBPM returns the heart rate from the first populated field name, or 0.
func ResolveBPM(doc Document) float64 {
	bpm, _ := ResolveBPMField(doc)
	return bpm
}

// ResolveBPMField is ResolveBPM plus the dotted name of the field that won
// ("" when none was present).
func ResolveBPMField(doc Document) (float64, string) {
	n, field, _ := resolveBPM(doc)
	return n, field
}

// resolveBPM also reports whether the winning field held a number.
func resolveBPM(doc Document) (float64, string, bool) {
	for _, p := range bpmFields {
		if v, ok := p.lookup(doc); ok {
			n, numeric := toNumber(v)
			return n, p.String(), numeric && v != nil
		}
	}
	return 0, "", false
}

// ResolveBPMValidity returns the first validity flag present. With no flag
// at all the reading is assumed valid.
func ResolveBPMValidity(doc Document) bool {
	for _, p := range validityFields {
		if v, ok := p.lookup(doc); ok {
			return truthy(v)
		}
	}
	return true
}

// BPMCandidates exposes every known heart rate field for diagnostics.
func BPMCandidates(doc Document) map[string]any {
	out := map[string]any{
		"bpm":        doc.Get("bpm"),
		"heartRate":  doc.Get("heartRate"),
		"heart_rate": doc.Get("heart_rate"),
		"heartbeat":  doc.Get("heartbeat"),
		"BPM":        doc.Get("BPM"),
		"HeartRate":  doc.Get("HeartRate"),
	}
	return out
}
