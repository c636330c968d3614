package telemetry

import (
	"fmt"
	"time"
)

// FlattenEntries turns log entries into [{id, ...fields}] in store order.
func FlattenEntries(entries []Entry) []Document {
	out := make([]Document, 0, len(entries))
	for _, e := range entries {
		row := make(Document, len(e.Doc)+1)
		for k, v := range e.Doc {
			row[k] = v
		}
		row["id"] = e.Key
		out = append(out, row)
	}
	return out
}

// EntryKeys ids of entries, in order.
func EntryKeys(entries []Entry) []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// EntryMap keyed view of a log, matching how the realtime database returns it.
func EntryMap(entries []Entry) map[string]Document {
	if entries == nil {
		return nil
	}
	out := make(map[string]Document, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Doc
	}
	return out
}

// ChangeSample one read taken while probing whether the device is still publishing.
type ChangeSample struct {
	Timestamp string   `json:"timestamp"`
	Data      Document `json:"data"`
	BPM       any      `json:"bpm"`
}

// NewChangeSample records doc as read at t; a missing or zero bpm is "N/A".
func NewChangeSample(doc Document, t time.Time) ChangeSample {
	s := ChangeSample{Timestamp: FormatISO(t), Data: doc, BPM: "N/A"}
	if bpm := ResolveBPM(doc); bpm != 0 {
		s.BPM = bpm
	}
	return s
}

type ChangeSummary struct {
	BPMValues  []any  `json:"bpmValues"`
	UniqueBPMs []any  `json:"uniqueBPMs"`
	IsChanging bool   `json:"isChanging"`
	Conclusion string `json:"conclusion"`
}

// SummarizeChange reports whether the bpm moved across samples.
func SummarizeChange(samples []ChangeSample) ChangeSummary {
	values := []any{}
	unique := []any{}
	seen := map[string]bool{}
	for _, s := range samples {
		if s.BPM == "N/A" {
			continue
		}
		values = append(values, s.BPM)
		key := fmt.Sprint(s.BPM)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, s.BPM)
		}
	}

	sum := ChangeSummary{BPMValues: values, UniqueBPMs: unique, IsChanging: len(unique) > 1}
	if sum.IsChanging {
		sum.Conclusion = "Data is changing"
	} else {
		sum.Conclusion = "Data is static (same value)"
	}
	return sum
}
