// Package telemetry turns raw tracker snapshots into the public API shapes.
// Everything here is pure: no I/O, no clock reads except where a "now" is passed in.
package telemetry

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Document is one decoded JSON object as the device wrote it.
type Document map[string]any

// Entry is one element of an append log, keyed by its store-assigned id.
type Entry struct {
	Key string
	Doc Document
}

// Has reports whether key was written, even as JSON null.
func (d Document) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d[key]
	return ok
}

// Get returns d[key] (nil for a nil document).
func (d Document) Get(key string) any {
	if d == nil {
		return nil
	}
	return d[key]
}

// Object returns d[key] as a nested document when it is one.
func (d Document) Object(key string) (Document, bool) {
	switch v := d.Get(key).(type) {
	case map[string]any:
		return Document(v), true
	case Document:
		return v, true
	}
	return nil, false
}

// Number coerces d[key] to a float64; ok is false when absent or not numeric.
func (d Document) Number(key string) (float64, bool) {
	return toNumber(d.Get(key))
}

// Truthy applies the device firmware's loose boolean convention to d[key].
func (d Document) Truthy(key string) bool {
	return truthy(d.Get(key))
}

// String returns d[key] when it is a non-empty string, else def.
func (d Document) String(key, def string) string {
	if s, ok := d.Get(key).(string); ok && s != "" {
		return s
	}
	return def
}

// Keys returns the top-level field names, sorted.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case float64:
		return b != 0 && !math.IsNaN(b)
	case float32:
		return b != 0
	case int:
		return b != 0
	case int64:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		return err == nil && f != 0
	}
	return true
}

// Samples normalizes a waveform field. Firebase may hand back arrays as
// objects keyed "0","1",...; those are returned in index order.
func Samples(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []float64:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	case map[string]any:
		idx := make([]int, 0, len(s))
		for k := range s {
			if i, err := strconv.Atoi(k); err == nil {
				idx = append(idx, i)
			}
		}
		sort.Ints(idx)
		out := make([]any, 0, len(idx))
		for _, i := range idx {
			out = append(out, s[strconv.Itoa(i)])
		}
		return out
	}
	return nil
}
