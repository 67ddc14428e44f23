// Package records defines the loosely typed record that flows between the
// parser and the transformer chain.
package records

// Record is a single sparse row keyed by field name. Values start out as the
// strings decoded from the remote response; transformers may replace them with
// typed values (time.Time, float64) or remove them. A missing key and a nil
// value both mean "null".
type Record map[string]any

// String returns the value for key when it is a non-empty string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Present reports whether key holds a non-nil, non-empty value.
func (r Record) Present(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
