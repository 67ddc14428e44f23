package builtin

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"nypd311/pkg/records"
)

// Coerce type names.
const (
	TypeTimestamp = "timestamp"
	TypeFloat     = "float"
	TypeInt       = "int"
	TypeBool      = "bool"
	TypeString    = "string"
)

// DefaultLayouts are the timestamp layouts tried in order. Socrata emits
// floating timestamps with millisecond precision and no zone.
var DefaultLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339Nano,
}

// Coerce converts string fields to typed values. A value that fails to parse
// becomes nil; fields already holding a non-string value are left alone.
type Coerce struct {
	Types   map[string]string // field -> TypeTimestamp, TypeFloat, TypeInt, TypeBool, TypeString
	Layouts []string          // timestamp layouts; DefaultLayouts when empty
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			r[field] = coerceValue(strings.TrimSpace(s), typ, layouts)
		}
	}
	return in
}

func coerceValue(s, typ string, layouts []string) any {
	switch typ {
	case TypeTimestamp:
		if t, ok := ParseTimestamp(s, layouts); ok {
			return t
		}
		return nil
	case TypeFloat:
		f, err := cast.ToFloat64E(s)
		if err != nil || s == "" || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case TypeInt:
		i, err := cast.ToIntE(s)
		if err != nil || s == "" {
			return nil
		}
		return i
	case TypeBool:
		b, err := cast.ToBoolE(s)
		if err != nil || s == "" {
			return nil
		}
		return b
	default:
		return s
	}
}

// ParseTimestamp tries each layout in order. Zone-less layouts parse as UTC.
func ParseTimestamp(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
