package complaint

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"nypd311/pkg/records"
)

// TimestampLayout is how timestamps are written to exports.
const TimestampLayout = "2006-01-02T15:04:05"

// ErrMissingRequired is returned by NewValid for drafts lacking a required
// field.
var ErrMissingRequired = errors.New("complaint: missing required field")

// Attributes are the nullable pass-through columns.
type Attributes struct {
	Descriptor            *string
	Status                *string
	LocationType          *string
	OpenDataChannelType   *string
	IncidentZip           *string
	CommunityBoard        *string
	ParkFacilityName      *string
	ParkBorough           *string
	ResolutionDescription *string
	Location              *string
	Borough               *string

	Latitude              *float64
	Longitude             *float64
	XCoordinateStatePlane *float64
	YCoordinateStatePlane *float64
}

func (a *Attributes) strings() map[string]**string {
	return map[string]**string{
		Descriptor:            &a.Descriptor,
		Status:                &a.Status,
		LocationType:          &a.LocationType,
		OpenDataChannelType:   &a.OpenDataChannelType,
		IncidentZip:           &a.IncidentZip,
		CommunityBoard:        &a.CommunityBoard,
		ParkFacilityName:      &a.ParkFacilityName,
		ParkBorough:           &a.ParkBorough,
		ResolutionDescription: &a.ResolutionDescription,
		Location:              &a.Location,
		Borough:               &a.Borough,
	}
}

func (a *Attributes) floats() map[string]**float64 {
	return map[string]**float64{
		Latitude:              &a.Latitude,
		Longitude:             &a.Longitude,
		XCoordinateStatePlane: &a.XCoordinateStatePlane,
		YCoordinateStatePlane: &a.YCoordinateStatePlane,
	}
}

// value returns the attribute for field, or nil when null or unknown.
func (a Attributes) value(field string) any {
	if p, ok := a.strings()[field]; ok {
		if *p == nil {
			return nil
		}
		return **p
	}
	if p, ok := a.floats()[field]; ok {
		if *p == nil {
			return nil
		}
		return **p
	}
	return nil
}

// Draft is a typed but unvalidated complaint.
type Draft struct {
	UniqueKey     string
	CreatedDate   *time.Time
	ClosedDate    *time.Time
	ComplaintType *string
	Attributes
}

// FromRecord builds a Draft from a projected, coerced record. Values of the
// wrong type are treated as null.
func FromRecord(r records.Record) Draft {
	var d Draft
	d.UniqueKey, _ = r.String(UniqueKey)
	d.CreatedDate = timeField(r, CreatedDate)
	d.ClosedDate = timeField(r, ClosedDate)
	d.ComplaintType = stringField(r, ComplaintType)
	for f, p := range d.Attributes.strings() {
		*p = stringField(r, f)
	}
	for f, p := range d.Attributes.floats() {
		*p = floatField(r, f)
	}
	return d
}

// Value returns the typed value of field, or nil when null.
func (d Draft) Value(field string) any {
	switch field {
	case UniqueKey:
		if d.UniqueKey == "" {
			return nil
		}
		return d.UniqueKey
	case CreatedDate:
		if d.CreatedDate == nil {
			return nil
		}
		return *d.CreatedDate
	case ClosedDate:
		if d.ClosedDate == nil {
			return nil
		}
		return *d.ClosedDate
	case ComplaintType:
		if d.ComplaintType == nil {
			return nil
		}
		return *d.ComplaintType
	}
	return d.Attributes.value(field)
}

// Missing reports whether field is null in d.
func (d Draft) Missing(field string) bool {
	return d.Value(field) == nil
}

// Valid is a Draft whose created_date and complaint_type are known to be
// present. Construct it with NewValid.
type Valid struct {
	draft Draft
}

// NewValid checks the base invariant and wraps d.
func NewValid(d Draft) (Valid, error) {
	for _, f := range DefaultRequired {
		if d.Missing(f) {
			return Valid{}, fmt.Errorf("%w: %s", ErrMissingRequired, f)
		}
	}
	return Valid{draft: d}, nil
}

// Draft returns the underlying draft.
func (v Valid) Draft() Draft { return v.draft }

// Derive adds the time parts computed from created_date.
func (v Valid) Derive() Row {
	d := v.draft
	created := *d.CreatedDate
	return Row{
		UniqueKey:     d.UniqueKey,
		CreatedDate:   created,
		ClosedDate:    d.ClosedDate,
		ComplaintType: *d.ComplaintType,
		Attributes:    d.Attributes,
		Year:          created.Year(),
		Month:         created.Month(),
		DayOfWeek:     created.Weekday(),
	}
}

// Row is a validated complaint with derived time parts.
type Row struct {
	UniqueKey     string
	CreatedDate   time.Time
	ClosedDate    *time.Time
	ComplaintType string
	Attributes

	Year      int
	Month     time.Month
	DayOfWeek time.Weekday
}

// Value returns the export value for column: strings, float64, int,
// formatted timestamps, or nil for null.
func (r Row) Value(column string) any {
	switch column {
	case UniqueKey:
		if r.UniqueKey == "" {
			return nil
		}
		return r.UniqueKey
	case CreatedDate:
		return r.CreatedDate.Format(TimestampLayout)
	case ClosedDate:
		if r.ClosedDate == nil {
			return nil
		}
		return r.ClosedDate.Format(TimestampLayout)
	case ComplaintType:
		return r.ComplaintType
	case Year:
		return r.Year
	case Month:
		return int(r.Month)
	case DayOfWeek:
		return r.DayOfWeek.String()
	}
	return r.Attributes.value(column)
}

// Strings renders the row for the given header; null becomes "".
func (r Row) Strings(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		switch v := r.Value(col).(type) {
		case nil:
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func stringField(r records.Record, f string) *string {
	s, ok := r.String(f)
	if !ok {
		return nil
	}
	return &s
}

func timeField(r records.Record, f string) *time.Time {
	t, ok := r[f].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func floatField(r records.Record, f string) *float64 {
	v, ok := r[f].(float64)
	if !ok {
		return nil
	}
	return &v
}
