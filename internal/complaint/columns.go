// Package complaint defines the typed complaint model and its canonical
// column set.
//
// A record moves through three types: Draft (typed but unvalidated, any field
// may be null), Valid (created_date and complaint_type guaranteed) and Row
// (Valid plus the derived time parts). Only Valid can produce a Row.
package complaint

// Field names as they appear in the remote dataset and in exports.
const (
	UniqueKey             = "unique_key"
	CreatedDate           = "created_date"
	ClosedDate            = "closed_date"
	ComplaintType         = "complaint_type"
	Descriptor            = "descriptor"
	Status                = "status"
	LocationType          = "location_type"
	OpenDataChannelType   = "open_data_channel_type"
	IncidentZip           = "incident_zip"
	CommunityBoard        = "community_board"
	ParkFacilityName      = "park_facility_name"
	ParkBorough           = "park_borough"
	ResolutionDescription = "resolution_description"
	Location              = "location"
	Borough               = "borough"

	Latitude              = "latitude"
	Longitude             = "longitude"
	XCoordinateStatePlane = "x_coordinate_state_plane"
	YCoordinateStatePlane = "y_coordinate_state_plane"

	Year      = "year"
	Month     = "month"
	DayOfWeek = "day_of_week"
)

// UnknownLocationType fills a null location_type.
const UnknownLocationType = "Unknown"

var baseColumns = []string{
	UniqueKey,
	CreatedDate,
	ClosedDate,
	ComplaintType,
	Descriptor,
	Status,
	LocationType,
	OpenDataChannelType,
	IncidentZip,
	CommunityBoard,
	ParkFacilityName,
	ParkBorough,
	ResolutionDescription,
	Location,
	Borough,
}

var coordinateColumns = []string{
	Latitude,
	Longitude,
	XCoordinateStatePlane,
	YCoordinateStatePlane,
}

var derivedColumns = []string{Year, Month, DayOfWeek}

// DefaultRequired are the fields every retained row must carry.
var DefaultRequired = []string{CreatedDate, ComplaintType}

// Columns describes which optional column groups are part of a run.
type Columns struct {
	Coordinates bool
}

// KeepList returns the raw fields retained by projection.
func (c Columns) KeepList() []string {
	out := make([]string, 0, len(baseColumns)+len(coordinateColumns))
	out = append(out, baseColumns...)
	if c.Coordinates {
		out = append(out, coordinateColumns...)
	}
	return out
}

// Header returns the canonical export header: the keep-list followed by the
// derived time parts.
func (c Columns) Header() []string {
	return append(c.KeepList(), derivedColumns...)
}

// Known reports whether field is a column of the model, in any group.
func Known(field string) bool {
	for _, group := range [][]string{baseColumns, coordinateColumns, derivedColumns} {
		for _, f := range group {
			if f == field {
				return true
			}
		}
	}
	return false
}
