// wx/metar.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"time"

	"github.com/avtools/xpwx/geo"
)

// METAR is a single raw station observation as it appears in the weather
// dump file. The report text is opaque here; decoding wind, visibility,
// and the rest of the grammar is someone else's problem.
type METAR struct {
	// Ident is the reporting station, e.g. "KJFK"; 2-5 uppercase
	// alphanumeric characters.
	Ident string
	// Raw is the full observation line.
	Raw string
	// Time is the timestamp from the date header preceding the
	// observation in the file; may be zero if the file had none.
	Time time.Time
}

// Result is the answer to a station weather query. Exactly one of
// MetarForStation and MetarForNearest is set when weather was found:
// the former when the requested station itself reported, the latter when
// only a geographically nearby station did.
type Result struct {
	RequestIdent string
	RequestPos   geo.Pos
	// MetarForStation is the raw observation for the requested station,
	// or empty.
	MetarForStation string
	// MetarForNearest is the raw observation for the closest reporting
	// station when the requested one has none, or empty.
	MetarForNearest string
	// Time is the wall-clock time the query was answered.
	Time time.Time
}

// IsEmpty reports whether the query produced no observation at all.
func (r Result) IsEmpty() bool {
	return r.MetarForStation == "" && r.MetarForNearest == ""
}
