package domain

import (
	"fmt"
	"time"
)

// Payload is a decoded rainfall API response. The upstream schema is too
// loosely structured for typed unmarshalling, so it stays a generic JSON
// object and fields are resolved through alias lists (see package doc).
type Payload map[string]any

// Station is the canonical metadata record for one rain gauge.
type Station struct {
	ID        string  `json:"station_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Synthetic marks identifiers generated during normalization because the
	// upstream entry carried none.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Reading is one canonical measurement event: a rainfall value for a station
// at an instant. Negative values are retained as-is.
type Reading struct {
	Timestamp  time.Time `json:"timestamp"`
	StationID  string    `json:"station_id"`
	RainfallMM float64   `json:"rainfall_mm"`
}

// ErrorKind classifies recoverable per-entry normalization failures.
type ErrorKind string

const (
	ErrMalformedStation ErrorKind = "malformed_station"
	ErrMalformedReading ErrorKind = "malformed_reading"
	ErrBadTimestamp     ErrorKind = "bad_timestamp"
	ErrMissingValue     ErrorKind = "missing_value"
)

// NormalizationError records a single skipped or degraded entry. These are
// collected and returned alongside the normalized output; they never abort
// the pass.
type NormalizationError struct {
	Kind   ErrorKind
	Entry  int // index of the offending entry within its collection
	Detail string
}

func (e NormalizationError) Error() string {
	return fmt.Sprintf("%s at entry %d: %s", e.Kind, e.Entry, e.Detail)
}
