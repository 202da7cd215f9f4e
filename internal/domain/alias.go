package domain

import (
	"strconv"
	"time"
)

// Alias lists in resolution priority order. The order is load-bearing: the
// first present alias wins, so reordering changes which upstream field is
// trusted when several coexist.
var (
	stationIDAliases    = []string{"id", "stationId", "station_id", "deviceId"}
	locationAliases     = []string{"labelLocation", "location", "coordinates"}
	latitudeAliases     = []string{"latitude", "lat"}
	longitudeAliases    = []string{"longitude", "lng", "lon"}
	timestampAliases    = []string{"timestamp", "time"}
	valueListAliases    = []string{"data", "readings"}
	valueStationAliases = []string{"stationId", "station_id", "id"}
	rainfallAliases     = []string{"value", "rainfall"}
)

// firstValue returns the value under the first alias present in obj.
// Presence means the key exists, even if its value is zero or empty; only a
// nil value is treated as absent.
func firstValue(obj map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// firstString resolves a string-valued field. Numeric values are accepted and
// formatted, since some API revisions emit station ids as bare numbers.
func firstString(obj map[string]any, aliases []string) (string, bool) {
	v, ok := firstValue(obj, aliases)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}

// firstFloat resolves a numeric field. JSON numbers decode as float64;
// string-encoded numbers are parsed for tolerance.
func firstFloat(obj map[string]any, aliases []string) (float64, bool) {
	v, ok := firstValue(obj, aliases)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// firstObject resolves a nested JSON object, e.g. a station's location block.
func firstObject(obj map[string]any, aliases []string) (map[string]any, bool) {
	v, ok := firstValue(obj, aliases)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// firstSlice resolves a nested JSON array, e.g. a reading bucket's values.
func firstSlice(obj map[string]any, aliases []string) ([]any, bool) {
	v, ok := firstValue(obj, aliases)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// timestampLayouts are tried in order. Zone-less layouts parse to UTC, which
// keeps the timestamp at face value without any conversion.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses an ISO-8601-like timestamp string. The instant is
// taken at face value from the source; no timezone conversion is performed.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
