package domain

import "fmt"

// Normalize extracts canonical station and reading records from a raw API
// payload, tolerating the field-name variance described in the package doc.
//
// Malformed individual entries are skipped and reported in the returned
// error list; they never abort the rest of the pass. A payload without a
// usable data container yields empty output, not an error — that is the
// designed "no data available" outcome.
func Normalize(p Payload) ([]Station, []Reading, []NormalizationError) {
	data, ok := p["data"].(map[string]any)
	if !ok {
		return nil, nil, nil
	}

	var errs []NormalizationError
	stations := extractStations(data, &errs)
	readings := extractReadings(data, &errs)
	return stations, readings, errs
}

// extractStations resolves each station entry through the alias lists.
// Duplicate ids within one payload overwrite earlier entries (last write
// wins); upstream lists each station once per fetch, so a duplicate means a
// corrected entry later in the payload.
func extractStations(data map[string]any, errs *[]NormalizationError) []Station {
	raw, _ := data["stations"].([]any)
	if len(raw) == 0 {
		return nil
	}

	stations := make([]Station, 0, len(raw))
	index := make(map[string]int, len(raw))

	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			*errs = append(*errs, NormalizationError{
				Kind:   ErrMalformedStation,
				Entry:  i,
				Detail: fmt.Sprintf("station entry is %T, not an object", entry),
			})
			continue
		}

		st := Station{}
		st.ID, ok = firstString(obj, stationIDAliases)
		if !ok {
			// Index-based so the same payload always yields the same ids.
			st.ID = fmt.Sprintf("unknown-%d", i)
			st.Synthetic = true
		}

		if name, ok := firstString(obj, []string{"name"}); ok {
			st.Name = name
		} else {
			st.Name = "Station_" + st.ID
		}

		if loc, ok := firstObject(obj, locationAliases); ok {
			st.Latitude, _ = firstFloat(loc, latitudeAliases)
			st.Longitude, _ = firstFloat(loc, longitudeAliases)
		}

		if at, seen := index[st.ID]; seen {
			stations[at] = st
			continue
		}
		index[st.ID] = len(stations)
		stations = append(stations, st)
	}
	return stations
}

// extractReadings walks the time-bucketed reading entries. Each bucket's
// timestamp is parsed once; each nested value resolves its station id and
// rainfall value through the alias lists.
func extractReadings(data map[string]any, errs *[]NormalizationError) []Reading {
	raw, _ := data["readings"].([]any)
	if len(raw) == 0 {
		return nil
	}

	var readings []Reading
	for i, entry := range raw {
		bucket, ok := entry.(map[string]any)
		if !ok {
			*errs = append(*errs, NormalizationError{
				Kind:   ErrMalformedReading,
				Entry:  i,
				Detail: fmt.Sprintf("reading entry is %T, not an object", entry),
			})
			continue
		}

		tsRaw, ok := firstString(bucket, timestampAliases)
		if !ok {
			*errs = append(*errs, NormalizationError{
				Kind:   ErrBadTimestamp,
				Entry:  i,
				Detail: "reading entry has no timestamp",
			})
			continue
		}
		ts, err := parseTimestamp(tsRaw)
		if err != nil {
			*errs = append(*errs, NormalizationError{
				Kind:   ErrBadTimestamp,
				Entry:  i,
				Detail: fmt.Sprintf("unparsable timestamp %q: %v", tsRaw, err),
			})
			continue
		}

		points, ok := firstSlice(bucket, valueListAliases)
		if !ok {
			*errs = append(*errs, NormalizationError{
				Kind:   ErrMalformedReading,
				Entry:  i,
				Detail: "reading entry has no value list",
			})
			continue
		}

		for j, p := range points {
			point, ok := p.(map[string]any)
			if !ok {
				*errs = append(*errs, NormalizationError{
					Kind:   ErrMalformedReading,
					Entry:  i,
					Detail: fmt.Sprintf("value %d is %T, not an object", j, p),
				})
				continue
			}

			sid, ok := firstString(point, valueStationAliases)
			if !ok {
				sid = "unknown"
			}

			value, ok := firstFloat(point, rainfallAliases)
			if !ok {
				// Absence is indistinguishable from zero once defaulted, so
				// surface it on the error channel instead of coercing silently.
				*errs = append(*errs, NormalizationError{
					Kind:   ErrMissingValue,
					Entry:  i,
					Detail: fmt.Sprintf("station %s has no rainfall value, defaulting to 0", sid),
				})
				value = 0
			}

			readings = append(readings, Reading{
				Timestamp:  ts,
				StationID:  sid,
				RainfallMM: value,
			})
		}
	}
	return readings
}
