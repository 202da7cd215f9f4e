package domain

import "time"

// DateLayout formats a Row's calendar date.
const DateLayout = "2006-01-02"

// Row is one canonical table entry: a reading joined with its station's
// metadata plus the hour and calendar date derived from the timestamp.
type Row struct {
	Timestamp   time.Time `json:"timestamp"`
	StationID   string    `json:"station_id"`
	StationName string    `json:"station_name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RainfallMM  float64   `json:"rainfall_mm"`
	Hour        int       `json:"hour"`
	Date        string    `json:"date"`
}

// Table is the canonical flat row set consumed by all aggregations. It is
// immutable once built: aggregations read it without modification and keep
// any grouping state in their own structures, so concurrent callers can
// share one table safely.
type Table []Row

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// BuildTable joins readings to station metadata by station id. Readings
// whose station has no metadata entry are kept with zero coordinates and a
// synthetic name rather than dropped — the reading series stays complete
// even when location is unknown. Arrival order is preserved; consumers must
// group and sort explicitly.
func BuildTable(stations []Station, readings []Reading) Table {
	byID := make(map[string]Station, len(stations))
	for _, st := range stations {
		byID[st.ID] = st
	}

	table := make(Table, 0, len(readings))
	for _, r := range readings {
		st, ok := byID[r.StationID]
		if !ok {
			st = Station{
				ID:        r.StationID,
				Name:      "Station_" + r.StationID,
				Synthetic: true,
			}
		}
		table = append(table, Row{
			Timestamp:   r.Timestamp,
			StationID:   r.StationID,
			StationName: st.Name,
			Latitude:    st.Latitude,
			Longitude:   st.Longitude,
			RainfallMM:  r.RainfallMM,
			Hour:        r.Timestamp.Hour(),
			Date:        r.Timestamp.Format(DateLayout),
		})
	}
	return table
}
