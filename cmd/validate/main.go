// Command validate checks the mock fixtures for integrity: the payload JSON
// must normalize into exactly the table recorded in the CSV fixture, and
// every aggregation must produce identical results over both. Run it after
// regenerating fixtures with genmock.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -payload data/mock/rainfall_payload.json \
//	  -csv data/mock/rainfall_table.csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wxlabsg/rainfall-insights/internal/analytics"
	"github.com/wxlabsg/rainfall-insights/internal/domain"
	"github.com/wxlabsg/rainfall-insights/internal/export"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	payloadPath := flag.String("payload", "", "path to mock payload JSON")
	csvPath := flag.String("csv", "", "path to expected canonical CSV")
	flag.Parse()

	if *payloadPath == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*payloadPath, *csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(payloadPath, csvPath string) int {
	// Fix the clock so monthly-average results are reproducible.
	analytics.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC),
	))
	defer analytics.SetClock(nil)

	fmt.Println("=== Rainfall Fixture Validation ===")
	fmt.Println()

	data, err := os.ReadFile(payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read payload: %v\n", err)
		return 1
	}
	var payload domain.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse payload: %v\n", err)
		return 1
	}

	expected, err := export.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read CSV fixture: %v\n", err)
		return 1
	}

	stations, readings, normErrs := domain.Normalize(payload)
	table := domain.BuildTable(stations, readings)

	phases := []*phase{
		validateNormalization(stations, readings, normErrs),
		validateTableParity(table, expected),
		validateAggregateParity(table, expected),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d stations, %d readings, %d table rows, %d CSV rows\n",
		len(stations), len(readings), len(table), len(expected))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Normalization ──
// The fixture payload must normalize cleanly and consistently.

func validateNormalization(stations []domain.Station, readings []domain.Reading, normErrs []domain.NormalizationError) *phase {
	p := &phase{name: "Phase 1: Normalization"}

	if len(stations) == 0 {
		p.errorf("no stations extracted from payload")
	}
	if len(readings) == 0 {
		p.errorf("no readings extracted from payload")
	}
	for _, ne := range normErrs {
		p.errorf("unexpected normalization issue: %s", ne.Error())
	}

	seen := map[string]bool{}
	for _, s := range stations {
		if s.ID == "" {
			p.errorf("station with empty id")
		}
		if seen[s.ID] {
			p.errorf("duplicate station id %q", s.ID)
		}
		seen[s.ID] = true
	}

	for i, r := range readings {
		if r.Timestamp.IsZero() {
			p.errorf("reading %d has zero timestamp", i)
		}
		if r.StationID == "" {
			p.errorf("reading %d has empty station id", i)
		}
	}
	return p
}

// ── Phase 2: Table Parity ──
// The built table must match the CSV fixture row for row.

func validateTableParity(table, expected domain.Table) *phase {
	p := &phase{name: "Phase 2: Table Parity (payload vs CSV)"}

	if len(table) != len(expected) {
		p.errorf("row count: built %d, CSV has %d", len(table), len(expected))
		return p
	}

	for i := range table {
		got, want := table[i], expected[i]
		if !got.Timestamp.Equal(want.Timestamp) {
			p.errorf("row %d: timestamp: built %s, CSV %s", i,
				got.Timestamp.Format(time.RFC3339Nano), want.Timestamp.Format(time.RFC3339Nano))
		}
		if got.StationID != want.StationID {
			p.errorf("row %d: station_id: built %q, CSV %q", i, got.StationID, want.StationID)
		}
		if got.StationName != want.StationName {
			p.errorf("row %d: station_name: built %q, CSV %q", i, got.StationName, want.StationName)
		}
		if !floatEq(got.Latitude, want.Latitude) || !floatEq(got.Longitude, want.Longitude) {
			p.errorf("row %d: coordinates: built (%g, %g), CSV (%g, %g)", i,
				got.Latitude, got.Longitude, want.Latitude, want.Longitude)
		}
		if !floatEq(got.RainfallMM, want.RainfallMM) {
			p.errorf("row %d: rainfall: built %g, CSV %g", i, got.RainfallMM, want.RainfallMM)
		}
		if got.Hour != want.Hour || got.Date != want.Date {
			p.errorf("row %d: derived fields: built (%d, %s), CSV (%d, %s)", i,
				got.Hour, got.Date, want.Hour, want.Date)
		}
	}
	return p
}

// ── Phase 3: Aggregate Parity ──
// Every aggregation must be identical over the built and re-imported tables.

func validateAggregateParity(table, expected domain.Table) *phase {
	p := &phase{name: "Phase 3: Aggregate Parity"}

	gotSummary, wantSummary := analytics.Summarize(table), analytics.Summarize(expected)
	if gotSummary.TotalStations != wantSummary.TotalStations ||
		gotSummary.TotalReadings != wantSummary.TotalReadings ||
		!floatEq(gotSummary.AvgRainfall, wantSummary.AvgRainfall) ||
		!floatEq(gotSummary.StdRainfall, wantSummary.StdRainfall) {
		p.errorf("summary mismatch: built %+v, CSV %+v", gotSummary, wantSummary)
	}

	gotTop := analytics.TopAreas(table, 10, analytics.RankOptions{})
	wantTop := analytics.TopAreas(expected, 10, analytics.RankOptions{})
	if len(gotTop) != len(wantTop) {
		p.errorf("top rankings: built %d groups, CSV %d", len(gotTop), len(wantTop))
	} else {
		for i := range gotTop {
			if gotTop[i].StationID != wantTop[i].StationID || !floatEq(gotTop[i].TotalRainfall, wantTop[i].TotalRainfall) {
				p.errorf("top ranking %d: built %s=%g, CSV %s=%g", i,
					gotTop[i].StationID, gotTop[i].TotalRainfall,
					wantTop[i].StationID, wantTop[i].TotalRainfall)
			}
		}
	}

	gotHourly, wantHourly := analytics.HourlyDistribution(table), analytics.HourlyDistribution(expected)
	if len(gotHourly) != len(wantHourly) {
		p.errorf("hourly distribution: built %d hours, CSV %d", len(gotHourly), len(wantHourly))
	} else {
		for i := range gotHourly {
			if gotHourly[i].Hour != wantHourly[i].Hour || !floatEq(gotHourly[i].TotalRainfall, wantHourly[i].TotalRainfall) {
				p.errorf("hour %d: built total %g, CSV total %g",
					gotHourly[i].Hour, gotHourly[i].TotalRainfall, wantHourly[i].TotalRainfall)
			}
		}
	}

	gotAlerts, gotThreshold := analytics.AlertAreas(table, analytics.DefaultThresholdMultiplier)
	wantAlerts, wantThreshold := analytics.AlertAreas(expected, analytics.DefaultThresholdMultiplier)
	if !floatEq(gotThreshold, wantThreshold) {
		p.errorf("alert threshold: built %g, CSV %g", gotThreshold, wantThreshold)
	}
	if len(gotAlerts) != len(wantAlerts) {
		p.errorf("alerts: built %d, CSV %d", len(gotAlerts), len(wantAlerts))
	} else {
		for i := range gotAlerts {
			if gotAlerts[i].StationID != wantAlerts[i].StationID {
				p.errorf("alert %d: built %s, CSV %s", i, gotAlerts[i].StationID, wantAlerts[i].StationID)
			}
		}
	}

	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
