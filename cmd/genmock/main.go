// Command genmock generates a mock rainfall API payload and its expected
// canonical CSV. It uses the actual normalization and table-building code so
// the fixtures always match real pipeline behavior, and deliberately mixes
// the field-name variants the live API has been observed to emit.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -payload-out data/mock/rainfall_payload.json \
//	  -csv-out data/mock/rainfall_table.csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/wxlabsg/rainfall-insights/internal/domain"
	"github.com/wxlabsg/rainfall-insights/internal/export"
)

var baseTime = time.Date(2026, time.August, 25, 8, 0, 0, 0, time.FixedZone("SGT", 8*3600))

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	payloadOut := flag.String("payload-out", "", "output path for mock payload JSON")
	csvOut := flag.String("csv-out", "", "output path for expected canonical CSV")
	stations := flag.Int("stations", 12, "number of mock stations")
	buckets := flag.Int("buckets", 6, "number of 5-minute reading buckets")
	seed := flag.Int64("seed", 42, "random seed, fixed by default for reproducible fixtures")
	flag.Parse()

	if *payloadOut == "" || *csvOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -payload-out, -csv-out")
	}

	payload := buildPayload(rand.New(rand.NewSource(*seed)), *stations, *buckets)

	if err := writeJSON(*payloadOut, payload); err != nil {
		return fmt.Errorf("writing payload fixture: %w", err)
	}
	log.Printf("wrote payload fixture: %s", *payloadOut)

	// Round-trip through JSON so the payload matches what a decoder produces.
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var decoded domain.Payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	stns, readings, normErrs := domain.Normalize(decoded)
	for _, ne := range normErrs {
		log.Printf("normalization issue: %s", ne.Error())
	}
	table := domain.BuildTable(stns, readings)

	if err := os.MkdirAll(filepath.Dir(*csvOut), 0o755); err != nil {
		return err
	}
	if err := export.WriteFile(*csvOut, table); err != nil {
		return fmt.Errorf("writing expected CSV: %w", err)
	}
	log.Printf("wrote expected CSV: %s", *csvOut)

	log.Printf("stations=%d readings=%d rows=%d issues=%d",
		len(stns), len(readings), len(table), len(normErrs))
	return nil
}

// buildPayload assembles a data.gov.sg-shaped payload. Station and value
// entries cycle through the known alias spellings so fixtures exercise the
// resolution order, and one station omits its id to cover the synthetic-id
// fallback.
func buildPayload(rng *rand.Rand, stationCount, bucketCount int) map[string]any {
	stations := make([]any, 0, stationCount)
	ids := make([]string, 0, stationCount)

	for i := 0; i < stationCount; i++ {
		id := fmt.Sprintf("S%02d", i+1)
		ids = append(ids, id)

		lat := 1.25 + rng.Float64()*0.2
		lon := 103.65 + rng.Float64()*0.35
		entry := map[string]any{
			"name": fmt.Sprintf("Station %02d", i+1),
		}

		switch i % 4 {
		case 0:
			entry["id"] = id
			entry["labelLocation"] = map[string]any{"latitude": lat, "longitude": lon}
		case 1:
			entry["stationId"] = id
			entry["location"] = map[string]any{"latitude": lat, "longitude": lon}
		case 2:
			entry["station_id"] = id
			entry["coordinates"] = map[string]any{"lat": lat, "lng": lon}
		case 3:
			entry["deviceId"] = id
			entry["labelLocation"] = map[string]any{"lat": lat, "lon": lon}
		}

		// Last station loses its id to exercise the synthetic fallback.
		if i == stationCount-1 {
			delete(entry, "deviceId")
			delete(entry, "id")
			delete(entry, "stationId")
			delete(entry, "station_id")
			ids[i] = fmt.Sprintf("unknown-%d", i)
		}

		stations = append(stations, entry)
	}

	readings := make([]any, 0, bucketCount)
	for b := 0; b < bucketCount; b++ {
		ts := baseTime.Add(time.Duration(b) * 5 * time.Minute)
		points := make([]any, 0, stationCount)
		for i, id := range ids {
			value := 0.0
			if rng.Float64() < 0.6 {
				value = float64(rng.Intn(250)) / 10
			}
			point := map[string]any{}
			switch i % 3 {
			case 0:
				point["stationId"] = id
				point["value"] = value
			case 1:
				point["station_id"] = id
				point["rainfall"] = value
			case 2:
				point["id"] = id
				point["value"] = value
			}
			points = append(points, point)
		}

		bucket := map[string]any{"data": points}
		if b%2 == 0 {
			bucket["timestamp"] = ts.Format(time.RFC3339)
		} else {
			bucket["time"] = ts.Format(time.RFC3339)
		}
		readings = append(readings, bucket)
	}

	return map[string]any{
		"data": map[string]any{
			"stations": stations,
			"readings": readings,
		},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
