// Package domain models real-time rainfall telemetry from the data.gov.sg
// rainfall API and normalizes it into a flat, per-reading-per-station table.
//
// # Data Source
//
// Payloads come from the public real-time rainfall endpoint
// (https://api-open.data.gov.sg/v2/real-time/api/rainfall). A payload carries
// a "data" container with two collections: "stations" (metadata for each
// rain gauge) and "readings" (time-bucketed measurement sets, each holding
// one timestamp and a nested list of per-station values).
//
// # Upstream Schema Variance
//
// The API has historically renamed fields between revisions, so the same
// logical field can appear under several names. Extraction resolves each
// field through a fixed, ordered alias list and takes the first present
// value ("first present alias wins"):
//
//	station id:        id, stationId, station_id, deviceId
//	location object:   labelLocation, location, coordinates
//	latitude:          latitude, lat
//	longitude:         longitude, lng, lon
//	reading timestamp: timestamp, time
//	reading values:    data, readings
//	value station id:  stationId, station_id, id
//	rainfall value:    value, rainfall
//
// The order is part of the contract: the same payload always normalizes
// identically, which the tests rely on.
//
// # Fallback Semantics
//
//   - A station without any identifier gets a deterministic synthetic id
//     ("unknown-<entry index>") and is tagged Synthetic so consumers can tell
//     inferred identifiers from real ones.
//   - A station without a name gets "Station_<id>". Missing coordinates
//     default to 0.
//   - A reading bucket with a missing or unparsable timestamp is dropped and
//     recorded as a normalization error; values are never silently zeroed
//     under a made-up time.
//   - A reading value that is absent under every alias defaults to 0 but is
//     recorded as a normalization error, because absence cannot otherwise be
//     distinguished from a genuine zero measurement.
//   - Negative values are kept as-is. Sensor artifacts must stay visible for
//     audit; summary statistics count them separately.
//
// A payload missing the data container, or with both collections empty, is a
// valid "no data available" outcome and yields empty results rather than an
// error. Malformed individual entries are skipped and recorded; they never
// abort the rest of the pass.
package domain
