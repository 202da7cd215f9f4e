package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/wxlabsg/rainfall-insights/internal/adapter/http"
	"github.com/wxlabsg/rainfall-insights/internal/analytics"
	"github.com/wxlabsg/rainfall-insights/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSource struct {
	table domain.Table
}

func (m *mockSource) Latest() domain.Table { return m.table }

func sampleTable() domain.Table {
	sgt := time.FixedZone("SGT", 8*3600)
	return domain.BuildTable(
		[]domain.Station{
			{ID: "S1", Name: "Jurong", Latitude: 1.30, Longitude: 103.80},
			{ID: "S2", Name: "Bedok", Latitude: 1.35, Longitude: 103.82},
		},
		[]domain.Reading{
			{Timestamp: time.Date(2026, 8, 25, 8, 0, 0, 0, sgt), StationID: "S1", RainfallMM: 2},
			{Timestamp: time.Date(2026, 8, 25, 8, 0, 0, 0, sgt), StationID: "S2", RainfallMM: 10},
			{Timestamp: time.Date(2026, 8, 25, 9, 0, 0, 0, sgt), StationID: "S1", RainfallMM: 1},
			{Timestamp: time.Date(2026, 8, 25, 9, 0, 0, 0, sgt), StationID: "S2", RainfallMM: 8},
		},
	)
}

func newTestServer(readyErr error, table domain.Table) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, &mockSource{table: table}, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("no data yet"), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no data yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/summary", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalStations)
	assert.Equal(t, 4, summary.TotalReadings)
	assert.InDelta(t, 5.25, summary.AvgRainfall, 1e-9)
}

func TestTopRankings(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/rankings/top?n=1", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rankings []analytics.AreaRank `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rankings, 1)
	assert.Equal(t, "S2", body.Rankings[0].StationID)
	assert.InDelta(t, 18, body.Rankings[0].TotalRainfall, 1e-9)
}

func TestTopRankings_GroupNearby(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/rankings/top?group_nearby=true", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rankings []analytics.AreaRank `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rankings, 2)
	assert.Empty(t, body.Rankings[0].StationID)
}

func TestBottomRankings(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/rankings/bottom?n=1", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rankings []analytics.AreaRank `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rankings, 1)
	assert.Equal(t, "S1", body.Rankings[0].StationID)
}

func TestRankings_InvalidN(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/rankings/top?n=-3", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHourlyEndpoint(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/hourly", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Hours []analytics.HourlyStat `json:"hours"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Hours, 2)
	assert.Equal(t, 8, body.Hours[0].Hour)
	assert.Equal(t, 9, body.Hours[1].Hour)
}

func TestHourlyEndpoint_EmptyTable(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/hourly", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hours":[]}`, rec.Body.String())
}

func TestAlertsEndpoint(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/alerts", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Threshold float64               `json:"threshold"`
		Alerts    []analytics.AlertArea `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Greater(t, body.Threshold, 0.0)
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "S2", body.Alerts[0].StationID)
}

func TestAlertsEndpoint_InvalidMultiplier(t *testing.T) {
	srv := newTestServer(nil, sampleTable())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/alerts?multiplier=0", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
