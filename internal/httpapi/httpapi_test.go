package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/geo"
	"github.com/antigravity/transitcat/internal/render"
	"github.com/antigravity/transitcat/internal/routing"
)

func buildServer(t *testing.T) *Server {
	t.Helper()
	cat := catalogue.New()
	require.NoError(t, cat.AddStop("A", geo.Coordinate{Lat: 55.611087, Lng: 37.208290}))
	require.NoError(t, cat.AddStop("B", geo.Coordinate{Lat: 55.595884, Lng: 37.209755}))
	require.NoError(t, cat.AddStop("C", geo.Coordinate{Lat: 55.632761, Lng: 37.333324}))
	require.NoError(t, cat.AddDistance("A", "B", 3900))
	require.NoError(t, cat.AddDistance("B", "C", 9900))
	require.NoError(t, cat.AddDistance("C", "A", 5950))
	require.NoError(t, cat.AddBus("256", false, []string{"A", "B", "C"}))
	require.NoError(t, cat.Seal())

	router := routing.New(cat)
	router.Build(40, 6)

	return New(cat, router, render.DefaultSettings())
}

func TestHandleBusFound(t *testing.T) {
	s := buildServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/buses/256", nil)

	s.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body busResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 5, body.StopCount)
}

func TestHandleBusNotFound(t *testing.T) {
	s := buildServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/buses/999", nil)

	s.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "not found", body.ErrorMessage)
}

func TestHandleStopFound(t *testing.T) {
	s := buildServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stops/A", nil)

	s.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body stopResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"256"}, body.Buses)
}

func TestHandleMapReturnsSVG(t *testing.T) {
	s := buildServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/map", nil)

	s.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body mapResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Map, "<svg")
}

func TestHandleRouteFound(t *testing.T) {
	s := buildServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/route?from=A&to=C", nil)

	s.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body routeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.InDelta(t, 26.7, body.TotalTime, 0.05)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Wait", body.Items[0].Type)
	assert.Equal(t, "Bus", body.Items[1].Type)
}

func TestHandleRouteUnknownStopIsNotFound(t *testing.T) {
	s := buildServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/route?from=A&to=Nowhere", nil)

	s.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
