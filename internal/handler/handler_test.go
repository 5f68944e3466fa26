package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hackclub/shipwrecked-sub001/internal/config"
	"github.com/hackclub/shipwrecked-sub001/internal/flight"
	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

type mockProjects struct {
	projects []model.Project
	err      error
}

func (m *mockProjects) ProjectsByUser(context.Context, string) ([]model.Project, error) {
	return m.projects, m.err
}

type mockEconomy struct {
	snap      model.EconomySnapshot
	err       error
	purchased []float64
}

func (m *mockEconomy) Snapshot(context.Context, string) (model.EconomySnapshot, error) {
	return m.snap, m.err
}

func (m *mockEconomy) AddPurchasedHours(_ context.Context, _ string, hours float64) error {
	if m.err != nil {
		return m.err
	}
	m.purchased = append(m.purchased, hours)
	return nil
}

type mockReservations struct {
	rows []model.ReservationRow
	err  error
}

func (m *mockReservations) Reservations(context.Context) ([]model.ReservationRow, error) {
	return m.rows, m.err
}

type mockTelemetry struct {
	tracked []model.TrackedFlight
	err     error
}

func (m *mockTelemetry) Tracked(context.Context, []string) ([]model.TrackedFlight, error) {
	return m.tracked, m.err
}

type mapDirectory map[string]model.DisplayUser

func (m mapDirectory) BySlackID(_ context.Context, id string) (model.DisplayUser, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return model.DisplayUser{}, errors.New("not found")
}

func newTestHandler(projects *mockProjects, economy *mockEconomy,
	reservations *mockReservations, telemetry *mockTelemetry) *Handler {
	core, _ := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	resolver := flight.NewResolver(logger, mapDirectory{
		"U1": {Name: "Skippy", Image: "https://avatars/skippy.png"},
	})
	h := New(logger, &config.Config{DollarsPerHour: 2}, validator.New(),
		projects, economy, reservations, telemetry, resolver)
	h.now = func() time.Time { return testNow }
	return h
}

func get(h http.HandlerFunc, target string, params map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func post(h http.HandlerFunc, target, body string, params map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, &mockReservations{}, &mockTelemetry{})
	w := get(h.Healthz, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	assert.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestProgress(t *testing.T) {
	override := 20.0
	h := newTestHandler(&mockProjects{projects: []model.Project{{
		Shipped:        true,
		HackatimeLinks: []model.TimeTrackingLink{{RawHours: 20, HoursOverride: &override}},
	}}}, &mockEconomy{snap: model.EconomySnapshot{PurchasedProgressHours: 5}}, &mockReservations{}, &mockTelemetry{})

	w := get(h.Progress, "/progress/U1", map[string]string{"userID": "U1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var m model.ProgressMetrics
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 15.0, m.ShippedHours)
	assert.Equal(t, 80, m.Currency)
	assert.Equal(t, 5.0, m.PurchasedProgressHours)
	assert.Equal(t, 20.0, m.TotalProgressWithPurchased)
}

func TestProgressDegradesOnStoreError(t *testing.T) {
	h := newTestHandler(&mockProjects{err: errors.New("db down")},
		&mockEconomy{err: errors.New("db down")}, &mockReservations{}, &mockTelemetry{})

	w := get(h.Progress, "/progress/U1", map[string]string{"userID": "U1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var m model.ProgressMetrics
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 0.0, m.TotalHours)
	assert.Equal(t, 0, m.Currency)
}

func TestEconomyBalance(t *testing.T) {
	override := 30.0
	h := newTestHandler(&mockProjects{projects: []model.Project{{
		Shipped:        true,
		HackatimeLinks: []model.TimeTrackingLink{{RawHours: 30, HoursOverride: &override}},
	}}}, &mockEconomy{snap: model.EconomySnapshot{TotalShellsSpent: 100, AdminShellAdjustment: 10}},
		&mockReservations{}, &mockTelemetry{})

	w := get(h.Economy, "/economy/U1", map[string]string{"userID": "U1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Balance int `json:"balance"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// floor((30-15)*φ*10) = 242 shells earned, minus 100 spent, plus 10.
	assert.Equal(t, 152, resp.Balance)
}

func TestPurchaseProgress(t *testing.T) {
	economy := &mockEconomy{}
	h := newTestHandler(&mockProjects{}, economy, &mockReservations{}, &mockTelemetry{})

	w := post(h.PurchaseProgress, "/progress/U1/purchase", `{"hours":2.5}`, map[string]string{"userID": "U1"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []float64{2.5}, economy.purchased)

	w = post(h.PurchaseProgress, "/progress/U1/purchase", `{"hours":0}`, map[string]string{"userID": "U1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `[{"Hours":"is required"}]`, strings.TrimSpace(w.Body.String()))
}

func TestShopPrice(t *testing.T) {
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, &mockReservations{}, &mockTelemetry{})

	tests := []struct {
		name       string
		body       string
		expectCode int
		check      func(t *testing.T, body string)
	}{
		{
			name:       "fixed price from usd cost",
			body:       `{"user_id":"U1","item_id":"compass","usd_cost":5}`,
			expectCode: http.StatusOK,
			check: func(t *testing.T, body string) {
				assert.Equal(t, `{"price":100}`, strings.TrimSpace(body))
			},
		},
		{
			name:       "randomized price stays within bounds",
			body:       `{"user_id":"U1","item_id":"compass","base_price":100,"min_percent":90,"max_percent":110,"use_randomized_pricing":true}`,
			expectCode: http.StatusOK,
			check: func(t *testing.T, body string) {
				var resp map[string]int
				assert.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.GreaterOrEqual(t, resp["price"], 90)
				assert.LessOrEqual(t, resp["price"], 110)
			},
		},
		{
			name:       "missing user id",
			body:       `{"item_id":"compass","base_price":100}`,
			expectCode: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.Equal(t, `[{"UserID":"is required"}]`, strings.TrimSpace(body))
			},
		},
		{
			name:       "max percent below min",
			body:       `{"user_id":"U1","item_id":"compass","base_price":100,"min_percent":110,"max_percent":90,"use_randomized_pricing":true}`,
			expectCode: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.Equal(t, `[{"MaxPercent":"must not be below min_percent"}]`, strings.TrimSpace(body))
			},
		},
		{
			name:       "malformed json",
			body:       `{`,
			expectCode: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.Equal(t, `{"error":"invalid request payload"}`, strings.TrimSpace(body))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := post(h.ShopPrice, "/shop/price", tc.body, nil)
			assert.Equal(t, tc.expectCode, w.Code)
			tc.check(t, w.Body.String())
		})
	}
}

func TestShopPriceDeterministic(t *testing.T) {
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, &mockReservations{}, &mockTelemetry{})
	body := `{"user_id":"U1","item_id":"compass","base_price":100,"min_percent":90,"max_percent":110,"use_randomized_pricing":true}`

	first := post(h.ShopPrice, "/shop/price", body, nil).Body.String()
	second := post(h.ShopPrice, "/shop/price", body, nil).Body.String()
	assert.Equal(t, first, second)
}

func TestOrderValue(t *testing.T) {
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, &mockReservations{}, &mockTelemetry{})

	body := `{"item":{"costType":"config","config":{"dollars_per_hour":5}},"order":{"quantity":1,"config":{"hours":8}}}`
	w := post(h.OrderValue, "/shop/order-value", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"usdValue":40}`, strings.TrimSpace(w.Body.String()))

	w = post(h.OrderValue, "/shop/order-value", `{"order":{"quantity":-1}}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlights(t *testing.T) {
	reservations := &mockReservations{rows: []model.ReservationRow{
		{
			SlackID:              "U1",
			InboundFlightNumber:  "UA100",
			InboundTime:          testNow,
			OutboundFlightNumber: "UA200",
			OutboundTime:         testNow.Add(7 * 24 * time.Hour),
		},
		{
			SlackID:              "U2",
			InboundFlightNumber:  "DL5",
			InboundTime:          testNow.Add(time.Hour),
			OutboundFlightNumber: "DL6",
			OutboundTime:         testNow.Add(7 * 24 * time.Hour),
		},
	}}
	telemetry := &mockTelemetry{tracked: []model.TrackedFlight{
		{FlightNumber: "UA100", Data: model.ServerData{
			ScheduledDeparture: testNow.Unix(),
			ScheduledArrival:   testNow.Add(5 * time.Hour).Unix(),
		}},
	}}
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, reservations, telemetry)

	w := get(h.Flights, "/flights", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Flights []model.FlightLeg `json:"flights"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Flights, 2)
	// The telemetry-backed in-flight leg outranks the unresolved one.
	assert.Equal(t, "UA100", resp.Flights[0].FlightNumber)
	assert.Equal(t, model.StatusInFlight, resp.Flights[0].Status)
	assert.Equal(t, "Skippy", resp.Flights[0].User.Name)
	assert.Equal(t, "DL5", resp.Flights[1].FlightNumber)
	assert.Equal(t, "Unknown User", resp.Flights[1].User.Name)
}

func TestFlightsTelemetryOutage(t *testing.T) {
	reservations := &mockReservations{rows: []model.ReservationRow{{
		SlackID:             "U1",
		InboundFlightNumber: "UA100",
		InboundTime:         testNow,
		OutboundTime:        testNow.Add(24 * time.Hour),
	}}}
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, reservations,
		&mockTelemetry{err: errors.New("tracker down")})

	w := get(h.Flights, "/flights", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, `{"error":"live flight data is unavailable right now"}`, strings.TrimSpace(w.Body.String()))
}

func TestFlightPath(t *testing.T) {
	reservations := &mockReservations{rows: []model.ReservationRow{{
		SlackID:              "U1",
		InboundFlightNumber:  "UA100",
		InboundTime:          testNow,
		OutboundFlightNumber: "UA200",
		OutboundTime:         testNow.Add(7 * 24 * time.Hour),
	}}}
	telemetry := &mockTelemetry{tracked: []model.TrackedFlight{
		{FlightNumber: "UA100", Data: model.ServerData{
			Origin:             model.LatLng{Lat: 37.62, Lng: -122.38},
			Destination:        model.LatLng{Lat: 40.64, Lng: -73.78},
			ScheduledDeparture: testNow.Add(-time.Hour).Unix(),
			ScheduledArrival:   testNow.Add(4 * time.Hour).Unix(),
			ElapsedDistance:    500,
			RemainingDistance:  1500,
			ScrapedAt:          testNow.Unix(),
		}},
	}}
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, reservations, telemetry)

	w := get(h.FlightPath, "/flights/UA100/path", map[string]string{"flightNumber": "UA100"})
	assert.Equal(t, http.StatusOK, w.Code)

	var cf model.CalculatedFlight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &cf))
	assert.Len(t, cf.FullPathPoints, 100)
	assert.Equal(t, 2000.0, cf.TotalDistance)
	assert.InDelta(t, 0.25, cf.ElapsedRatio, 1e-9)
}

func TestFlightPathUnknownFlight(t *testing.T) {
	h := newTestHandler(&mockProjects{}, &mockEconomy{}, &mockReservations{}, &mockTelemetry{})
	w := get(h.FlightPath, "/flights/XX1/path", map[string]string{"flightNumber": "XX1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
