package api

import (
	"bytes"
	"context"
	"earthwork-route-service/internal/api/dto"
	"earthwork-route-service/internal/api/handlers"
	"earthwork-route-service/internal/domain"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFields struct {
	mu     sync.Mutex
	fields map[int64][]domain.Cell
}

func (m *memFields) SaveField(_ context.Context, _ string, cells []domain.Cell) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fields == nil {
		m.fields = map[int64][]domain.Cell{}
	}
	id := int64(len(m.fields) + 1)
	m.fields[id] = cells
	return id, nil
}

func (m *memFields) GetField(_ context.Context, id int64) ([]domain.Cell, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.fields[id]
	return c, ok, nil
}

type memRoutes struct {
	mu     sync.Mutex
	routes map[string]*domain.RoutePlan
}

func (m *memRoutes) SaveRoute(_ context.Context, p *domain.RoutePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.routes == nil {
		m.routes = map[string]*domain.RoutePlan{}
	}
	m.routes[p.ID] = p
	return nil
}

func (m *memRoutes) GetRoute(_ context.Context, id string) (*domain.RoutePlan, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.routes[id]
	return p, ok, nil
}

type memCache struct {
	mu    sync.Mutex
	plans map[string]*domain.RoutePlan
}

func (m *memCache) Get(_ context.Context, key string) (*domain.RoutePlan, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[key]
	return p, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, p *domain.RoutePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plans == nil {
		m.plans = map[string]*domain.RoutePlan{}
	}
	m.plans[key] = p
	return nil
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Fields:  &memFields{},
		Routes:  &memRoutes{},
		Cache:   &memCache{},
		Workers: 2,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func lineRoute() map[string]any {
	return map[string]any{
		"cells": []map[string]float64{
			{"x": 0, "y": 0, "quantity": 1},
			{"x": 1, "y": 0, "quantity": -1},
		},
		"capacity":    1,
		"gamma":       math.Pi / 2,
		"min_segment": 0.1,
		"start":       map[string]float64{"x": -1, "y": 0},
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	h := NewRouter(Deps{Checks: map[string]handlers.HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}})
	rec = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","postgres":"ok","redis":"down"}`, rec.Body.String())
}

func TestHealthRejectsOtherMethods(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestFieldsCreateAndGet(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPost, "/fields", map[string]any{
		"name": "pit",
		"cells": []map[string]float64{
			{"x": 0, "y": 0, "quantity": 3},
			{"x": 1, "y": 0, "quantity": 1},
			{"x": 2, "y": 0, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.CreateFieldResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, h, http.MethodGet, "/fields/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.FieldResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Cells, 3)
	assert.Equal(t, 3.0, got.Cells[0].Quantity)
	assert.Equal(t, 1.0, got.Cells[0].Balanced)
	assert.Equal(t, -1.0, got.Cells[1].Balanced)
	assert.Equal(t, 1, got.Peaks)
	assert.Equal(t, 1, got.Holes)
	assert.Equal(t, 1.0, got.TerrainToMove)
}

func TestFieldsErrors(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad id", http.MethodGet, "/fields/abc", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/fields/42", nil, http.StatusNotFound},
		{"no name", http.MethodPost, "/fields", map[string]any{"cells": []map[string]float64{{"x": 0}}}, http.StatusBadRequest},
		{"no cells", http.MethodPost, "/fields", map[string]any{"name": "x"}, http.StatusBadRequest},
		{"duplicate cells", http.MethodPost, "/fields", map[string]any{
			"name":  "x",
			"cells": []map[string]float64{{"x": 0, "quantity": 1}, {"x": 0, "quantity": -1}},
		}, http.StatusBadRequest},
		{"unknown json field", http.MethodPost, "/fields", map[string]any{"name": "x", "color": "red"}, http.StatusBadRequest},
		{"two objects", http.MethodPost, "/fields", `{"name":"x"}{"name":"y"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRoutesPlanStoreAndCache(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPost, "/routes", lineRoute())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var first dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "nearest_neighbour", first.Strategy)
	assert.False(t, first.Cached)
	require.Len(t, first.Stopovers, 3)
	assert.Equal(t, dto.StopoverResponse{X: 1, Y: 0, Quantity: 1}, first.Stopovers[2])
	assert.InDelta(t, 2.0, first.Distance, 1e-9)
	assert.Equal(t, 2, first.Chains)

	rec = do(t, h, http.MethodGet, "/routes/"+first.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stored dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, first.Stopovers, stored.Stopovers)

	rec = do(t, h, http.MethodPost, "/routes", lineRoute())
	require.Equal(t, http.StatusOK, rec.Code)
	var cached dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.True(t, cached.Cached)
	assert.Equal(t, first.ID, cached.ID)
}

func TestRoutesPlanStoredField(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPost, "/fields", map[string]any{
		"name":  "line",
		"cells": lineRoute()["cells"],
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := lineRoute()
	delete(body, "cells")
	body["field_id"] = 1
	body["strategy"] = "meta"
	body["seed"] = 3

	rec = do(t, h, http.MethodPost, "/routes", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "meta", res.Strategy)
	assert.InDelta(t, 2.0, res.Distance, 1e-9)
	require.NotNil(t, res.Search)
	assert.Equal(t, res.Search.Restarts, res.Search.Solved)
	assert.InDelta(t, res.Distance, res.Search.BestDistance, 1e-9)
}

func TestRoutesErrors(t *testing.T) {
	h := newTestRouter()

	withField := func(k string, v any) map[string]any {
		b := lineRoute()
		b[k] = v
		return b
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown route", http.MethodGet, "/routes/nope", nil, http.StatusNotFound},
		{"bad strategy", http.MethodPost, "/routes", withField("strategy", "simulated_annealing"), http.StatusBadRequest},
		{"bad policy", http.MethodPost, "/routes", withField("repair_policy", "spiral"), http.StatusBadRequest},
		{"zero capacity", http.MethodPost, "/routes", withField("capacity", 0), http.StatusBadRequest},
		{"field id and cells", http.MethodPost, "/routes", withField("field_id", 1), http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/routes", map[string]any{"field_id": 9, "capacity": 1}, http.StatusNotFound},
		{"no cells", http.MethodPost, "/routes", map[string]any{"capacity": 1}, http.StatusBadRequest},
		{"tour not configured", http.MethodPost, "/routes", withField("use_tour", true), http.StatusNotImplemented},
		{"not json", http.MethodPost, "/routes", "capacity=1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRoutesWithoutStorage(t *testing.T) {
	h := NewRouter(Deps{})

	rec := do(t, h, http.MethodPost, "/routes", lineRoute())
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/routes/any", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = do(t, h, http.MethodPost, "/fields", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
