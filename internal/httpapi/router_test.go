package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewwatch/internal/eventbus"
	"crewwatch/internal/journal"
	"crewwatch/internal/models"
	"crewwatch/internal/poller"
	"crewwatch/internal/transport"
)

type fakeController struct {
	resets  int
	started time.Duration
	stopped bool
	ticks   int
	state   poller.State
}

func (f *fakeController) Status() poller.Status {
	return poller.Status{State: f.state, Threshold: 3}
}
func (f *fakeController) Start(ctx context.Context, interval time.Duration) {
	f.started = interval
	f.state = poller.StateRunning
}
func (f *fakeController) Stop() {
	f.stopped = true
	f.state = poller.StateIdle
}
func (f *fakeController) ResetErrorCounter() { f.resets++ }
func (f *fakeController) Tick(ctx context.Context) poller.TickReport {
	f.ticks++
	return poller.TickReport{Outcome: poller.OutcomeOK}
}

func do(t *testing.T, h http.Handler, method, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	h := NewRouter(Deps{Poller: &fakeController{state: poller.StateRunning}, Bus: eventbus.New()})

	rec, body := do(t, h, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK || body["success"] != true || body["poller"] != "running" {
		t.Errorf("unexpected response %d %v", rec.Code, body)
	}
}

func TestSnapshotTopic(t *testing.T) {
	bus := eventbus.New()
	h := NewRouter(Deps{Poller: &fakeController{}, Bus: bus})

	rec, _ := do(t, h, http.MethodGet, "/api/snapshot/dashboard-stats", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any data, got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/snapshot/not-a-topic", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown topic, got %d", rec.Code)
	}

	bus.Emit(eventbus.TopicError, poller.ErrorEvent{Kind: transport.KindOffline, Message: "network offline: live updates skipped", ConsecutiveErrors: 1})
	rec, body := do(t, h, http.MethodGet, "/api/snapshot/error", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["kind"] != "offline" || data["consecutive_errors"].(float64) != 1 {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestMarkers_SortedByDistance(t *testing.T) {
	bus := eventbus.New()
	bus.Emit(eventbus.TopicCrewLocations, poller.CrewLocationsEvent{
		Crews: []models.CrewLocation{
			{CrewID: "far", Latitude: 41.0, Longitude: -74.0, Status: models.CrewStatusAvailable},
			{CrewID: "near", Latitude: 40.72, Longitude: -74.0, Status: models.CrewStatusEnRoute},
		},
		ReceivedAt: time.Now(),
	})
	h := NewRouter(Deps{Poller: &fakeController{}, Bus: bus})

	rec, body := do(t, h, http.MethodGet, "/api/markers?lat=40.7128&lng=-74.0060", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	markers := body["markers"].([]interface{})
	first := markers[0].(map[string]interface{})
	if first["id"] != "near" || first["vehicle_type"] != "van" {
		t.Errorf("unexpected first marker: %v", first)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/markers?lat=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad coordinates, got %d", rec.Code)
	}
}

func TestControlRoutes_RequireAdminToken(t *testing.T) {
	ctrl := &fakeController{}
	h := NewRouter(Deps{Poller: ctrl, Bus: eventbus.New(), JWTSecret: "s3cret"})

	rec, _ := do(t, h, http.MethodPost, "/api/poller/reset", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	driverToken := signToken(t, "s3cret", "driver")
	rec, _ = do(t, h, http.MethodPost, "/api/poller/reset", driverToken)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}

	wrongSecret := signToken(t, "other", "admin")
	rec, _ = do(t, h, http.MethodPost, "/api/poller/reset", wrongSecret)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad signature, got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/poller/reset", signToken(t, "s3cret", "admin"))
	if rec.Code != http.StatusOK || ctrl.resets != 1 {
		t.Errorf("expected reset to succeed, got %d resets=%d", rec.Code, ctrl.resets)
	}
}

func TestControlRoutes_StartStopRefresh(t *testing.T) {
	ctrl := &fakeController{}
	h := NewRouter(Deps{Poller: ctrl, Bus: eventbus.New(), Interval: 5 * time.Second})

	_, body := do(t, h, http.MethodPost, "/api/poller/start", "")
	if ctrl.started != 5*time.Second || body["state"] != "running" {
		t.Errorf("start not applied: %v", body)
	}

	_, body = do(t, h, http.MethodPost, "/api/poller/refresh", "")
	if ctrl.ticks != 1 || body["outcome"] != "ok" {
		t.Errorf("refresh not applied: %v", body)
	}

	_, body = do(t, h, http.MethodPost, "/api/poller/stop", "")
	if !ctrl.stopped || body["state"] != "idle" {
		t.Errorf("stop not applied: %v", body)
	}
}

func TestHistory(t *testing.T) {
	h := NewRouter(Deps{Poller: &fakeController{}, Bus: eventbus.New()})
	rec, body := do(t, h, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusServiceUnavailable || body["error"] != "Journal is disabled" {
		t.Errorf("expected disabled journal, got %d %v", rec.Code, body)
	}

	db, err := journal.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := journal.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	j := journal.New(db)
	j.Observe(poller.TickReport{StartedAt: time.Now(), Outcome: poller.OutcomeOK})

	h = NewRouter(Deps{Poller: &fakeController{}, Bus: eventbus.New(), Journal: j})
	rec, body = do(t, h, http.MethodGet, "/api/history?limit=5", "")
	if rec.Code != http.StatusOK || len(body["ticks"].([]interface{})) != 1 {
		t.Errorf("unexpected history response %d %v", rec.Code, body)
	}

	rec, body = do(t, h, http.MethodGet, "/api/history/summary?window=10m", "")
	if rec.Code != http.StatusOK || len(body["outcomes"].([]interface{})) != 1 {
		t.Errorf("unexpected summary response %d %v", rec.Code, body)
	}
}
