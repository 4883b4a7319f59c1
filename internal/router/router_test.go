package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"focusgarden/backend/internal/alarm"
	"focusgarden/backend/internal/db"
	"focusgarden/backend/internal/handler"
	"focusgarden/backend/internal/notify"
	"focusgarden/backend/internal/repository"
	"focusgarden/backend/internal/router"
	"focusgarden/backend/internal/service"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type stateEnvelope struct {
	State struct {
		State            string `json:"state"`
		RemainingSeconds int    `json:"remainingSeconds"`
		Session          *struct {
			List struct {
				ID string `json:"id"`
			} `json:"list"`
			StartTime int64 `json:"startTime"`
			EndTime   int64 `json:"endTime"`
		} `json:"session"`
	} `json:"state"`
}

type gardenEnvelope struct {
	Garden []struct {
		Status string `json:"status"`
		Date   string `json:"date"`
	} `json:"garden"`
}

type statsEnvelope struct {
	Stats []struct {
		Date            string         `json:"date"`
		Completed       int            `json:"completed"`
		Interrupted     int            `json:"interrupted"`
		EmergencyAccess map[string]int `json:"emergencyAccess"`
	} `json:"stats"`
}

type blockingEnvelope struct {
	BlockList *struct {
		ID    string   `json:"id"`
		Sites []string `json:"sites"`
		Type  string   `json:"type"`
	} `json:"blockList"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestSessionLifecycleOverAPI(t *testing.T) {
	engine := setupTestEngine(t)

	token := registerDevice(t, engine, "owner@example.com", "123456")

	// Registration is device setup and closes after the first account.
	status, raw := requestJSON(t, engine, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "second@example.com",
		"password": "123456",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for second registration, got %d", status)
	}
	var conflict apiErrorEnvelope
	if err := json.Unmarshal(raw, &conflict); err != nil {
		t.Fatalf("unmarshal conflict: %v", err)
	}
	if conflict.Error.Code != "registration_closed" {
		t.Fatalf("expected registration_closed, got %s", conflict.Error.Code)
	}

	// No token, no session access.
	status, _ = requestJSON(t, engine, http.MethodGet, "/api/session", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	// Idle before anything starts.
	state := getState(t, engine, token)
	if state.State.State != "none" {
		t.Fatalf("expected idle state, got %s", state.State.State)
	}

	// Start the built-in 25/5 list without prep.
	status, raw = requestJSON(t, engine, http.MethodPost, "/api/session/start", token, map[string]interface{}{
		"listId":   "fl3",
		"withPrep": false,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d: %s", status, string(raw))
	}
	var started stateEnvelope
	if err := json.Unmarshal(raw, &started); err != nil {
		t.Fatalf("unmarshal start response: %v", err)
	}
	if started.State.State != "focus" {
		t.Fatalf("expected focus, got %s", started.State.State)
	}
	if got := started.State.Session.EndTime - started.State.Session.StartTime; got != 25*60*1000 {
		t.Fatalf("expected 25 min window, got %d ms", got)
	}

	// Second start conflicts: one active session process-wide.
	status, raw = requestJSON(t, engine, http.MethodPost, "/api/session/start", token, map[string]interface{}{
		"listId": "fl3",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on second start, got %d: %s", status, string(raw))
	}

	// The blocking consumer sees the session's list while in focus.
	status, raw = requestJSON(t, engine, http.MethodGet, "/api/blocking/active", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for blocking contract, got %d", status)
	}
	var blocking blockingEnvelope
	if err := json.Unmarshal(raw, &blocking); err != nil {
		t.Fatalf("unmarshal blocking response: %v", err)
	}
	if blocking.BlockList == nil || blocking.BlockList.ID != "bl1" {
		t.Fatalf("expected bl1 active, got %+v", blocking.BlockList)
	}

	// Giving up mid-focus withers a plant and counts an interruption.
	status, _ = requestJSON(t, engine, http.MethodPost, "/api/session/giveup", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on give up, got %d", status)
	}

	state = getState(t, engine, token)
	if state.State.State != "none" {
		t.Fatalf("expected idle after give up, got %s", state.State.State)
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/garden", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for garden, got %d", status)
	}
	var garden gardenEnvelope
	if err := json.Unmarshal(raw, &garden); err != nil {
		t.Fatalf("unmarshal garden: %v", err)
	}
	if len(garden.Garden) != 1 || garden.Garden[0].Status != "withered" {
		t.Fatalf("expected one withered plant, got %+v", garden.Garden)
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for stats, got %d", status)
	}
	var stats statsEnvelope
	if err := json.Unmarshal(raw, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if len(stats.Stats) != 1 || stats.Stats[0].Interrupted != 1 || stats.Stats[0].Completed != 0 {
		t.Fatalf("expected one interruption, got %+v", stats.Stats)
	}
}

func TestEmergencyAccessOverAPI(t *testing.T) {
	engine := setupTestEngine(t)
	token := registerDevice(t, engine, "owner@example.com", "123456")

	for i := 0; i < 2; i++ {
		status, raw := requestJSON(t, engine, http.MethodPost, "/api/blocking/emergency", token, map[string]string{
			"site": "youtube.com",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200 recording emergency access, got %d: %s", status, string(raw))
		}
	}

	status, raw := requestJSON(t, engine, http.MethodGet, "/api/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for stats, got %d", status)
	}
	var stats statsEnvelope
	if err := json.Unmarshal(raw, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if len(stats.Stats) != 1 || stats.Stats[0].EmergencyAccess["youtube.com"] != 2 {
		t.Fatalf("expected two youtube.com passes, got %+v", stats.Stats)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	engine := setupTestEngine(t)
	token := registerDevice(t, engine, "owner@example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodPut, "/api/settings", token, map[string]interface{}{
		"notificationTitle":    "Focus Garden",
		"focusCompleteMessage": "Done!",
		"breakCompleteMessage": "Back to it",
		"soundId":              "bell",
		"musicEnabled":         true,
		"musicTrack":           "rain",
		"musicVolume":          0.3,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 saving settings, got %d: %s", status, string(raw))
	}

	status, raw = requestJSON(t, engine, http.MethodPut, "/api/settings", token, map[string]interface{}{
		"soundId": "airhorn",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sound, got %d: %s", status, string(raw))
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/settings", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 reading settings, got %d", status)
	}
	var settings struct {
		Settings struct {
			SoundID    string  `json:"soundId"`
			MusicTrack string  `json:"musicTrack"`
			Volume     float64 `json:"musicVolume"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if settings.Settings.SoundID != "bell" || settings.Settings.MusicTrack != "rain" {
		t.Fatalf("settings did not round-trip: %+v", settings.Settings)
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := setupTestEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	engine.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

func setupTestEngine(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	kvRepo := repository.NewKVRepository(database)
	authService := service.NewAuthService(userRepo, "test-secret", 24*time.Hour)
	dataService := service.NewDataService(kvRepo)

	var sessionService *service.SessionService
	sched := alarm.NewScheduler(func(name string) { sessionService.HandleAlarm(name) })
	t.Cleanup(sched.Stop)
	sessionService = service.NewSessionService(kvRepo, sched, notify.LogNotifier{}, notify.LogPlayer{})

	if err := dataService.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := sessionService.Recover(context.Background()); err != nil {
		t.Fatalf("recover: %v", err)
	}

	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	dataHandler := handler.NewDataHandler(dataService)

	return router.New(authService, authHandler, sessionHandler, dataHandler, []string{"http://localhost:5173"})
}

func registerDevice(t *testing.T, server http.Handler, email, password string) string {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for %s", email)
	}
	return resp.Token
}

func getState(t *testing.T, server http.Handler, token string) stateEnvelope {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodGet, "/api/session", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get session failed with status %d: %s", status, string(body))
	}
	var stateResp stateEnvelope
	if err := json.Unmarshal(body, &stateResp); err != nil {
		t.Fatalf("unmarshal state response: %v", err)
	}
	return stateResp
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
