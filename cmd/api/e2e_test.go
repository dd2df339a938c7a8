package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/twelve-week-sync/internal/adapters/handler/http"
	"github.com/comitanigiacomo/twelve-week-sync/internal/app"
	"github.com/comitanigiacomo/twelve-week-sync/internal/config"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/workers"
)

const e2eUser = "e2e-tester-1"

type e2eServer struct {
	router   *gin.Engine
	token    string
	sessions *services.SessionManager
	backend  *app.Backend
}

func sqliteConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = config.BackendSQLite
	cfg.SQLitePath = path
	cfg.Redis.Enabled = false
	cfg.JWT.Secret = "e2e-secret"
	return cfg
}

func startServer(t *testing.T, cfg *config.Config) *e2eServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend, err := app.OpenBackend(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(backend.Close)

	sessions := services.NewSessionManager(backend.Gateway)
	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Duration)
	token, err := tokens.GenerateToken(e2eUser)
	require.NoError(t, err)

	dashboard, cycles, planning, tracking := adapterHTTP.NewHandlers(sessions)
	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		DashboardHandler: dashboard,
		CycleHandler:     cycles,
		PlanningHandler:  planning,
		TrackingHandler:  tracking,
		TokenService:     tokens,
		DB:               backend.DB,
		StartTime:        time.Now(),
	})

	return &e2eServer{router: router, token: token, sessions: sessions, backend: backend}
}

func (s *e2eServer) call(t *testing.T, method, path, body string) (int, services.Dashboard) {
	t.Helper()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var d services.Dashboard
	if w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	}
	return w.Code, d
}

func TestEndToEnd_CycleLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "twelve-week.db")
	cfg := sqliteConfig(t, dbPath)
	srv := startServer(t, cfg)

	start := time.Now().AddDate(0, 0, -15).Format(domain.DateLayout)
	today := time.Now().Format(domain.DateLayout)

	var taskID, habitID string

	t.Run("1. Create Cycle", func(t *testing.T) {
		code, d := srv.call(t, http.MethodPost, "/api/v1/cycles", `{"name": "Q1", "vision": "Ship it", "start_date": "`+start+`"}`)
		require.Equal(t, http.StatusCreated, code)
		require.NotNil(t, d.Cycle)
		assert.Equal(t, 1, d.Cycle.CurrentWeek)
	})

	t.Run("2. Plan The Week", func(t *testing.T) {
		code, _ := srv.call(t, http.MethodPost, "/api/v1/goals", `{"title": "Launch", "progress": 30}`)
		require.Equal(t, http.StatusCreated, code)

		code, d := srv.call(t, http.MethodPost, "/api/v1/tasks", `{"title": "Write schema"}`)
		require.Equal(t, http.StatusCreated, code)
		taskID = d.Cycle.WeeklyTasks[0].ID

		code, _ = srv.call(t, http.MethodPost, "/api/v1/tasks", `{"title": "Review"}`)
		require.Equal(t, http.StatusCreated, code)

		code, d = srv.call(t, http.MethodPost, "/api/v1/actions", `{"title": "Standup", "date": "`+today+`", "priority": "high"}`)
		require.Equal(t, http.StatusCreated, code)
		assert.Len(t, d.TodayActions, 1)
	})

	t.Run("3. Execute", func(t *testing.T) {
		code, d := srv.call(t, http.MethodPost, "/api/v1/tasks/"+taskID+"/toggle", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 50, d.ExecutionRate)

		code, d = srv.call(t, http.MethodPost, "/api/v1/habits", `{"name": "Read", "target_days_per_week": 5}`)
		require.Equal(t, http.StatusCreated, code)
		habitID = d.Habits[0].ID

		code, d = srv.call(t, http.MethodPost, "/api/v1/habits/"+habitID+"/toggle", `{"date": "`+today+`"}`)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, d.Habits[0].CompletedToday)
	})

	t.Run("4. Score The Week", func(t *testing.T) {
		code, d := srv.call(t, http.MethodPost, "/api/v1/scores/1", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 50, d.Trend[0].Rate)

		code, d = srv.call(t, http.MethodPost, "/api/v1/scores/1/indicators", `{"name": "Pages", "target": 100, "actual": 40, "unit": "pages"}`)
		require.Equal(t, http.StatusCreated, code)
		require.Len(t, d.Cycle.WeeklyScores[0].LeadIndicators, 1)
	})

	t.Run("5. Worker Advances The Week", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		worker := workers.NewWeekWorker(srv.backend.Gateway, srv.sessions)
		worker.Start(ctx)
		require.NoError(t, worker.ScanActive(ctx))

		assert.Eventually(t, func() bool {
			code, d := srv.call(t, http.MethodGet, "/api/v1/dashboard", "")
			return code == http.StatusOK && d.Cycle != nil && d.Cycle.CurrentWeek == 3
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("6. State Survives A Restart", func(t *testing.T) {
		restarted := startServer(t, sqliteConfig(t, dbPath))

		code, d := restarted.call(t, http.MethodGet, "/api/v1/dashboard", "")
		require.Equal(t, http.StatusOK, code)
		require.NotNil(t, d.Cycle)
		assert.Len(t, d.Cycle.Goals, 1)
		assert.Len(t, d.Cycle.WeeklyTasks, 2)
		assert.Equal(t, 50, d.ExecutionRate)
		assert.Equal(t, []string{today}, d.Cycle.Habits[0].CompletedDates)
		assert.Len(t, d.Cycle.WeeklyScores[0].LeadIndicators, 1)
	})

	t.Run("7. Delete Cycle", func(t *testing.T) {
		_, d := srv.call(t, http.MethodGet, "/api/v1/dashboard", "")
		code, d := srv.call(t, http.MethodDelete, "/api/v1/cycles/"+d.Cycle.ID, "")
		require.Equal(t, http.StatusOK, code)
		assert.Nil(t, d.Cycle)
		assert.Empty(t, d.Cycles)
	})

	t.Run("8. Auth Error", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEndToEnd_Postgres(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Backend = config.BackendPostgres
	cfg.Redis.Enabled = false
	cfg.JWT.Secret = "e2e-secret"

	backend, err := app.OpenBackend(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping: postgres unavailable: %v", err)
	}
	backend.Close()

	srv := startServer(t, cfg)
	code, d := srv.call(t, http.MethodPost, "/api/v1/cycles", `{"name": "PG cycle", "start_date": "2026-01-13"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "2026-04-06", d.Cycle.EndDate)

	code, _ = srv.call(t, http.MethodDelete, "/api/v1/cycles/"+d.Cycle.ID, "")
	assert.Equal(t, http.StatusOK, code)
}
