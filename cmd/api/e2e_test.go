package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/clario/internal/config"
)

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) call(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) json(w *httptest.ResponseRecorder, out any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func testConfig(t *testing.T, storage string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Storage = storage
	cfg.Redis.Enabled = false
	cfg.JWT.Secret = "e2e-secret"
	require.NoError(t, cfg.Validate())
	return cfg
}

// runUserJourney drives one account through registration, a focus session,
// statistics and a habit check-in using only the public HTTP surface.
func runUserJourney(t *testing.T, router *gin.Engine) {
	c := &client{t: t, router: router}
	email := "e2e-" + uuid.NewString()[:8] + "@clario.app"

	t.Run("1. Protected routes need a token", func(t *testing.T) {
		w := c.call(http.MethodGet, "/api/v1/timer", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("2. Register and login", func(t *testing.T) {
		w := c.call(http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    email,
			"password": "CorrectHorseBattery",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = c.call(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    email,
			"password": "CorrectHorseBattery",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Token string `json:"token"`
		}
		c.json(w, &resp)
		require.NotEmpty(t, resp.Token)
		c.token = resp.Token
	})

	t.Run("3. Focus session", func(t *testing.T) {
		require.NotEmpty(t, c.token, "login step failed")

		w := c.call(http.MethodPost, "/api/v1/timer/start", map[string]any{"kind": "focus"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = c.call(http.MethodPost, "/api/v1/timer/complete", map[string]any{
			"actual_seconds": 25 * 60,
			"is_completed":   true,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result struct {
			NextKind string `json:"next_kind"`
			Stats    struct {
				Total int `json:"total_completed_focus_sessions"`
			} `json:"stats"`
		}
		c.json(w, &result)
		assert.Equal(t, "short_break", result.NextKind)
		assert.Equal(t, 1, result.Stats.Total)
	})

	t.Run("4. Stats reflect the session", func(t *testing.T) {
		w := c.call(http.MethodGet, "/api/v1/stats/range?range=day", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var totals struct {
			FocusMinutes int `json:"focus_minutes"`
		}
		c.json(w, &totals)
		assert.Equal(t, 25, totals.FocusMinutes)

		w = c.call(http.MethodGet, "/api/v1/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_minutes":25`)
	})

	t.Run("5. Habit check-in", func(t *testing.T) {
		w := c.call(http.MethodPost, "/api/v1/habits", map[string]any{"name": "Morning Run"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var habit struct {
			ID string `json:"id"`
		}
		c.json(w, &habit)
		require.NotEmpty(t, habit.ID)

		w = c.call(http.MethodPost, "/api/v1/habits/"+habit.ID+"/logs", map[string]any{})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var toggled struct {
			CurrentStreak int `json:"current_streak"`
		}
		c.json(w, &toggled)
		assert.Equal(t, 1, toggled.CurrentStreak)

		w = c.call(http.MethodGet, "/api/v1/habits", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Morning Run")

		w = c.call(http.MethodDelete, "/api/v1/habits/"+habit.ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestEndToEnd_InMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := newApp(context.Background(), testConfig(t, config.StorageMemory), time.Now())
	require.NoError(t, err)
	defer a.Close()

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"in-memory"`)
		assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
	})

	t.Run("swagger", func(t *testing.T) {
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Clario API")
	})

	runUserJourney(t, a.router)
}

func TestEndToEnd_Postgres(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t, config.StoragePostgres)
	if loaded, err := config.Load(); err == nil {
		cfg.DB = loaded.DB
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := newApp(ctx, cfg, time.Now())
	if err != nil {
		t.Skipf("Skipping Postgres end-to-end test: %v", err)
	}
	defer a.Close()

	runUserJourney(t, a.router)
}
