package http_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/clario-app/clario/internal/adapters/handler/http"
	"github.com/clario-app/clario/internal/adapters/handler/http/middleware"
	"github.com/clario-app/clario/internal/adapters/repository"
	"github.com/clario-app/clario/internal/core/services"
)

var fixtureNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

type apiFixture struct {
	router *gin.Engine
}

// newAPIFixture mounts every protected handler on in-memory storage. The
// caller identity comes from X-User-ID instead of a bearer token.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return fixtureNow }

	profiles := repository.NewInMemoryProfileRepository()
	records := repository.NewInMemorySessionRecordRepository()

	categorySvc := services.NewCategoryService(repository.NewInMemoryCategoryRepository())

	timerSvc := services.NewTimerService(profiles, records, categorySvc, time.UTC)
	timerSvc.SetClock(clock)

	statsSvc := services.NewStatsService(profiles, records, time.UTC)
	statsSvc.SetClock(clock)

	habitSvc := services.NewHabitService(repository.NewInMemoryHabitRepository(), nil, time.UTC)
	habitSvc.SetClock(clock)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			c.Set(middleware.ContextUserIDKey, id)
		}
		c.Next()
	})

	adapterHTTP.NewTimerHandler(timerSvc).RegisterRoutes(api)
	adapterHTTP.NewCategoryHandler(categorySvc).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(statsSvc).RegisterRoutes(api)
	adapterHTTP.NewHabitHandler(habitSvc).RegisterRoutes(api)

	return &apiFixture{router: r}
}

func (f *apiFixture) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
