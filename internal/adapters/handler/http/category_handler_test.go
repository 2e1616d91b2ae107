package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/clario/internal/core/domain"
)

func TestCategoryHandler_CRUD(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/categories", "user-1", nil)
	requireStatus(t, http.StatusOK, w)
	initial := decode[[]domain.Category](t, w)
	require.Len(t, initial, 1)
	assert.True(t, initial[0].IsDefault)
	defaultID := initial[0].ID

	w = f.do(http.MethodPost, "/categories", "user-1", map[string]any{"name": "Deep Work", "color": "#112233"})
	requireStatus(t, http.StatusCreated, w)
	created := decode[domain.Category](t, w)
	assert.Equal(t, "Deep Work", created.Name)
	assert.Equal(t, "#112233", created.Color)

	t.Run("duplicate names are rejected case-insensitively", func(t *testing.T) {
		w := f.do(http.MethodPost, "/categories", "user-1", map[string]any{"name": "deep work"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad color is rejected", func(t *testing.T) {
		w := f.do(http.MethodPost, "/categories", "user-1", map[string]any{"name": "Reading", "color": "red"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing name fails binding", func(t *testing.T) {
		w := f.do(http.MethodPost, "/categories", "user-1", map[string]any{"color": "#000000"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get and rename", func(t *testing.T) {
		w := f.do(http.MethodGet, "/categories/"+created.ID, "user-1", nil)
		requireStatus(t, http.StatusOK, w)

		w = f.do(http.MethodPut, "/categories/"+created.ID, "user-1", map[string]any{"name": "Focus Block"})
		requireStatus(t, http.StatusOK, w)
		assert.Equal(t, "Focus Block", decode[domain.Category](t, w).Name)
	})

	t.Run("another user cannot see it", func(t *testing.T) {
		w := f.do(http.MethodGet, "/categories/"+created.ID, "user-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = f.do(http.MethodDelete, "/categories/"+created.ID, "user-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("default category cannot be deleted", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/categories/"+defaultID, "user-1", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/categories/"+created.ID, "user-1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(http.MethodGet, "/categories/"+created.ID, "user-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCategoryHandler_Limit(t *testing.T) {
	f := newAPIFixture(t)

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
		"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x"}
	for _, n := range names {
		requireStatus(t, http.StatusCreated, f.do(http.MethodPost, "/categories", "user-1", map[string]any{"name": "cat-" + n}))
	}

	w := f.do(http.MethodPost, "/categories", "user-1", map[string]any{"name": "one-too-many"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
