package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
)

func TestRenderStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderStatus(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusUnprocessableEntity, templ.Raw("nope"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "nope", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestRenderFailureIsServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return errors.New("boom")
	})
	Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), failing)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
