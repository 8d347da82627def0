package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestTracing_PassesRequestThrough(t *testing.T) {
	var sawSpanContext bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// With the default no-op tracer the span is still injected
		// into the request context.
		sawSpanContext = trace.SpanFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	})

	r := chi.NewRouter()
	r.Use(Tracing("test-service"))
	r.Post("/api/v1/auctions", handler)

	req := httptest.NewRequest("POST", "/api/v1/auctions", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "created", w.Body.String())
	assert.True(t, sawSpanContext)
}

func TestTracing_WithoutRouter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Tracing("test-service")(handler)

	req := httptest.NewRequest("GET", "/anything", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
