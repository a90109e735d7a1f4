package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware_GeneralTraffic(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 1)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := mw.Handler(nextHandler)

	// Burst of 100 covers a handful of log reads without throttling.
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("GET", "/api/v1/deletions/log", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Request %d failed with status %d", i, rec.Code)
		}
	}
}

func TestRateLimitMiddleware_SweepBucket(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 1)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First manual sweep run passes.
	req1 := httptest.NewRequest("POST", "/api/v1/sweep/run", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	// With a burst of 1 the immediate second run is rejected.
	req2 := httptest.NewRequest("POST", "/api/v1/sweep/run", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_Defaults(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0)
	assert.Equal(t, 100, mw.generalRPM)
	assert.Equal(t, 5, mw.sweepRPM)
}
