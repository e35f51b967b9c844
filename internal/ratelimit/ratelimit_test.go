package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Mock store for testing
type mockStore struct {
	counts map[string]int64
	err    error
}

func newMockStore() *mockStore {
	return &mockStore{counts: make(map[string]int64)}
}

func (m *mockStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func setupRouter(limiter *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLimiter_AllowsWithinBudget(t *testing.T) {
	limiter := NewWithBudget(newMockStore(), 3, time.Minute)
	r := setupRouter(limiter)

	for i := 0; i < 3; i++ {
		if w := doRequest(r); w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestLimiter_RejectsOverBudget(t *testing.T) {
	limiter := NewWithBudget(newMockStore(), 3, time.Minute)
	r := setupRouter(limiter)

	for i := 0; i < 3; i++ {
		doRequest(r)
	}

	w := doRequest(r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 over budget, got %d", w.Code)
	}
}

func TestLimiter_FailsOpenWhenStoreUnavailable(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection refused")
	limiter := NewWithBudget(store, 1, time.Minute)
	r := setupRouter(limiter)

	for i := 0; i < 5; i++ {
		if w := doRequest(r); w.Code != http.StatusOK {
			t.Fatalf("Expected fail-open 200, got %d", w.Code)
		}
	}
}

func TestLimiter_SeparateBudgetPerClient(t *testing.T) {
	limiter := NewWithBudget(newMockStore(), 1, time.Minute)
	r := setupRouter(limiter)

	first := httptest.NewRequest(http.MethodGet, "/test", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, first)

	second := httptest.NewRequest(http.MethodGet, "/test", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, second)

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Errorf("Different clients must have separate budgets: %d, %d", w1.Code, w2.Code)
	}
}
