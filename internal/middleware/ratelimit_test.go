package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if ok, _ := rl.allow("10.0.0.1", now); !ok {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if ok, retryAfter := rl.allow("10.0.0.1", now); ok || retryAfter < 1 {
		t.Errorf("Fourth request should be rejected with a retry hint, got ok=%v retryAfter=%d", ok, retryAfter)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	start := time.Now()
	rl.allow("10.0.0.2", start)
	if ok, _ := rl.allow("10.0.0.2", start); ok {
		t.Fatal("Second request inside the window should be rejected")
	}
	if ok, _ := rl.allow("10.0.0.2", start.Add(2*time.Minute)); !ok {
		t.Error("Request after the window lapsed should be allowed")
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	now := time.Now()
	rl.allow("10.0.0.3", now)
	if ok, _ := rl.allow("10.0.0.4", now); !ok {
		t.Error("A different IP must not inherit another client's count")
	}
}

func TestRateLimiter_MiddlewareRejection(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
	req.RemoteAddr = "10.0.0.5"
	req.Header.Set("X-Request-ID", "req-42")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("First request status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}

	var body struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad error body: %v", err)
	}
	if body.Error.Code != "RATE_LIMITED" {
		t.Errorf("Code = %q", body.Error.Code)
	}
	if body.Error.RequestID != "req-42" {
		t.Errorf("RequestID = %q", body.Error.RequestID)
	}
}

func TestRateLimiter_StopDoesNotBlock(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		rl.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
