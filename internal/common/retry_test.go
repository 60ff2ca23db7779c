package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryHandler_ShouldRetry(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       3,
		BaseDelay:        time.Second,
		MaxDelay:         time.Minute,
		RetryStatusCodes: []int{429, 502},
	}, zerolog.Nop())

	tests := []struct {
		name       string
		statusCode int
		attempt    int
		expected   bool
	}{
		{"Should retry 429 on first attempt", 429, 0, true},
		{"Should retry 502 on first attempt", 502, 0, true},
		{"Should not retry 200", 200, 0, false},
		{"Should not retry 404", 404, 0, false},
		{"Should not retry after max attempts", 429, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, handler.ShouldRetry(tt.statusCode, tt.attempt))
		})
	}
}

func TestRetryHandler_CalculateDelay(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       3,
		BaseDelay:        time.Second,
		MaxDelay:         10 * time.Second,
		RetryStatusCodes: []int{429},
	}, zerolog.Nop())

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{"First attempt", 0, time.Second},
		{"Second attempt", 1, 2 * time.Second},
		{"Third attempt", 2, 4 * time.Second},
		{"Fourth attempt", 3, 8 * time.Second},
		{"Fifth attempt (capped)", 4, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, handler.CalculateDelay(tt.attempt))
		})
	}
}

func TestHTTPClient_RetriesRateLimitedRequests(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("rate limited"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithHTTP2(false).
		WithRetry(RetryHandlerConfig{
			MaxRetries:       3,
			BaseDelay:        5 * time.Millisecond,
			MaxDelay:         20 * time.Millisecond,
			RetryStatusCodes: []int{http.StatusTooManyRequests},
		}).
		Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", string(resp.Body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestHTTPClient_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithHTTP2(false).
		WithRetry(RetryHandlerConfig{
			MaxRetries:       2,
			BaseDelay:        time.Millisecond,
			MaxDelay:         5 * time.Millisecond,
			RetryStatusCodes: []int{http.StatusServiceUnavailable},
		}).
		Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryHandler_StopsOnCancelledContext(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       5,
		BaseDelay:        time.Hour,
		MaxDelay:         time.Hour,
		RetryStatusCodes: []int{429},
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	doFunc := func(*HTTPRequest) (*HTTPResponse, error) {
		calls++
		cancel()
		return &HTTPResponse{StatusCode: 429}, nil
	}

	_, err := handler.DoWithRetry(ctx, doFunc, &HTTPRequest{URL: "https://example.invalid"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryHandler_HonoursRetryAfter(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// An hour of backoff would time the test out; the hint says retry now
	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithHTTP2(false).
		WithRetry(RetryHandlerConfig{
			MaxRetries:       1,
			BaseDelay:        time.Hour,
			MaxDelay:         time.Hour,
			RetryStatusCodes: []int{http.StatusTooManyRequests},
		}).
		Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestRetryHandler_RateLimitResetDelay(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Minute,
	}, zerolog.Nop())
	now := time.Unix(1_700_000_000, 0)
	handler.now = func() time.Time { return now }

	limited := &HTTPResponse{StatusCode: http.StatusForbidden, Headers: http.Header{}}
	limited.Headers.Set("X-RateLimit-Remaining", "0")
	limited.Headers.Set("X-RateLimit-Reset", "1700000030")
	assert.True(t, isRateLimited(limited))
	assert.Equal(t, 30*time.Second, handler.delayFor(limited, 0))

	limited.Headers.Set("X-RateLimit-Reset", "1700003600")
	assert.Equal(t, time.Minute, handler.delayFor(limited, 0), "hint is capped at MaxDelay")

	forbidden := &HTTPResponse{StatusCode: http.StatusForbidden, Headers: http.Header{}}
	assert.False(t, isRateLimited(forbidden))
	assert.Equal(t, time.Millisecond, handler.delayFor(forbidden, 0))
}
