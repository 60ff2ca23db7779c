package common

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	EnableJitter     bool
	RetryStatusCodes []int
}

// RetryHandler re-issues host requests that failed in transport or were
// throttled. Rate limit hints sent by the host take precedence over the
// exponential schedule, but never exceed MaxDelay.
type RetryHandler struct {
	cfg       RetryHandlerConfig
	retryable map[int]struct{}
	now       func() time.Time
	logger    zerolog.Logger
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(cfg RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	retryable := make(map[int]struct{}, len(cfg.RetryStatusCodes))
	for _, code := range cfg.RetryStatusCodes {
		retryable[code] = struct{}{}
	}
	return &RetryHandler{
		cfg:       cfg,
		retryable: retryable,
		now:       time.Now,
		logger:    logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry reports whether a response with statusCode earns another attempt
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.cfg.MaxRetries {
		return false
	}
	_, ok := rh.retryable[statusCode]
	return ok
}

// CalculateDelay returns BaseDelay doubled per attempt, capped at MaxDelay
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.cfg.BaseDelay
	for i := 0; i < attempt && delay < rh.cfg.MaxDelay; i++ {
		delay *= 2
	}
	if delay > rh.cfg.MaxDelay {
		delay = rh.cfg.MaxDelay
	}

	if rh.cfg.EnableJitter {
		if window := delay.Milliseconds() / 10; window > 0 {
			delay += time.Duration(rand.Int63n(window)) * time.Millisecond
		}
	}
	return delay
}

// isRateLimited detects the exhausted-quota form of 403 that GitHub-style
// hosts send instead of 429.
func isRateLimited(resp *HTTPResponse) bool {
	return resp.StatusCode == http.StatusForbidden && resp.Header("X-RateLimit-Remaining") == "0"
}

// hintedDelay reads Retry-After (seconds) or X-RateLimit-Reset (epoch seconds).
func (rh *RetryHandler) hintedDelay(resp *HTTPResponse) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if v := resp.Header("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second, true
		}
	}
	if v := resp.Header("X-RateLimit-Reset"); v != "" && isRateLimited(resp) {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			wait := time.Unix(epoch, 0).Sub(rh.now())
			if wait < 0 {
				wait = 0
			}
			return wait, true
		}
	}
	return 0, false
}

func (rh *RetryHandler) delayFor(resp *HTTPResponse, attempt int) time.Duration {
	if hint, ok := rh.hintedDelay(resp); ok {
		if hint > rh.cfg.MaxDelay {
			return rh.cfg.MaxDelay
		}
		return hint
	}
	return rh.CalculateDelay(attempt)
}

func (rh *RetryHandler) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry runs doFunc until it yields a non-retryable response or the
// attempts run out. The final response is returned as is; callers classify
// its status code.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := doFunc(req)
		if err == nil && !rh.ShouldRetry(resp.StatusCode, attempt) && !(isRateLimited(resp) && attempt < rh.cfg.MaxRetries) {
			return resp, nil
		}
		if err != nil {
			lastErr = err
			if attempt >= rh.cfg.MaxRetries {
				return nil, WrapError(lastErr, "all retry attempts failed")
			}
		}

		delay := rh.delayFor(resp, attempt)
		event := rh.logger.Warn().
			Str("url", req.URL).
			Int("attempt", attempt+1).
			Int("max_retries", rh.cfg.MaxRetries).
			Dur("delay", delay)
		if err != nil {
			event.Err(err).Msg("Host request failed, retrying")
		} else {
			event.Int("status_code", resp.StatusCode).Msg("Host throttled or unavailable, retrying")
		}

		if err := rh.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}
