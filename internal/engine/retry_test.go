package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestRetryDo(t *testing.T) {
	rc := RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2.0}

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		got, err := RetryDo(context.Background(), rc, func() (int, error) {
			calls++
			return 42, nil
		})
		if err != nil || got != 42 || calls != 1 {
			t.Errorf("got %d, err %v, calls %d", got, err, calls)
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		got, err := RetryDo(context.Background(), rc, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, &net.OpError{Op: "dial", Err: errors.New("refused")}
			}
			return 7, nil
		})
		if err != nil || got != 7 || calls != 3 {
			t.Errorf("got %d, err %v, calls %d", got, err, calls)
		}
	})

	t.Run("non-retryable stops immediately", func(t *testing.T) {
		calls := 0
		_, err := RetryDo(context.Background(), rc, func() (int, error) {
			calls++
			return 0, errors.New("parse failure")
		})
		if err == nil || calls != 1 {
			t.Errorf("err %v, calls %d", err, calls)
		}
	})

	t.Run("rate limit is not retried", func(t *testing.T) {
		calls := 0
		_, err := RetryDo(context.Background(), rc, func() (int, error) {
			calls++
			return 0, ErrRateLimited
		})
		if !errors.Is(err, ErrRateLimited) || calls != 1 {
			t.Errorf("err %v, calls %d", err, calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := RetryDo(ctx, rc, func() (int, error) { return 1, nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRetryHTTP(t *testing.T) {
	rc := RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2.0}
	body := func() io.ReadCloser { return io.NopCloser(strings.NewReader("")) }

	t.Run("429 surfaces ErrRateLimited", func(t *testing.T) {
		calls := 0
		_, err := RetryHTTP(context.Background(), rc, func() (*http.Response, error) {
			calls++
			return &http.Response{StatusCode: 429, Body: body()}, nil
		})
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected single call, got %d", calls)
		}
	})

	t.Run("retries 503 then succeeds", func(t *testing.T) {
		calls := 0
		resp, err := RetryHTTP(context.Background(), rc, func() (*http.Response, error) {
			calls++
			if calls == 1 {
				return &http.Response{StatusCode: 503, Body: body()}, nil
			}
			return &http.Response{StatusCode: 200, Body: body()}, nil
		})
		if err != nil || resp.StatusCode != 200 || calls != 2 {
			t.Errorf("resp %v, err %v, calls %d", resp, err, calls)
		}
	})
}
