package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-dev/internal/fetch"
	"github.com/Zachkp/zach-dev/internal/logger"
)

// flakyServer fails the first n requests with status, then answers 200.
func flakyServer(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failures {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"try later"}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDo_SucceedsAfterTwoFailures(t *testing.T) {
	srv, calls := flakyServer(t, 2, http.StatusServiceUnavailable)
	var delays []time.Duration
	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithSleep(recordingSleep(&delays)))

	resp, err := f.Do(context.Background(), fetch.Request{Source: "test", URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"items":[]}`, string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusInternalServerError)
	var delays []time.Duration
	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithSleep(recordingSleep(&delays)))

	_, err := f.Do(context.Background(), fetch.Request{Source: "test", URL: srv.URL})
	require.Error(t, err)

	assert.ErrorIs(t, err, fetch.ErrSourceUnavailable)
	status, ok := fetch.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, int32(fetch.DefaultRetries+1), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)
}

func TestDo_ZeroRetriesMakesOneCall(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusBadGateway)
	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithRetries(0))

	_, err := f.Do(context.Background(), fetch.Request{URL: srv.URL})
	require.ErrorIs(t, err, fetch.ErrSourceUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_RealBackoffTiming(t *testing.T) {
	srv, calls := flakyServer(t, 2, http.StatusServiceUnavailable)
	base := 20 * time.Millisecond
	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithBaseDelay(base))

	start := time.Now()
	_, err := f.Do(context.Background(), fetch.Request{URL: srv.URL})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	// base + 2*base of backoff, with generous slack for slow machines.
	assert.GreaterOrEqual(t, elapsed, 3*base)
	assert.Less(t, elapsed, 3*base+2*time.Second)
}

func TestDo_InvalidRequestIsNotRetried(t *testing.T) {
	var delays []time.Duration
	f := fetch.New(http.DefaultClient, logger.NewNop(), fetch.WithSleep(recordingSleep(&delays)))

	_, err := f.Do(context.Background(), fetch.Request{Method: "BAD METHOD", URL: "http://example.invalid"})
	require.Error(t, err)

	assert.ErrorIs(t, err, fetch.ErrInvalidRequest)
	assert.NotErrorIs(t, err, fetch.ErrSourceUnavailable)
	assert.Empty(t, delays)
}

func TestDo_AttemptTimeoutCountsAsOneAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	var delays []time.Duration
	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithSleep(recordingSleep(&delays)))

	resp, err := f.Do(context.Background(), fetch.Request{URL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, delays, 1)
}

func TestDo_CancelledContextStops(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusServiceUnavailable)
	ctx, cancel := context.WithCancel(context.Background())
	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithSleep(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}))

	_, err := f.Do(ctx, fetch.Request{URL: srv.URL})
	require.Error(t, err)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_SendsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	f := fetch.New(srv.Client(), logger.NewNop())
	resp, err := f.Do(context.Background(), fetch.Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Header: http.Header{"Authorization": {"Bearer token"}},
		Body:   []byte(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestDo_ObserverSeesEveryAttempt(t *testing.T) {
	srv, _ := flakyServer(t, 1, http.StatusTooManyRequests)
	var attempts []fetch.Attempt
	f := fetch.New(srv.Client(), logger.NewNop(),
		fetch.WithSleep(recordingSleep(new([]time.Duration))),
		fetch.WithObserver(func(a fetch.Attempt) { attempts = append(attempts, a) }),
	)

	_, err := f.Do(context.Background(), fetch.Request{Source: "youtube", URL: srv.URL})
	require.NoError(t, err)

	require.Len(t, attempts, 2)
	assert.Equal(t, http.StatusTooManyRequests, attempts[0].Status)
	assert.Error(t, attempts[0].Err)
	assert.Equal(t, 2, attempts[1].Number)
	assert.Equal(t, http.StatusOK, attempts[1].Status)
	assert.Equal(t, "youtube", attempts[1].Source)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", fetch.Truncate("abc", 5))
	assert.Equal(t, "ab...", fetch.Truncate("abcdef", 2))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a...", fetch.Truncate("aébc", 2))
	assert.True(t, utf8.ValidString(fetch.Truncate("ééé", 3)))
}
