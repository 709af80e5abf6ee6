// Package fetch performs outbound HTTP calls with a bounded retry budget
// and exponential backoff.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Zachkp/zach-dev/internal/logger"
)

const (
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 3
	// DefaultBaseDelay is the wait before the first retry; it doubles per retry.
	DefaultBaseDelay = time.Second

	maxBodyBytes  = 10 << 20
	errorBodySize = 512
)

// Doer is the transport used by a Fetcher. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one logical outbound call.
type Request struct {
	// Source names the upstream for logs and metrics.
	Source  string
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	// Timeout bounds a single attempt. Zero means no per-attempt bound.
	Timeout time.Duration
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Attempt is reported to the observer after every try.
type Attempt struct {
	Source string
	Number int
	Status int
	Err    error
}

// Fetcher retries failed requests. A zero Fetcher is not usable; use New.
type Fetcher struct {
	client    Doer
	log       logger.Logger
	retries   int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	observe   func(Attempt)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetries sets how many retries follow the first attempt.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithBaseDelay sets the delay before the first retry.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.baseDelay = d
		}
	}
}

// WithSleep replaces the backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) { f.sleep = sleep }
}

// WithObserver registers a callback invoked after every attempt.
func WithObserver(fn func(Attempt)) Option {
	return func(f *Fetcher) { f.observe = fn }
}

// New creates a Fetcher using client as transport.
func New(client Doer, log logger.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		log:       log,
		retries:   DefaultRetries,
		baseDelay: DefaultBaseDelay,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Retries returns the configured retry budget.
func (f *Fetcher) Retries() int { return f.retries }

// Do executes req, retrying transport failures and non-2xx responses.
// Retry n waits baseDelay * 2^n. When the budget is spent the returned
// error wraps ErrSourceUnavailable and the last failure.
func (f *Fetcher) Do(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		resp, err := f.try(ctx, req)
		f.report(req, attempt+1, resp, err)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !f.retryable(ctx, err) {
			return nil, err
		}
		if attempt == f.retries {
			break
		}

		delay := f.baseDelay << attempt
		f.log.Warn("Upstream request failed, retrying",
			logger.String("source", req.Source),
			logger.Int("attempt", attempt+1),
			logger.Duration("backoff", delay),
			logger.Error(err),
		)
		if sleepErr := f.sleep(ctx, delay); sleepErr != nil {
			return nil, fmt.Errorf("%w: %w", sleepErr, lastErr)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrSourceUnavailable, f.retries+1, lastErr)
}

func (f *Fetcher) retryable(ctx context.Context, err error) bool {
	if errors.Is(err, ErrInvalidRequest) {
		return false
	}
	// The caller gave up; retrying cannot help.
	return ctx.Err() == nil
}

func (f *Fetcher) report(req Request, n int, resp *Response, err error) {
	if f.observe == nil {
		return
	}
	a := Attempt{Source: req.Source, Number: n, Err: err}
	if resp != nil {
		a.Status = resp.StatusCode
	}
	var se *StatusError
	if errors.As(err, &se) {
		a.Status = se.StatusCode
	}
	f.observe(a)
}

func (f *Fetcher) try(ctx context.Context, req Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", req.Source, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", req.Source, err)
	}
	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: Truncate(string(data), errorBodySize)}
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
