// Package source holds the clients for the upstream content services.
// Each client performs its calls through a retrying fetcher and returns
// the raw upstream records for the content package to normalize.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Zachkp/zach-dev/internal/fetch"
)

var (
	// ErrNotConfigured means a required credential or identifier is missing.
	// Clients return it before any network call.
	ErrNotConfigured = errors.New("source not configured")
	// ErrMalformedResponse means a 2xx body did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// Fetcher performs one logical upstream call with retries.
type Fetcher interface {
	Do(ctx context.Context, req fetch.Request) (*fetch.Response, error)
}

func decode(source string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, source, err)
	}
	return nil
}
