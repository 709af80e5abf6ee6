package aggregate

import (
	"errors"

	"github.com/Zachkp/zach-dev/internal/source"
)

// Outcome says why an endpoint answered the way it did. It never changes
// the wire payload: a failed read still answers with an empty array.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeEmpty        Outcome = "empty"
	OutcomeFailed       Outcome = "failed"
	OutcomeUnconfigured Outcome = "unconfigured"
)

// Served reports whether the items can be shown and cached.
func (o Outcome) Served() bool {
	return o == OutcomeOK || o == OutcomeEmpty
}

// Result is one source load.
type Result[T any] struct {
	Items   []T
	Outcome Outcome
	Err     error
	Cached  bool
}

func classify[T any](items []T, err error) Result[T] {
	switch {
	case errors.Is(err, source.ErrNotConfigured):
		return Result[T]{Items: []T{}, Outcome: OutcomeUnconfigured, Err: err}
	case err != nil:
		return Result[T]{Items: []T{}, Outcome: OutcomeFailed, Err: err}
	case len(items) == 0:
		return Result[T]{Items: []T{}, Outcome: OutcomeEmpty}
	default:
		return Result[T]{Items: items, Outcome: OutcomeOK}
	}
}
