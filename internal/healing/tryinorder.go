// Package healing holds the two resilience primitives the harness composes:
// ordered fallback across alternative strategies (TryInOrder) and bounded
// retry of a single flaky operation (Retry). They are deliberately separate;
// callers decide whether and how to stack them.
package healing

import (
	"context"
	"fmt"
	"strings"

	"ui-harness/pkg/apperr"

	"go.uber.org/multierr"
)

// Candidate is one strategy in a fallback chain. Run must perform the full
// intended action or nothing: a failing candidate may not leave partial side
// effects behind for the next candidate to trip over.
type Candidate[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// AttemptFailure records why one candidate was rejected.
type AttemptFailure struct {
	Name string
	Err  error
}

// ChainError aggregates every candidate failure. Collapsing to only the last
// failure would hide which locators are broken, so all of them are kept.
type ChainError struct {
	Failures []AttemptFailure
}

func (e *ChainError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "all %d candidates failed:", len(e.Failures))

	for i, f := range e.Failures {
		fmt.Fprintf(&b, " [%d] %s: %v;", i+1, f.Name, f.Err)
	}

	return strings.TrimSuffix(b.String(), ";")
}

func (e *ChainError) Unwrap() error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return multierr.Combine(errs...)
}

// TryInOrder attempts candidates strictly in order and commits the first one
// whose Run succeeds; later candidates are never invoked. When every
// candidate fails the error enumerates each attempt and its reason.
func TryInOrder[T any](ctx context.Context, candidates []Candidate[T]) (T, error) {
	const op = "healing.TryInOrder"

	var zero T

	if len(candidates) == 0 {
		return zero, apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "no_candidates")
	}

	failures := make([]AttemptFailure, 0, len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
				apperr.MetaReason: "context_cancelled",
			})
		}

		result, err := candidate.Run(ctx)
		if err == nil {
			return result, nil
		}

		failures = append(failures, AttemptFailure{Name: candidate.Name, Err: err})
	}

	return zero, apperr.Wrap(op, apperr.CodeAllCandidatesFailed, &ChainError{Failures: failures}, map[string]any{
		apperr.MetaAttempts: len(failures),
		apperr.MetaStage:    apperr.StageHealing,
	})
}
