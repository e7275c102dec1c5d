// Package txn runs multi-document write sequences with best-effort
// compensation. MongoDB standalone servers have no multi-document
// transactions, so paired writes (a group document and its mirrored user
// document) are committed step by step; when a later step fails, the
// compensations of the completed steps are run in reverse order.
//
// Compensation can itself fail. That case is surfaced as a
// CompensationError so callers can report partial completion instead of
// pretending the sequence either fully happened or fully did not.
package txn

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Step is one write in a sequence. Undo reverses Do; it may be nil for
// steps that need no compensation (for example idempotent cleanups).
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// CompensationError reports that a step failed and at least one
// compensation for an earlier step also failed, leaving the sequence
// partially applied.
type CompensationError struct {
	Failed    string // step whose Do failed
	Stuck     string // step whose Undo failed
	Cause     error  // the Do failure
	UndoCause error  // the Undo failure
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("step %q failed (%v) and undo of %q failed (%v)", e.Failed, e.Cause, e.Stuck, e.UndoCause)
}

func (e *CompensationError) Unwrap() error { return e.Cause }

// IsPartial reports whether err left a write sequence partially applied.
func IsPartial(err error) bool {
	var ce *CompensationError
	return errors.As(err, &ce)
}

// BestEffort runs the steps in order. On failure it undoes the completed
// steps in reverse order and returns the original error, or a
// CompensationError when an undo fails too.
func BestEffort(ctx context.Context, log *zap.Logger, steps ...Step) error {
	for i, st := range steps {
		err := st.Do(ctx)
		if err == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			prev := steps[j]
			if prev.Undo == nil {
				continue
			}
			if undoErr := prev.Undo(ctx); undoErr != nil {
				log.Error("compensation failed",
					zap.String("failed_step", st.Name),
					zap.String("stuck_step", prev.Name),
					zap.Error(undoErr),
				)
				return &CompensationError{
					Failed:    st.Name,
					Stuck:     prev.Name,
					Cause:     err,
					UndoCause: undoErr,
				}
			}
		}
		return fmt.Errorf("step %q: %w", st.Name, err)
	}
	return nil
}
