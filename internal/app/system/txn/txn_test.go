package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rowphant/headless-wp/internal/app/system/txn"
	"go.uber.org/zap"
)

func TestBestEffort_AllStepsRun(t *testing.T) {
	var ran []string
	err := txn.BestEffort(context.Background(), zap.NewNop(),
		txn.Step{Name: "first", Do: func(ctx context.Context) error {
			ran = append(ran, "first")
			return nil
		}},
		txn.Step{Name: "second", Do: func(ctx context.Context) error {
			ran = append(ran, "second")
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("BestEffort() = %v, want nil", err)
	}
	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Fatalf("ran = %v, want [first second]", ran)
	}
}

func TestBestEffort_UndoesInReverseOrder(t *testing.T) {
	boom := errors.New("boom")
	var undone []string

	err := txn.BestEffort(context.Background(), zap.NewNop(),
		txn.Step{
			Name: "a",
			Do:   func(ctx context.Context) error { return nil },
			Undo: func(ctx context.Context) error { undone = append(undone, "a"); return nil },
		},
		txn.Step{
			Name: "b",
			Do:   func(ctx context.Context) error { return nil },
			Undo: func(ctx context.Context) error { undone = append(undone, "b"); return nil },
		},
		txn.Step{
			Name: "c",
			Do:   func(ctx context.Context) error { return boom },
		},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("BestEffort() = %v, want wrapped %v", err, boom)
	}
	if txn.IsPartial(err) {
		t.Fatal("IsPartial() = true for a fully compensated failure")
	}
	if len(undone) != 2 || undone[0] != "b" || undone[1] != "a" {
		t.Fatalf("undone = %v, want [b a]", undone)
	}
}

func TestBestEffort_NilUndoIsSkipped(t *testing.T) {
	boom := errors.New("boom")
	var undone []string

	err := txn.BestEffort(context.Background(), zap.NewNop(),
		txn.Step{
			Name: "tracked",
			Do:   func(ctx context.Context) error { return nil },
			Undo: func(ctx context.Context) error { undone = append(undone, "tracked"); return nil },
		},
		txn.Step{
			Name: "cleanup",
			Do:   func(ctx context.Context) error { return nil },
		},
		txn.Step{
			Name: "failing",
			Do:   func(ctx context.Context) error { return boom },
		},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("BestEffort() = %v, want wrapped %v", err, boom)
	}
	if len(undone) != 1 || undone[0] != "tracked" {
		t.Fatalf("undone = %v, want [tracked]", undone)
	}
}

func TestBestEffort_CompensationFailure(t *testing.T) {
	doErr := errors.New("do failed")
	undoErr := errors.New("undo failed")

	err := txn.BestEffort(context.Background(), zap.NewNop(),
		txn.Step{
			Name: "stuck",
			Do:   func(ctx context.Context) error { return nil },
			Undo: func(ctx context.Context) error { return undoErr },
		},
		txn.Step{
			Name: "failing",
			Do:   func(ctx context.Context) error { return doErr },
		},
	)
	if err == nil {
		t.Fatal("BestEffort() = nil, want CompensationError")
	}
	if !txn.IsPartial(err) {
		t.Fatalf("IsPartial(%v) = false, want true", err)
	}

	var ce *txn.CompensationError
	if !errors.As(err, &ce) {
		t.Fatalf("errors.As CompensationError failed on %v", err)
	}
	if ce.Failed != "failing" || ce.Stuck != "stuck" {
		t.Errorf("CompensationError = {Failed:%q Stuck:%q}, want {failing stuck}", ce.Failed, ce.Stuck)
	}
	if !errors.Is(err, doErr) {
		t.Errorf("Unwrap chain does not reach the Do failure: %v", err)
	}
}

func TestIsPartial_OrdinaryError(t *testing.T) {
	if txn.IsPartial(errors.New("plain")) {
		t.Error("IsPartial(plain error) = true, want false")
	}
	if txn.IsPartial(nil) {
		t.Error("IsPartial(nil) = true, want false")
	}
}
