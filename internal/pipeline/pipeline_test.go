package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *Run) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()

		if p := New(); p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		names := p.StepNames()
		expected := []string{"first", "second", "third"}
		if len(names) != len(expected) {
			t.Fatalf("expected %d steps, got %d", len(expected), len(names))
		}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		order := make([]string, 0)
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *Run) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(log.Discard()))
		p.AddSteps(record("a"), record("b"), record("c"))

		run := NewRun(newScenarioDataset(t), Request{Kind: model.KindCallRate}, nil)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 3 || order[0] != "a" || order[2] != "c" {
			t.Errorf("unexpected order: %v", order)
		}
		if len(run.Performed) != 3 {
			t.Errorf("expected 3 performed steps, got %v", run.Performed)
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Run) error { return errBoom }}
		after := &mockStep{name: "after"}

		p := New(WithLogger(log.Discard()))
		p.AddSteps(failing, after)

		run := NewRun(newScenarioDataset(t), Request{Kind: model.KindCallRate}, nil)
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, errBoom) {
			t.Errorf("expected errBoom, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("step after the failure must not run")
		}
		if len(run.Performed) != 0 {
			t.Errorf("failed step must not be recorded, got %v", run.Performed)
		}
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(log.Discard()))
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		run := NewRun(newScenarioDataset(t), Request{Kind: model.KindCallRate}, nil)
		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step must not run after cancellation")
		}
	})
}

// TestRunWarnf tests that warnings are printed and recorded.
func TestRunWarnf(t *testing.T) {
	t.Parallel()

	w := &recordingWarner{}
	run := NewRun(newScenarioDataset(t), Request{Kind: model.KindCallRate}, w)

	msg := run.Warnf("bad %s", "thing")
	if msg != "bad thing" {
		t.Errorf("unexpected message %q", msg)
	}
	if len(w.messages) != 1 || w.messages[0] != "bad thing" {
		t.Errorf("warning not printed: %v", w.messages)
	}
	if len(run.Report.Warnings) != 1 {
		t.Errorf("warning not recorded: %v", run.Report.Warnings)
	}

	silent := NewRun(newScenarioDataset(t), Request{Kind: model.KindCallRate}, nil)
	if got := silent.Warnf("x=%d", 1); got != "x=1" {
		t.Errorf("expected formatted message without warner, got %q", got)
	}
}
