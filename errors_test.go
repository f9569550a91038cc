package optid

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "name == missing", "com.foo.Thing", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "name == missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Candidate != "com.foo.Thing" {
		t.Fatalf("expected candidate metadata, got %q", evalErr.Candidate)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "com.bar.Other", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Candidate != "com.bar.Other" {
		t.Fatalf("candidate should be filled, got %q", existing.Candidate)
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("optid: already wrapped")
	if got := wrapEvaluatorError("cel", prefixed); got != prefixed {
		t.Fatalf("expected prefixed error returned as is, got %v", got)
	}
	got := wrapEvaluatorError("cel", errors.New("env failure"))
	if got.Error() != "optid: cel evaluator: env failure" {
		t.Fatalf("unexpected message %q", got.Error())
	}
	if wrapEvaluatorError("cel", nil) != nil || wrapEvaluationError("cel", "", "", nil) != nil {
		t.Fatalf("expected nil errors to stay nil")
	}
}

func TestCandidateError(t *testing.T) {
	err := &CandidateError{Stage: StageLocation, Candidate: "com.foo.Thing", Err: ErrUnsupportedScheme}
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected candidate error to unwrap")
	}
	if !strings.Contains(err.Error(), `location candidate="com.foo.Thing"`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
	var nilErr *CandidateError
	if nilErr.Error() != "<nil>" || nilErr.Unwrap() != nil {
		t.Fatalf("expected nil-safe candidate error")
	}
}
