package optid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotLoadable       = errors.New("optid: candidate not loadable")
	ErrNoLocation        = errors.New("optid: candidate has no code location")
	ErrMalformedLocation = errors.New("optid: malformed location")
	ErrUnsupportedScheme = errors.New("optid: unsupported location scheme")
	ErrOwnerUnresolved   = errors.New("optid: owner could not be resolved")
	ErrReservedOwner     = errors.New("optid: owner is reserved for the host")
	ErrInvalidIdentifier = errors.New("optid: invalid identifier")
	ErrNoEvaluator       = errors.New("optid: evaluator not configured")
	ErrAlreadyInstalled  = errors.New("optid: default generator already initialised")
	ErrNoModuleID        = errors.New("optid: module has no identifier")
	ErrNoComponents      = errors.New("optid: module declares no components")
)

// CandidateError records why a candidate frame was dropped during
// resolution. It is logged and traced, never returned to Generate callers.
type CandidateError struct {
	Stage     Stage
	Candidate string
	Err       error
}

func (e *CandidateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("optid: %s candidate=%q: %v", e.Stage, e.Candidate, e.Err)
}

func (e *CandidateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures rule engine metadata alongside the originating error.
type EvaluationError struct {
	Engine    string
	Expr      string
	Candidate string
	Err       error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("optid: %s evaluator %s candidate=%s: %v", e.Engine, describeExpression(e.Expr), e.Candidate, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "optid:") {
		return err
	}
	return fmt.Errorf("optid: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, candidate string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Candidate == "" {
			evalErr.Candidate = candidate
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:    engine,
		Expr:      expr,
		Candidate: candidate,
		Err:       err,
	}
}
