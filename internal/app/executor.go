package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Staged operations run Validate, Perform, Verify, Archive and Respond in
// order. Nothing is persisted before Verify accepts the performed result, so
// a bad document never leaves the collection half updated.

// ExecutionStep names a stage of a staged operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the stage an operation failed in.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

// Unwrap returns the underlying cause so domain error checks still apply.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs staged operations with per-stage logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor that logs to logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation holds the stages of one staged operation. Nil stages are skipped.
type Operation[I, P, V, O any] struct {
	Name string

	// Validate checks the input before anything else runs.
	Validate func(ctx context.Context, input I) error

	// Perform produces an intermediate result, for example a decoded document.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify accepts or rejects the performed result as a whole.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive persists the verified result.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the result returned to the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op against input and stops at the first failing stage.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
		result    O
	)

	logger := exec.logger.With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step ExecutionStep, err error) (O, error) {
		level := slog.LevelError
		if step == StepValidate || step == StepVerify {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation failed",
			slog.String("step", string(step)),
			slog.Any("error", err),
		)

		return zero, &ExecutionError{Operation: op.Name, Step: step, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, input); err != nil {
			return fail(StepPerform, err)
		}
	}

	if op.Verify != nil {
		var err error
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, input, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	if op.Respond != nil {
		var err error
		if result, err = op.Respond(ctx, input, verified); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// FailedStep returns the stage an ExecutionError occurred in.
func FailedStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
