package infra

import (
	"errors"
	"fmt"
)

// ErrMigrationTimeout marks a migration task that did not stop within the
// polling budget. It is distinct from a migration that stopped with a
// non-zero exit code.
var ErrMigrationTimeout = errors.New("timed out waiting for migration task to stop")

// PrerequisiteError reports a missing tool or unusable credentials. It is
// raised before any mutating action, so no rollback is attempted.
type PrerequisiteError struct {
	Missing string
	Err     error
}

func (e *PrerequisiteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prerequisite %s: %v", e.Missing, e.Err)
	}
	return fmt.Sprintf("prerequisite %s not available", e.Missing)
}

func (e *PrerequisiteError) Unwrap() error { return e.Err }

// BuildError reports an image build or push failure. No live infrastructure
// has been mutated at this point, so no rollback is attempted.
type BuildError struct {
	Target string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build image for target %s: %v", e.Target, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// MigrationError reports a one-off migration task that failed or timed out.
type MigrationError struct {
	TaskArn  string
	ExitCode int64
	Err      error
}

func (e *MigrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("migration task %s: %v", e.TaskArn, e.Err)
	}
	return fmt.Sprintf("migration task %s exited with code %d", e.TaskArn, e.ExitCode)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// DeploymentError reports the failure that triggered a rollback, naming the
// step that failed.
type DeploymentError struct {
	Step Step
	Err  error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// RollbackError reports failures during the compensating action. It is
// carried alongside the original DeploymentError, never in place of it.
type RollbackError struct {
	Errs []error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback: %v", errors.Join(e.Errs...))
}

func (e *RollbackError) Unwrap() []error { return e.Errs }
