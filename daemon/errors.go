package daemon

import (
	"errors"
	"fmt"
)

// ExitForkFailure is the exit status of a process that could not fork.
const ExitForkFailure = 255

// Error kinds
var (
	// ErrAlreadyDaemonized daemonize called twice
	ErrAlreadyDaemonized = errors.New("already running as a daemon")
	// ErrFork fork failed, the process exits
	ErrFork = errors.New("fork failed")
	// ErrExec exec failed in the child, the parent carries on
	ErrExec = errors.New("exec failed")
	// ErrPidFile pid file could not be written, never fatal
	ErrPidFile = errors.New("pid file write failed")
)

// Error 带类型的错误
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap lets errors.Is match both the kind and the OS error.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
