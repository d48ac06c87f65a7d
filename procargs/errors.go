package procargs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform 不支持的操作系统
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrIntrospection 读取进程参数失败
	ErrIntrospection = errors.New("argument introspection failed")
)

// Error records a failed read together with the OS error behind it.
// errors.Is matches both the Kind and the wrapped OS error.
type Error struct {
	Kind error
	Op   string
	Pid  int
	Err  error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: pid %d: %s", e.Kind, e.Pid, e.Op)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes Kind and Err to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func introspectionError(pid int, op string, err error) error {
	return &Error{Kind: ErrIntrospection, Op: op, Pid: pid, Err: err}
}
