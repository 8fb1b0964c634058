package model

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid input: missing or malformed arguments, or an
// unreadable search file. It is always fatal and is raised before any
// network activity.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError for the named field.
func NewConfigError(field, format string, args ...any) error {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// TransientItemError reports the failure of one candidate or work item, such
// as a private video or a timed out request. Batch runs skip the item;
// single runs treat it as fatal.
type TransientItemError struct {
	VideoRef string
	Op       string
	Err      error
}

func (e *TransientItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.VideoRef, e.Err)
}

func (e *TransientItemError) Unwrap() error { return e.Err }

// NewTransientItemError wraps err as a failure of one item.
func NewTransientItemError(op, ref string, err error) error {
	return &TransientItemError{VideoRef: ref, Op: op, Err: err}
}

// FatalRunError reports a condition that makes the whole run pointless,
// such as a destination directory that cannot be created.
type FatalRunError struct {
	Err error
}

func (e *FatalRunError) Error() string {
	return e.Err.Error()
}

func (e *FatalRunError) Unwrap() error { return e.Err }

// NewFatalRunError wraps err as a run-wide failure.
func NewFatalRunError(format string, args ...any) error {
	return &FatalRunError{Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err must end the run regardless of mode.
func IsFatal(err error) bool {
	var cfg *ConfigError
	var fatal *FatalRunError
	return errors.As(err, &cfg) || errors.As(err, &fatal)
}
