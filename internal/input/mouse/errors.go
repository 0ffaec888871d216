package mouse

import (
	"errors"
	"fmt"
)

// Errors returned while building watchers.
var (
	// ErrInvalidWindow indicates a click or double-click window that is not positive.
	ErrInvalidWindow = errors.New("window must be positive")

	// ErrDuplicateButton indicates two watcher configs for the same button.
	ErrDuplicateButton = errors.New("button already watched")

	// ErrUnknownButton indicates a button name or value that cannot be watched.
	ErrUnknownButton = errors.New("unknown button")

	// ErrUnknownAction indicates an action name that is neither press nor release.
	ErrUnknownAction = errors.New("unknown action")
)

// WatcherError describes a rejected watcher configuration value.
type WatcherError struct {
	// Button is the button the value belongs to, if known.
	Button Button
	// Field names the offending setting.
	Field string
	// Value is the rejected value.
	Value any
	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *WatcherError) Error() string {
	if e.Button != ButtonNone {
		return fmt.Sprintf("watcher %s: %s %v: %v", e.Button, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("watcher: %s %q: %v", e.Field, fmt.Sprint(e.Value), e.Err)
}

// Unwrap returns the underlying error.
func (e *WatcherError) Unwrap() error {
	return e.Err
}
