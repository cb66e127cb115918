package helpers

import (
	"errors"

	"github.com/ztrue/tracerr"
)

// Wrap attaches a stack trace to err. Errors that already carry one are
// returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var traced tracerr.Error
	if errors.As(err, &traced) {
		return err
	}
	return tracerr.Wrap(err)
}

func Errorf(format string, args ...interface{}) error {
	return tracerr.Errorf(format, args...)
}

// Trace renders err with the stack frames recorded by Wrap/Errorf.
func Trace(err error) string {
	if err == nil {
		return ""
	}
	return tracerr.Sprint(Wrap(err))
}

// Recovered turns a recovered panic value into a traced error.
func Recovered(r any) error {
	if err, ok := r.(error); ok {
		return Errorf("panic: %w", err)
	}
	return Errorf("panic: %v", r)
}
