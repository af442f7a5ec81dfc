package session

import "go.uber.org/multierr"

// cleanupStack collects release functions and runs them in reverse order.
type cleanupStack []func() error

func (s *cleanupStack) push(fn func() error) {
	*s = append(*s, fn)
}

// run calls every function exactly once, newest first, and returns the
// combined errors. The stack is empty afterwards.
func (s *cleanupStack) run() error {
	var errs error
	for i := len(*s) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, (*s)[i]())
	}
	*s = nil
	return errs
}
