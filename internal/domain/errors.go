package domain

import (
	"fmt"
	"strings"

	"reclass.dev/pkg/reclass/internal/model"
)

// FileFailure records one file that failed during the walk.
type FileFailure struct {
	Path model.Path
	Err  error
}

// AggregateError collects every per-file failure of a run. The walk never
// stops on a failing file, so one run surfaces all of them at once.
type AggregateError struct {
	Failures []FileFailure
}

func (e *AggregateError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d file(s) failed:", len(e.Failures))

	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.Path, f.Err)
	}

	return b.String()
}

// Unwrap exposes the individual causes to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}
