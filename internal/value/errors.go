package value

import "fmt"

// ValueResolutionError wraps a failed extension call or lookup with the step it came from.
type ValueResolutionError struct {
	Step  string
	Value string
	Err   error
}

func (e *ValueResolutionError) Error() string {
	return fmt.Sprintf("%s: error while resolving value %q: %v", e.Step, e.Value, e.Err)
}

func (e *ValueResolutionError) Unwrap() error {
	return e.Err
}
