package execution

import "fmt"

// AssertionFailure is a soft failure: it is recorded and validation continues.
type AssertionFailure struct {
	// Check names what was validated, usually a JSON path.
	Check    string `json:"check"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message"`
}

func (f AssertionFailure) Error() string {
	return f.String()
}

func (f AssertionFailure) String() string {
	if f.Expected == "" && f.Actual == "" {
		return fmt.Sprintf("%s: %s", f.Check, f.Message)
	}
	return fmt.Sprintf("%s: %s (expected %q, actual %q)", f.Check, f.Message, f.Expected, f.Actual)
}
