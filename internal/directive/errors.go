package directive

import "fmt"

// DirectiveParseError reports index-aligned rows of different lengths.
type DirectiveParseError struct {
	Keyword    Keyword
	Other      Keyword
	KeyCount   int
	ValueCount int
}

func (e *DirectiveParseError) Error() string {
	return fmt.Sprintf("%s has %d entries but %s has %d", e.Keyword, e.KeyCount, e.Other, e.ValueCount)
}

// DependencyError wraps the failure of a DEPENDANT_TEST_CASE run.
type DependencyError struct {
	Name string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependant test case %s: %v", e.Name, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
