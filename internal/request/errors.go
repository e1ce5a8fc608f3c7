package request

import "fmt"

// TemplateFileNotFoundError is returned when no body template matches a name.
type TemplateFileNotFoundError struct {
	Name string
	Dir  string
	Err  error
}

func (e *TemplateFileNotFoundError) Error() string {
	return fmt.Sprintf("%s json file not found under %s, either create one or verify the file name", e.Name, e.Dir)
}

func (e *TemplateFileNotFoundError) Unwrap() error {
	return e.Err
}

// TemplateParseError is returned when a rendered template is not a JSON object.
type TemplateParseError struct {
	Name string
	Err  error
}

func (e *TemplateParseError) Error() string {
	return fmt.Sprintf("error while mapping %s json to a body: %v", e.Name, e.Err)
}

func (e *TemplateParseError) Unwrap() error {
	return e.Err
}

// MergeError reports a KEY list with more entries than its VALUE list.
type MergeError struct {
	Step       string
	KeyCount   int
	ValueCount int
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("%s: error while merging %d keys with %d values", e.Step, e.KeyCount, e.ValueCount)
}
