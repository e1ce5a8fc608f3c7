package execution

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Context is the variable store and assertion accumulator of one test case run.
type Context struct {
	// ID identifies the run in logs and reports.
	ID string
	// Name is the test case that created the context.
	Name string

	mu           sync.RWMutex
	variables    map[string]any
	lastResponse *Response
	failures     []AssertionFailure
	notes        []string
}

// New creates an empty context for the named test case.
func New(name string) *Context {
	return &Context{
		ID:        uuid.NewString(),
		Name:      name,
		variables: make(map[string]any),
	}
}

// Store upserts a global variable.
func (c *Context) Store(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables[name] = value
}

// Lookup returns a global variable and whether it exists.
func (c *Context) Lookup(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.variables[name]
	return v, ok
}

// Variables returns a copy of all global variables.
func (c *Context) Variables() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any, len(c.variables))
	for k, v := range c.variables {
		out[k] = v
	}
	return out
}

// SetLastResponse replaces the last response snapshot.
func (c *Context) SetLastResponse(r *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResponse = r
}

// LastResponse returns the most recent response, or nil before any request.
func (c *Context) LastResponse() *Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastResponse
}

// AssertEqual records a failure when actual and expected differ.
func (c *Context) AssertEqual(check, actual, expected string) bool {
	if actual == expected {
		return true
	}
	c.record(AssertionFailure{
		Check:    check,
		Expected: expected,
		Actual:   actual,
		Message:  "value mismatch",
	})
	return false
}

// AssertTrue records message as a failure when cond is false.
func (c *Context) AssertTrue(check string, cond bool, message string) bool {
	if !cond {
		c.record(AssertionFailure{Check: check, Message: message})
	}
	return cond
}

// Failf records a failure unconditionally.
func (c *Context) Failf(check, messageFmt string, args ...interface{}) {
	c.record(AssertionFailure{Check: check, Message: fmt.Sprintf(messageFmt, args...)})
}

func (c *Context) record(f AssertionFailure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, f)
}

// Failures returns a copy of the recorded soft failures.
func (c *Context) Failures() []AssertionFailure {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]AssertionFailure(nil), c.failures...)
}

// Notef records a diagnostic that is reported but is not a failure.
func (c *Context) Notef(messageFmt string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, fmt.Sprintf(messageFmt, args...))
}

// Notes returns a copy of the recorded diagnostics.
func (c *Context) Notes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.notes...)
}

// Clear drops every variable, the last response, failures and notes.
// The runner calls it when a test case finishes.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables = make(map[string]any)
	c.lastResponse = nil
	c.failures = nil
	c.notes = nil
}
