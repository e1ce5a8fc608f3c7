package extension

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"apicase/internal/execution"
)

// ErrNoValue is returned by a function that ran but has nothing to insert.
// Resolvers turn it into the unresolved marker instead of failing.
var ErrNoValue = errors.New("extension produced no value")

// Call describes one invocation.
type Call struct {
	Module   string
	Function string
	Arg      string
	HasArg   bool

	// Exec is the context of the test case making the call.
	Exec *execution.Context
}

func (c Call) String() string {
	if c.HasArg {
		return fmt.Sprintf("%s:%s:%s", c.Module, c.Function, c.Arg)
	}
	if c.Function == "" {
		return c.Module
	}
	return fmt.Sprintf("%s:%s", c.Module, c.Function)
}

// Func is a registered function.
type Func func(ctx context.Context, call Call) (string, error)

// NotFoundError is returned when nothing is registered for a call.
type NotFoundError struct {
	Module   string
	Function string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no extension registered for %s:%s", e.Module, e.Function)
}

type key struct {
	module   string
	function string
}

// Registry maps (module, function) to callables.
type Registry struct {
	mu       sync.RWMutex
	funcs    map[key]Func
	fallback Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[key]Func)}
}

// Register adds or replaces a function.
func (r *Registry) Register(module, function string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[key{module, function}] = fn
}

// SetFallback installs a function consulted when no registration matches.
// It should return a *NotFoundError for calls it does not handle.
func (r *Registry) SetFallback(fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// Call invokes the function registered for call.Module and call.Function.
func (r *Registry) Call(ctx context.Context, call Call) (string, error) {
	r.mu.RLock()
	fn, ok := r.funcs[key{call.Module, call.Function}]
	fallback := r.fallback
	r.mu.RUnlock()

	if ok {
		return fn(ctx, call)
	}
	if fallback != nil {
		return fallback(ctx, call)
	}
	return "", &NotFoundError{Module: call.Module, Function: call.Function}
}

// Names lists registered functions as module:function, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		names = append(names, k.module+":"+k.function)
	}
	sort.Strings(names)
	return names
}
