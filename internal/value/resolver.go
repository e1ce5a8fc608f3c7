package value

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"apicase/internal/execution"
	"apicase/internal/extension"
	"apicase/internal/jsonpath"
	"apicase/pkg/logging"
)

// Invoker calls extension functions. *extension.Registry implements it.
type Invoker interface {
	Call(ctx context.Context, call extension.Call) (string, error)
}

// Resolver expands raw cell values against an execution context.
type Resolver struct {
	extensions Invoker
}

// NewResolver creates a Resolver that dispatches PreFlow and Custom calls to ext.
func NewResolver(ext Invoker) *Resolver {
	return &Resolver{extensions: ext}
}

// ResolveList resolves every raw value. Unresolved variables become nil.
func (r *Resolver) ResolveList(ctx context.Context, ec *execution.Context, step string, raw []string) ([]any, error) {
	out := make([]any, 0, len(raw))
	for _, v := range raw {
		resolved, err := r.Resolve(ctx, ec, step, v)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// Resolve resolves a single raw value.
func (r *Resolver) Resolve(ctx context.Context, ec *execution.Context, step, raw string) (any, error) {
	d := Parse(raw)
	switch d.Kind {
	case KindExtension:
		out, err := r.call(ctx, ec, d)
		if errors.Is(err, extension.ErrNoValue) {
			return nil, nil
		}
		if err != nil {
			return nil, &ValueResolutionError{Step: step, Value: raw, Err: err}
		}
		return strings.TrimSpace(out), nil
	case KindVariable:
		if d.Variable == "" {
			return nil, &ValueResolutionError{Step: step, Value: raw, Err: fmt.Errorf("missing variable name")}
		}
		v, ok := ec.Lookup(d.Variable)
		if !ok {
			logging.Debug("Resolver", "%s: variable %s is not set", step, d.Variable)
			return nil, nil
		}
		return v, nil
	default:
		return raw, nil
	}
}

// ResolveScalar resolves an endpoint-like string. A single ApiGlobalVariables:<name>
// reference is replaced by the variable's value and the text before it kept.
func (r *Resolver) ResolveScalar(ec *execution.Context, step, s string) (string, error) {
	marker := VariablePrefix + ":"
	idx := strings.Index(s, marker)
	if idx < 0 {
		return strings.TrimSpace(s), nil
	}

	prefix := strings.TrimSpace(s[:idx])
	name := strings.TrimSpace(s[idx+len(marker):])
	if name == "" {
		return "", &ValueResolutionError{Step: step, Value: s, Err: fmt.Errorf("missing variable name")}
	}
	v, ok := ec.Lookup(name)
	if !ok {
		logging.Warn("Resolver", "%s: variable %s is not set", step, name)
	}
	return prefix + jsonpath.Stringify(v), nil
}

// CallCustom invokes a Custom:<class>:<method> directive and returns its result.
func (r *Resolver) CallCustom(ctx context.Context, ec *execution.Context, step string, d Directive) (string, error) {
	if d.Module == "" || d.Function == "" {
		return "", &ValueResolutionError{Step: step, Value: d.Raw, Err: fmt.Errorf("expected Custom:<class>:<method>")}
	}
	out, err := r.call(ctx, ec, d)
	if err != nil && !errors.Is(err, extension.ErrNoValue) {
		return "", &ValueResolutionError{Step: step, Value: d.Raw, Err: err}
	}
	return out, nil
}

func (r *Resolver) call(ctx context.Context, ec *execution.Context, d Directive) (string, error) {
	if r.extensions == nil {
		return "", &extension.NotFoundError{Module: d.Module, Function: d.Function}
	}
	return r.extensions.Call(ctx, extension.Call{
		Module:   d.Module,
		Function: d.Function,
		Arg:      d.Arg,
		HasArg:   d.HasArg,
		Exec:     ec,
	})
}
