package request

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"apicase/internal/directive"
	"apicase/internal/execution"
	"apicase/internal/jsonpath"
	"apicase/internal/repository"
	"apicase/internal/template"
	"apicase/internal/value"
	"apicase/pkg/logging"
)

// TemplateKey is the reserved body key naming a JSON template.
const TemplateKey = "JsonRepository"

// Builder turns a TestCaseSpec into Parameters.
type Builder struct {
	resolver  *value.Resolver
	templates *repository.Repository
	engine    *template.Engine
}

// NewBuilder creates a Builder. templates may be nil when no test case uses
// JsonRepository bodies.
func NewBuilder(resolver *value.Resolver, templates *repository.Repository) *Builder {
	return &Builder{
		resolver:  resolver,
		templates: templates,
		engine:    template.New(),
	}
}

// Merge pairs keys with resolved values, skipping NONE and empty keys.
func (b *Builder) Merge(ctx context.Context, ec *execution.Context, step string, keys []string, values []any) (map[string]any, error) {
	merged := make(map[string]any)
	for i, k := range keys {
		if value.IsNone(k) {
			continue
		}
		if i >= len(values) {
			return nil, &MergeError{Step: strings.ToUpper(step), KeyCount: len(keys), ValueCount: len(values)}
		}

		v, err := b.coerce(ctx, ec, step, values[i])
		if err != nil {
			return nil, err
		}
		merged[k] = v
	}
	return merged, nil
}

// coerce applies the merge rules in order: boolean, then Custom call, then literal.
func (b *Builder) coerce(ctx context.Context, ec *execution.Context, step string, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") {
		return strings.EqualFold(s, "true"), nil
	}
	if d, ok := value.ParseCustom(s); ok {
		return b.resolver.CallCustom(ctx, ec, strings.ToUpper(step), d)
	}
	return v, nil
}

// Build merges every list of spec and resolves the body template.
func (b *Builder) Build(ctx context.Context, ec *execution.Context, spec *directive.TestCaseSpec) (*Parameters, error) {
	method, err := ParseMethod(spec.Method)
	if err != nil {
		return nil, err
	}

	p := &Parameters{Endpoint: spec.Endpoint, Method: method}

	lists := []struct {
		step   string
		keys   []string
		values []any
		dst    *map[string]any
	}{
		{"params", spec.ParamKeys, spec.ParamValues, &p.Params},
		{"headers", spec.HeaderKeys, spec.HeaderValues, &p.Headers},
		{"body", spec.BodyKeys, spec.BodyValues, &p.Body},
		{"auth", spec.AuthKeys, spec.AuthValues, &p.Auth},
	}
	for _, l := range lists {
		m, err := b.Merge(ctx, ec, l.step, l.keys, l.values)
		if err != nil {
			return nil, err
		}
		if len(m) > 0 {
			*l.dst = m
		}
	}

	if p.Body != nil {
		if p.Body, err = b.renderBody(p.Body); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// renderBody replaces a body that names a template with the rendered template.
func (b *Builder) renderBody(body map[string]any) (map[string]any, error) {
	name, ok := body[TemplateKey]
	if !ok {
		return body, nil
	}
	templateName := strings.TrimSpace(jsonpath.Stringify(name))

	if b.templates == nil {
		return nil, &TemplateFileNotFoundError{Name: templateName}
	}
	text, err := b.templates.Read(templateName)
	if err != nil {
		var nf *repository.NotFoundError
		if errors.As(err, &nf) {
			return nil, &TemplateFileNotFoundError{Name: templateName, Dir: b.templates.Dir(), Err: err}
		}
		return nil, fmt.Errorf("failed to load template %s: %w", templateName, err)
	}

	values := make(map[string]any, len(body)-1)
	for k, v := range body {
		if k != TemplateKey {
			values[k] = v
		}
	}
	if missing := b.engine.Missing(string(text), values); len(missing) > 0 {
		logging.Debug("Builder", "Template %s leaves placeholders unset: %s", templateName, strings.Join(missing, ", "))
	}

	rendered := b.engine.Render(string(text), values)

	doc, err := jsonpath.Decode([]byte(rendered))
	if err != nil {
		return nil, &TemplateParseError{Name: templateName, Err: err}
	}
	out, ok := doc.(map[string]any)
	if !ok {
		return nil, &TemplateParseError{Name: templateName, Err: errors.New("template is not a JSON object")}
	}
	return out, nil
}
