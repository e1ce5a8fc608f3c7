package directive

import (
	"context"
	"strings"

	"apicase/internal/execution"
	"apicase/internal/value"
	"apicase/pkg/logging"
)

// DependencyRunner runs a test case, found by name prefix, on the caller's context.
type DependencyRunner interface {
	RunDependency(ctx context.Context, name string, ec *execution.Context) error
}

// Parser builds TestCaseSpecs from rows.
type Parser struct {
	resolver *value.Resolver
	deps     DependencyRunner
}

// NewParser creates a Parser. deps may be nil, in which case DEPENDANT_TEST_CASE
// rows are recorded but not run.
func NewParser(resolver *value.Resolver, deps DependencyRunner) *Parser {
	return &Parser{resolver: resolver, deps: deps}
}

// Parse applies rows in order. A later row for the same keyword replaces the
// earlier one entirely.
func (p *Parser) Parse(ctx context.Context, ec *execution.Context, rows []Row) (*TestCaseSpec, error) {
	spec := &TestCaseSpec{}

	for _, row := range rows {
		kw := row.Keyword()
		var err error

		switch kw {
		case EndPoint:
			spec.Endpoint, err = p.resolver.ResolveScalar(ec, string(kw), row.First())
		case Method:
			spec.Method = row.First()
		case ParamsKey:
			spec.ParamKeys = keys(row)
		case ParamsValue:
			spec.ParamValues, err = p.resolve(ctx, ec, row)
		case AuthKey:
			spec.AuthKeys = keys(row)
		case AuthValue:
			spec.AuthValues, err = p.resolve(ctx, ec, row)
		case HeadersKey:
			spec.HeaderKeys = keys(row)
		case HeadersValue:
			spec.HeaderValues, err = p.resolve(ctx, ec, row)
		case BodyKey:
			spec.BodyKeys = keys(row)
		case BodyValue:
			spec.BodyValues, err = p.resolve(ctx, ec, row)
		case ResponseJSONPath:
			spec.JSONPaths = keys(row)
		case ResponseExpected:
			spec.ExpectedValues, err = p.resolve(ctx, ec, row)
		case ResponseStore:
			spec.StoreKeys, err = p.resolve(ctx, ec, row)
		case ResponseCode:
			spec.ResponseCode = row.First()
		case ResponseSchema:
			spec.Schema = row.First()
		case DependantTestCase:
			err = p.runDependency(ctx, ec, spec, row.First())
		default:
			if kw != "" {
				logging.Debug("Parser", "Ignoring unknown keyword %s", kw)
			}
		}

		if err != nil {
			return nil, err
		}
	}

	if err := spec.checkArity(); err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *Parser) resolve(ctx context.Context, ec *execution.Context, row Row) ([]any, error) {
	return p.resolver.ResolveList(ctx, ec, string(row.Keyword()), nonNil(row.Values()))
}

func (p *Parser) runDependency(ctx context.Context, ec *execution.Context, spec *TestCaseSpec, name string) error {
	if value.IsNone(name) {
		return nil
	}
	spec.Dependencies = append(spec.Dependencies, name)
	if p.deps == nil {
		return nil
	}

	logging.Debug("Parser", "Running dependant test case %s for %s", name, ec.Name)
	if err := p.deps.RunDependency(ctx, name, ec); err != nil {
		return &DependencyError{Name: name, Err: err}
	}
	return nil
}

func keys(row Row) []string {
	return nonNil(append([]string(nil), row.Values()...))
}

// nonNil keeps "row present but empty" distinct from "row absent".
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func trim(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
}
