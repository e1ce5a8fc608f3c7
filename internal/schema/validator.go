package schema

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"sigs.k8s.io/yaml"

	"apicase/internal/execution"
	"apicase/internal/jsonpath"
	"apicase/internal/repository"
	"apicase/internal/value"
	"apicase/pkg/logging"
)

// ShapeCheck names the failures recorded by the path-set comparison.
const ShapeCheck = "Schema validation"

// Extensions accepted for schema documents.
var Extensions = []string{".json", ".yaml", ".yml"}

// Status is the outcome of a schema validation.
type Status string

const (
	StatusChecked Status = "CHECKED"
	StatusSkipped Status = "SKIPPED"
)

// Result summarises one validation. Failures are recorded on the context.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Paths  int    `json:"paths"`
}

// Validator loads schema documents and checks responses against them.
type Validator struct {
	documents *repository.Repository
}

// NewValidator creates a Validator reading documents from repo.
func NewValidator(repo *repository.Repository) *Validator {
	return &Validator{documents: repo}
}

// Load returns the decoded document whose file name starts with name.
func (v *Validator) Load(name string) (any, error) {
	if v.documents == nil {
		return nil, errors.New("no schema directory configured")
	}
	path, err := v.documents.Find(name)
	if err != nil {
		return nil, err
	}
	data, err := v.documents.Read(name)
	if err != nil {
		return nil, err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return nil, fmt.Errorf("converting %s to JSON: %w", path, err)
		}
	}

	doc, err := jsonpath.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the last response against the named document. It never fails
// the test case by itself: problems are noted and the result is SKIPPED.
func (v *Validator) Validate(ec *execution.Context, name string) Result {
	name = strings.TrimSpace(name)
	if value.IsNone(name) {
		return skip(ec, "no schema configured")
	}

	expected, err := v.Load(name)
	if err != nil {
		return skip(ec, fmt.Sprintf("schema %s could not be loaded: %v", name, err))
	}

	resp := ec.LastResponse()
	if resp == nil {
		return skip(ec, "no response received")
	}
	actual, err := resp.JSON()
	if err != nil {
		return skip(ec, fmt.Sprintf("response body is not JSON: %v", err))
	}

	n, err := CheckDocument(ec, actual, expected)
	if err != nil {
		return skip(ec, err.Error())
	}
	return Result{Status: StatusChecked, Paths: n}
}

func skip(ec *execution.Context, reason string) Result {
	logging.Debug("Schema", "Skipping schema validation for %s: %s", ec.Name, reason)
	ec.Notef("schema validation skipped: %s", reason)
	return Result{Status: StatusSkipped, Reason: reason}
}

// CheckDocument compares actual with expected and records failures on ec. All type
// tokens are parsed before anything is recorded, so an unknown token returns a
// *SchemaTypeUnknownError and leaves ec untouched. It returns the number of
// expected leaf paths checked.
func CheckDocument(ec *execution.Context, actual, expected any) (int, error) {
	expectedLeaves := jsonpath.Leaves(expected)
	expectedPaths := jsonpath.LeafPaths(expected)

	checks := make(map[string]Check)
	for _, path := range expectedPaths {
		token := expectedLeaves[path]
		if !IsToken(token) {
			continue
		}
		c, err := ParseToken(path, token.(string))
		if err != nil {
			return 0, err
		}
		checks[path] = c
	}

	diffShape(ec, jsonpath.LeafPaths(actual), expectedPaths)

	for _, path := range expectedPaths {
		got, err := jsonpath.Get(actual, path)
		if err != nil {
			ec.Failf(path, "%v", err)
			continue
		}

		if c, ok := checks[path]; ok {
			matched, err := c.Matches(got)
			if err != nil {
				ec.Failf(path, "%v", err)
				continue
			}
			ec.AssertTrue(path, matched, fmt.Sprintf("schema type(%s) is not as expected %s", jsonpath.Stringify(got), c))
			continue
		}

		want := resolveExpected(ec, expectedLeaves[path])
		if !reflect.DeepEqual(got, want) {
			ec.AssertEqual(path, jsonpath.Stringify(got), jsonpath.Stringify(want))
		}
	}
	return len(expectedPaths), nil
}

// diffShape records one failure per path present on only one side.
func diffShape(ec *execution.Context, actual, expected []string) {
	if cmp.Equal(actual, expected) {
		return
	}
	ec.Notef("schema paths differ (-expected +actual):\n%s", cmp.Diff(expected, actual))

	inActual := make(map[string]bool, len(actual))
	for _, p := range actual {
		inActual[p] = true
	}
	inExpected := make(map[string]bool, len(expected))
	for _, p := range expected {
		inExpected[p] = true
		if !inActual[p] {
			ec.Failf(ShapeCheck, "path %s is missing from the response", p)
		}
	}
	for _, p := range actual {
		if !inExpected[p] {
			ec.Failf(ShapeCheck, "path %s is not in the schema", p)
		}
	}
}

// resolveExpected replaces an ApiGlobalVariables:<name> literal with the variable.
func resolveExpected(ec *execution.Context, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	prefix, name, found := strings.Cut(s, ":")
	if !found || !strings.EqualFold(prefix, value.VariablePrefix) {
		return v
	}
	got, _ := ec.Lookup(strings.TrimSpace(name))
	return got
}
