// Package validate checks the last response of a test case against expected values
// and copies response values into global variables.
package validate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"apicase/internal/execution"
	"apicase/internal/jsonpath"
	"apicase/internal/value"
	"apicase/pkg/logging"
)

const statusCheck = "Response Code"

// Validator compares response values with expectations. Mismatches are recorded
// on the execution context as soft failures.
type Validator struct {
	resolver *value.Resolver
}

// New creates a Validator that runs Custom checks through resolver.
func New(resolver *value.Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// ValidateStatus compares the response status code with expected. NONE or an
// empty expectation skips the check.
func (v *Validator) ValidateStatus(ec *execution.Context, expected string) {
	expected = strings.TrimSpace(expected)
	if value.IsNone(expected) {
		return
	}
	resp := ec.LastResponse()
	if resp == nil {
		ec.Failf(statusCheck, "no response received")
		return
	}
	ec.AssertEqual(statusCheck, strconv.Itoa(resp.StatusCode), expected)
}

// Validate checks each (path, expected) pair against the last response body.
// A Custom:<class>:<method> path only runs the extension, which does its own
// assertions. Pairs expecting NONE are skipped. Errors are returned only when a
// custom call fails; everything else is a soft failure.
func (v *Validator) Validate(ctx context.Context, ec *execution.Context, paths []string, expected []any) error {
	var (
		doc    any
		docErr error
		loaded bool
	)

	for i, path := range paths {
		if i >= len(expected) {
			break
		}
		exp := expected[i]
		if s, ok := exp.(string); ok && s == value.None {
			continue
		}
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		if d, ok := value.ParseCustom(path); ok {
			logging.Debug("Validator", "Running custom check %s", path)
			if _, err := v.resolver.CallCustom(ctx, ec, "RESPONSE:JSON_PATH", d); err != nil {
				return err
			}
			continue
		}

		want, err := v.expectedString(ctx, ec, exp)
		if err != nil {
			return err
		}

		if !loaded {
			doc, docErr = responseJSON(ec)
			loaded = true
		}
		if docErr != nil {
			ec.Failf(path, "response body is not JSON: %v", docErr)
			continue
		}

		actual, err := jsonpath.Get(doc, path)
		if err != nil {
			ec.Failf(path, "%v", err)
			continue
		}
		ec.AssertEqual(path, jsonpath.Stringify(actual), want)
	}
	return nil
}

// expectedString applies the merge rules to an expected value: booleans compare
// by their canonical form and Custom values are replaced by the call's result.
func (v *Validator) expectedString(ctx context.Context, ec *execution.Context, exp any) (string, error) {
	s, ok := exp.(string)
	if !ok {
		return jsonpath.Stringify(exp), nil
	}
	if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") {
		return strings.ToLower(s), nil
	}
	if d, ok := value.ParseCustom(s); ok {
		return v.resolver.CallCustom(ctx, ec, "RESPONSE:EXPECTED_VALUE", d)
	}
	return s, nil
}

// SaveResponseObjects stores the value at paths[i] under storeKeys[i] for every
// pair where neither side is NONE or empty.
func (v *Validator) SaveResponseObjects(ec *execution.Context, storeKeys []any, paths []string) error {
	var (
		doc    any
		loaded bool
	)

	for i, k := range storeKeys {
		if k == nil || i >= len(paths) {
			continue
		}
		key := strings.TrimSpace(jsonpath.Stringify(k))
		path := strings.TrimSpace(paths[i])
		if value.IsNone(key) || value.IsNone(path) {
			continue
		}

		if !loaded {
			var err error
			if doc, err = responseJSON(ec); err != nil {
				return fmt.Errorf("error while setting value %s: %w", key, err)
			}
			loaded = true
		}

		got, err := jsonpath.Get(doc, path)
		if err != nil {
			return fmt.Errorf("error while setting value %s: %w", key, err)
		}
		ec.Store(key, got)
		logging.Debug("Validator", "Stored %s from %s", key, path)
	}
	return nil
}

func responseJSON(ec *execution.Context) (any, error) {
	resp := ec.LastResponse()
	if resp == nil {
		return nil, fmt.Errorf("no response received")
	}
	return resp.JSON()
}
