// Package config loads the apicase run configuration.
//
// Configuration lives in a single YAML file, apicase.yaml in the working directory
// by default. A missing file is not an error: every field has a default, and the
// defaults are applied field by field so a partial file only overrides what it names.
//
// Example:
//
//	testDataDir: test_data
//	templateDir: test_data/api/JsonRepository
//	environment: qa
//	parallel: 4
//	pollInterval: 500ms
//	reports:
//	  json: reports/run.json
package config
