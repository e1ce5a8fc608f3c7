// Package template substitutes {{key}} placeholders in JSON body templates.
package template

import (
	"regexp"
	"sort"

	"apicase/internal/jsonpath"
)

// Engine replaces placeholders like {{ name }} with values from a map.
type Engine struct {
	// Pattern to match placeholders like {{ name }} or {{user.id}}
	placeholderPattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		placeholderPattern: regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`),
	}
}

var defaultEngine = New()

// Render replaces placeholders using the default engine.
func Render(text string, values map[string]any) string {
	return defaultEngine.Render(text, values)
}

// Render replaces every placeholder whose key is in values with the value's
// string form. Placeholders without a value are left untouched.
func (e *Engine) Render(text string, values map[string]any) string {
	return e.placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := e.placeholderPattern.FindStringSubmatch(match)[1]
		v, ok := values[name]
		if !ok {
			return match
		}
		return jsonpath.Stringify(v)
	})
}

// Placeholders returns the sorted, distinct placeholder names in text.
func (e *Engine) Placeholders(text string) []string {
	seen := make(map[string]bool)
	for _, m := range e.placeholderPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Missing returns the placeholders in text that values does not cover.
func (e *Engine) Missing(text string, values map[string]any) []string {
	var missing []string
	for _, name := range e.Placeholders(text) {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
