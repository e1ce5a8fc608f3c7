package testing

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"apicase/internal/directive"
	"apicase/internal/repository"
)

// caseLoader implements TestCaseLoader over a directory of directive files
type caseLoader struct {
	files  *repository.Repository
	debug  bool
	logger TestLogger
}

// NewTestCaseLoader creates a loader that walks dir for .csv and .xlsx files.
func NewTestCaseLoader(fsys afero.Fs, dir string, logger TestLogger) TestCaseLoader {
	if logger == nil {
		logger = NewSilentLogger(false, false)
	}
	return &caseLoader{
		files:  repository.New(fsys, dir, directive.ExtCSV, directive.ExtXLSX),
		debug:  logger.IsDebugEnabled(),
		logger: logger,
	}
}

// LoadTestCases returns every test case under the directory in lexical order.
func (l *caseLoader) LoadTestCases() ([]TestCase, error) {
	paths, err := l.files.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read test data directory %s: %w", l.files.Dir(), err)
	}

	cases := make([]TestCase, 0, len(paths))
	for _, path := range paths {
		cases = append(cases, TestCaseFromPath(path))
	}

	if l.debug {
		l.logger.Debug("📚 Discovered %d test cases in %s\n", len(cases), l.files.Dir())
	}
	return cases, nil
}

// Find returns the first case whose file name starts with prefix.
func (l *caseLoader) Find(prefix string) (TestCase, error) {
	path, err := l.files.Find(prefix)
	if err != nil {
		return TestCase{}, err
	}
	return TestCaseFromPath(path), nil
}

// FilterTestCases keeps the cases selected by the name prefixes and run/skip
// patterns of config. Patterns are matched against the test case name.
func (l *caseLoader) FilterTestCases(cases []TestCase, config TestConfiguration) ([]TestCase, error) {
	run, err := compilePatterns(config.Run)
	if err != nil {
		return nil, err
	}
	skip, err := compilePatterns(config.Skip)
	if err != nil {
		return nil, err
	}

	if l.debug {
		l.logger.Debug("🔍 Filtering test cases\n")
		l.logger.Debug("  • Names: %s\n", stringOrDefault(strings.Join(config.Names, ", "), "all"))
		l.logger.Debug("  • Run: %s\n", stringOrDefault(strings.Join(config.Run, ", "), "all"))
		l.logger.Debug("  • Skip: %s\n", stringOrDefault(strings.Join(config.Skip, ", "), "none"))
	}

	var filtered []TestCase
	for _, tc := range cases {
		if len(config.Names) > 0 && !hasAnyPrefix(tc.Name, config.Names) {
			continue
		}
		if len(run) > 0 && !matchesAny(tc.Name, run) {
			continue
		}
		if matchesAny(tc.Name, skip) {
			continue
		}
		filtered = append(filtered, tc)
	}

	if l.debug {
		l.logger.Debug("📊 Filtered to %d test cases\n", len(filtered))
	}
	return filtered, nil
}

// TestCaseFromPath derives the identity of the test case stored at path.
// "api/users/TC001_create_user.csv" is TC001 in category Users.
func TestCaseFromPath(path string) TestCase {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(base, "_"); i > 0 {
		name = base[:i]
	}
	return TestCase{
		Name:     name,
		File:     path,
		Category: capitalize(filepath.Base(filepath.Dir(path))),
	}
}

// LoadTestCasesForCompletion lists case names for shell completion. Errors are
// swallowed so completion never prints noise.
func LoadTestCasesForCompletion(dir string) []string {
	cases, err := NewTestCaseLoader(afero.NewOsFs(), dir, nil).LoadTestCases()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(cases))
	seen := make(map[string]bool, len(cases))
	for _, tc := range cases {
		if !seen[tc.Name] {
			seen[tc.Name] = true
			names = append(names, tc.Name)
		}
	}
	return names
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchesAny(name string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func stringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
