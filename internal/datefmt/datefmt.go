// Package datefmt converts SimpleDateFormat-style patterns ("yyyy-MM-dd HH:mm")
// into Go time layouts so test data written against that notation keeps working.
package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// UnsupportedPatternError reports a pattern letter with no Go layout equivalent.
type UnsupportedPatternError struct {
	Pattern string
	Token   string
}

func (e *UnsupportedPatternError) Error() string {
	return fmt.Sprintf("date pattern %q: unsupported token %q", e.Pattern, e.Token)
}

// tokens maps pattern runs to layout elements. Longer runs are listed first.
var tokens = []struct {
	pattern string
	layout  string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"a", "PM"},
	{"XXX", "Z07:00"},
	{"XX", "Z0700"},
	{"X", "Z07"},
	{"Z", "-0700"},
	{"z", "MST"},
}

// Layout converts pattern into a Go reference-time layout.
// Text in single quotes is copied literally and '' is a literal quote.
func Layout(pattern string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			j, closed := i+1, false
			for j < len(pattern) {
				if pattern[j] == '\'' {
					if j+1 < len(pattern) && pattern[j+1] == '\'' {
						b.WriteByte('\'')
						j += 2
						continue
					}
					closed = true
					break
				}
				b.WriteByte(pattern[j])
				j++
			}
			if !closed {
				return "", &UnsupportedPatternError{Pattern: pattern, Token: pattern[i:]}
			}
			i = j + 1
			continue
		}

		if !isLetter(c) {
			b.WriteByte(c)
			i++
			continue
		}

		run := i
		for run < len(pattern) && pattern[run] == c {
			run++
		}
		token := pattern[i:run]
		layout, ok := lookup(token)
		if !ok {
			return "", &UnsupportedPatternError{Pattern: pattern, Token: token}
		}
		b.WriteString(layout)
		i = run
	}
	return b.String(), nil
}

func lookup(run string) (string, bool) {
	for _, t := range tokens {
		if t.pattern == run {
			return t.layout, true
		}
	}
	// Runs longer than any entry behave like the longest one for years and days of week.
	switch {
	case strings.Trim(run, "y") == "" && len(run) > 4:
		return "2006", true
	case strings.Trim(run, "E") == "" && len(run) > 4:
		return "Monday", true
	}
	return "", false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Format renders t with a pattern.
func Format(t time.Time, pattern string) (string, error) {
	layout, err := Layout(pattern)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// Valid reports whether value parses under pattern. Parsing is strict: out-of-range
// fields and trailing text are rejected.
func Valid(value, pattern string) (bool, error) {
	layout, err := Layout(pattern)
	if err != nil {
		return false, err
	}
	_, err = time.Parse(layout, value)
	return err == nil, nil
}
