package jsonpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// segment is one step of a path: an object key or an array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// Path is a parsed JSON path.
type Path struct {
	raw      string
	segments []segment
}

// ParseError reports a path that cannot be tokenized.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid json path %q: %s", e.Path, e.Reason)
}

// Parse tokenizes a dotted path. The empty path and "$" address the document root.
func Parse(raw string) (Path, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")

	p := Path{raw: raw}
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return Path{}, &ParseError{Path: raw, Reason: "unterminated '['"}
			}
			inner := strings.TrimSpace(s[i+1 : i+end])
			if key, ok := unquote(inner); ok {
				p.segments = append(p.segments, segment{key: key})
			} else {
				n, err := strconv.Atoi(inner)
				if err != nil {
					return Path{}, &ParseError{Path: raw, Reason: fmt.Sprintf("index %q is not an integer", inner)}
				}
				p.segments = append(p.segments, segment{index: n, isIndex: true})
			}
			i += end + 1
		case '\'', '"':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return Path{}, &ParseError{Path: raw, Reason: "unterminated quote"}
			}
			p.segments = append(p.segments, segment{key: s[i+1 : i+1+end]})
			i += end + 2
		default:
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			p.segments = append(p.segments, segment{key: s[i:j]})
			i = j
		}
	}
	return p, nil
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// String returns the path as it was written.
func (p Path) String() string {
	return p.raw
}

// IsRoot reports whether the path addresses the whole document.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// queryPrelude defines the two step functions every compiled path uses.
// k applies a key to an object, or to each element of an array.
const queryPrelude = `def k($n): if type == "array" then map(.[$n]?) else .[$n]? end; ` +
	`def i($n): if type == "array" then .[$n] else null end; `

// Query renders the path as a jq program.
func (p Path) Query() string {
	var b strings.Builder
	b.WriteString(queryPrelude)
	b.WriteString(".")
	for _, seg := range p.segments {
		if seg.isIndex {
			fmt.Fprintf(&b, " | i(%d)", seg.index)
			continue
		}
		lit, _ := json.Marshal(seg.key)
		fmt.Fprintf(&b, " | k(%s)", lit)
	}
	return b.String()
}
