package request

import (
	"fmt"
	"net/http"
	"strings"
)

const relaxedPrefix = "RELAX_"

// Method is a parsed method token.
type Method struct {
	// Verb is the HTTP method sent on the wire.
	Verb string
	// Relaxed requests skip TLS verification and follow redirects.
	Relaxed bool
}

func (m Method) String() string {
	if m.Relaxed {
		return relaxedPrefix + m.Verb
	}
	return m.Verb
}

// UnsupportedMethodError reports an unknown method token.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported HTTP method: %s", e.Method)
}

var strictVerbs = map[string]string{
	"GET":    http.MethodGet,
	"POST":   http.MethodPost,
	"PUT":    http.MethodPut,
	"DELETE": http.MethodDelete,
	"PATCH":  http.MethodPatch,
}

var relaxedVerbs = map[string]string{
	"GET":    http.MethodGet,
	"POST":   http.MethodPost,
	"PUT":    http.MethodPut,
	"DELETE": http.MethodDelete,
}

// ParseMethod parses a method token case-insensitively.
func ParseMethod(token string) (Method, error) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	if verb, ok := strictVerbs[upper]; ok {
		return Method{Verb: verb}, nil
	}
	if rest, ok := strings.CutPrefix(upper, relaxedPrefix); ok {
		if verb, ok := relaxedVerbs[rest]; ok {
			return Method{Verb: verb, Relaxed: true}, nil
		}
	}
	return Method{}, &UnsupportedMethodError{Method: token}
}
