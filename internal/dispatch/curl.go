package dispatch

import (
	"sort"
	"strings"

	"github.com/alessio/shellescape"

	"apicase/internal/request"
)

// curlCommand renders p as an equivalent curl invocation for debug logs.
func curlCommand(p *request.Parameters, target string, body []byte) string {
	parts := []string{"curl", "-X", p.Method.Verb}
	if p.Method.Relaxed {
		parts = append(parts, "-k", "-L")
	}

	headers := make([]string, 0, len(p.Headers))
	for k := range p.Headers {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	for _, k := range headers {
		parts = append(parts, "-H", shellescape.Quote(k+": "+stringValue(p.Headers[k])))
	}
	for k := range p.Auth {
		if strings.EqualFold(k, "Bearer") {
			parts = append(parts, "-H", shellescape.Quote("Authorization: Bearer ***"))
		}
	}
	if len(body) > 0 {
		parts = append(parts, "--data", shellescape.Quote(string(body)))
	}
	parts = append(parts, shellescape.Quote(target))
	return strings.Join(parts, " ")
}
