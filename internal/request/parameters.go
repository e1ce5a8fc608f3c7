package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"apicase/internal/jsonpath"
)

const (
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
	contentTypeForm   = "application/x-www-form-urlencoded"

	bearerKey = "Bearer"
)

// Parameters is a fully resolved request. Params, Headers, Body and Auth are nil
// when their merged map was empty.
type Parameters struct {
	Endpoint string
	Method   Method
	Params   map[string]any
	Headers  map[string]any
	Body     map[string]any
	Auth     map[string]any
}

// IsForm reports whether the headers declare a form-url-encoded body.
func (p *Parameters) IsForm() bool {
	for k, v := range p.Headers {
		if strings.EqualFold(k, contentTypeHeader) {
			return strings.HasPrefix(strings.ToLower(jsonpath.Stringify(v)), contentTypeForm)
		}
	}
	return false
}

// URL returns the endpoint with Params appended to its query string.
func (p *Parameters) URL() (string, error) {
	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", p.Endpoint, err)
	}
	if len(p.Params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, v := range p.Params {
		q.Set(k, jsonpath.Stringify(v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewHTTPRequest builds a fresh request. Polling calls it once per attempt since
// a request body can only be read once.
func (p *Parameters) NewHTTPRequest(ctx context.Context) (*http.Request, error) {
	target, err := p.URL()
	if err != nil {
		return nil, err
	}

	body, contentType, err := p.encodeBody()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, p.Method.Verb, target, body)
	if err != nil {
		return nil, err
	}

	for _, k := range sortedKeys(p.Headers) {
		req.Header.Set(k, jsonpath.Stringify(p.Headers[k]))
	}
	if contentType != "" && req.Header.Get(contentTypeHeader) == "" {
		req.Header.Set(contentTypeHeader, contentType)
	}

	// Only bearer tokens are supported; other schemes are ignored.
	for k, v := range p.Auth {
		if strings.EqualFold(k, bearerKey) {
			req.Header.Set("Authorization", "Bearer "+jsonpath.Stringify(v))
		}
	}
	return req, nil
}

func (p *Parameters) encodeBody() (io.Reader, string, error) {
	if len(p.Body) == 0 {
		return nil, "", nil
	}

	if p.IsForm() {
		form := url.Values{}
		for k, v := range p.Body {
			form.Set(k, jsonpath.Stringify(v))
		}
		return strings.NewReader(form.Encode()), contentTypeForm, nil
	}

	data, err := json.Marshal(p.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), contentTypeJSON, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
