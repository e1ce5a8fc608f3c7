package execution

import (
	"net/http"
	"time"

	"apicase/internal/jsonpath"
)

// Response is a snapshot of one HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration

	decoded    any
	decodedErr error
	decodeDone bool
}

// BodyString returns the body as text.
func (r *Response) BodyString() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// JSON returns the decoded body. The body is decoded once and the result reused.
func (r *Response) JSON() (any, error) {
	if !r.decodeDone {
		r.decoded, r.decodedErr = jsonpath.Decode(r.Body)
		r.decodeDone = true
	}
	return r.decoded, r.decodedErr
}
