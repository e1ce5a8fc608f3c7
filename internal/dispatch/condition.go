package dispatch

import (
	"strconv"
	"strings"
	"time"

	"apicase/internal/jsonpath"
	"apicase/internal/value"
)

// Condition is the body substring a poll waits for.
type Condition struct {
	Token   string
	Timeout time.Duration
}

// Active reports whether the request must be polled.
func (c Condition) Active() bool {
	return !value.IsNone(c.Token)
}

// ParseCondition reads the first expected value. A trailing ":<seconds>" sets the
// timeout; without it, or when it is not an integer, def is used and the whole
// value is the token. A nil value yields an inactive condition.
func ParseCondition(first any, def time.Duration) Condition {
	if first == nil {
		return Condition{Timeout: def}
	}
	raw := strings.TrimSpace(jsonpath.Stringify(first))

	if i := strings.LastIndex(raw, ":"); i >= 0 {
		if secs, err := strconv.Atoi(strings.TrimSpace(raw[i+1:])); err == nil && secs >= 0 {
			return Condition{Token: raw[:i], Timeout: time.Duration(secs) * time.Second}
		}
	}
	return Condition{Token: raw, Timeout: def}
}
