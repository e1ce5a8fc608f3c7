package extension

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"apicase/internal/datefmt"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"
)

// MockModule is the module name of the built-in data generators.
const MockModule = "MOCK"

// mock implements the MOCK module. Every function stores its result as a global
// variable named after the function.
type mock struct {
	now         func() time.Time
	randAlnum   func(int) string
	randAlpha   func(int) string
	randNumeric func(int) string
}

func newMock(now func() time.Time) *mock {
	funcs := sprig.GenericFuncMap()
	return &mock{
		now:         now,
		randAlnum:   funcs["randAlphaNum"].(func(int) string),
		randAlpha:   funcs["randAlpha"].(func(int) string),
		randNumeric: funcs["randNumeric"].(func(int) string),
	}
}

func (m *mock) register(r *Registry) {
	r.Register(MockModule, "GENERATE_DATE", m.stored("GENERATE_DATE", m.generateDate))
	r.Register(MockModule, "UUID", m.stored("UUID", func(Call) (string, error) {
		return uuid.NewString(), nil
	}))
	r.Register(MockModule, "RANDOM_STRING", m.stored("RANDOM_STRING", m.random(m.randAlnum, 10)))
	r.Register(MockModule, "RANDOM_ALPHA", m.stored("RANDOM_ALPHA", m.random(m.randAlpha, 10)))
	r.Register(MockModule, "RANDOM_NUMBER", m.stored("RANDOM_NUMBER", m.random(m.randNumeric, 6)))
	r.Register(MockModule, "RANDOM_EMAIL", m.stored("RANDOM_EMAIL", m.randomEmail))
	r.Register(MockModule, "TIMESTAMP", m.stored("TIMESTAMP", func(Call) (string, error) {
		return strconv.FormatInt(m.now().UnixMilli(), 10), nil
	}))
	r.Register(MockModule, "ENV", m.stored("ENV", func(call Call) (string, error) {
		if !call.HasArg {
			return "", fmt.Errorf("ENV requires a variable name")
		}
		v, ok := os.LookupEnv(call.Arg)
		if !ok {
			return "", ErrNoValue
		}
		return v, nil
	}))
}

// stored wraps fn so its result is also written to the caller's variables.
func (m *mock) stored(name string, fn func(Call) (string, error)) Func {
	return func(_ context.Context, call Call) (string, error) {
		out, err := fn(call)
		if err != nil {
			return "", err
		}
		if call.Exec != nil {
			call.Exec.Store(name, out)
		}
		return out, nil
	}
}

// generateDate takes "pattern|years|months|days" and shifts today by the offsets.
func (m *mock) generateDate(call Call) (string, error) {
	parts := strings.Split(call.Arg, "|")
	if len(parts) != 4 {
		return "", fmt.Errorf("GENERATE_DATE expects pattern|years|months|days, got %q", call.Arg)
	}

	offsets := make([]int, 3)
	for i, raw := range parts[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("GENERATE_DATE offset %q is not an integer", raw)
		}
		offsets[i] = n
	}

	date := m.now().AddDate(offsets[0], offsets[1], offsets[2])
	return datefmt.Format(date, parts[0])
}

func (m *mock) random(gen func(int) string, defaultLen int) func(Call) (string, error) {
	return func(call Call) (string, error) {
		n := defaultLen
		if call.HasArg {
			parsed, err := strconv.Atoi(strings.TrimSpace(call.Arg))
			if err != nil || parsed < 1 {
				return "", fmt.Errorf("%s length %q must be a positive integer", call.Function, call.Arg)
			}
			n = parsed
		}
		return gen(n), nil
	}
}

func (m *mock) randomEmail(call Call) (string, error) {
	domain := "example.com"
	if call.HasArg && strings.TrimSpace(call.Arg) != "" {
		domain = strings.TrimSpace(call.Arg)
	}
	return strings.ToLower(m.randAlnum(12)) + "@" + domain, nil
}
