package jsonpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/itchyny/gojq"
)

// Evaluator runs paths against decoded documents, caching compiled programs.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewEvaluator creates an Evaluator with an empty program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string]*gojq.Code)}
}

var defaultEvaluator = NewEvaluator()

// Get evaluates path against doc with the shared evaluator.
func Get(doc any, path string) (any, error) {
	return defaultEvaluator.Get(doc, path)
}

// Get returns the value at path. A path that does not exist yields nil.
func (e *Evaluator) Get(doc any, path string) (any, error) {
	code, err := e.compile(path)
	if err != nil {
		return nil, err
	}

	iter := code.Run(doc)
	v, ok := iter.Next()
	if !ok {
		return nil, nil
	}
	if err, isErr := v.(error); isErr {
		return nil, fmt.Errorf("evaluating json path %q: %w", path, err)
	}
	return v, nil
}

func (e *Evaluator) compile(path string) (*gojq.Code, error) {
	e.mu.RLock()
	code, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return code, nil
	}

	p, err := Parse(path)
	if err != nil {
		return nil, err
	}
	query, err := gojq.Parse(p.Query())
	if err != nil {
		return nil, fmt.Errorf("parsing query for json path %q: %w", path, err)
	}
	code, err = gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compiling query for json path %q: %w", path, err)
	}

	e.mu.Lock()
	e.cache[path] = code
	e.mu.Unlock()
	return code, nil
}

// Decode parses a JSON document into the value shapes gojq evaluates:
// maps, slices, strings, bools, nil, and int or float64 numbers.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil && n == int64(int(n)) {
			return int(n)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
