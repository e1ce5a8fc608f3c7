package jsonpath

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Leaves maps every leaf path of doc to its value. Objects contribute ".key",
// arrays "[index]"; the root object's keys carry no leading dot. Empty objects
// and arrays have no leaves.
func Leaves(doc any) map[string]any {
	out := make(map[string]any)
	walk(&strings.Builder{}, doc, out)
	return out
}

// LeafPaths returns the sorted leaf paths of doc.
func LeafPaths(doc any) []string {
	leaves := Leaves(doc)
	paths := make([]string, 0, len(leaves))
	for p := range leaves {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func walk(path *strings.Builder, node any, out map[string]any) {
	prefix := path.String()
	switch n := node.(type) {
	case map[string]any:
		for key, child := range n {
			path.Reset()
			path.WriteString(prefix)
			writeKey(path, key, prefix == "")
			walk(path, child, out)
		}
	case []any:
		for i, child := range n {
			path.Reset()
			path.WriteString(prefix)
			path.WriteByte('[')
			path.WriteString(strconv.Itoa(i))
			path.WriteByte(']')
			walk(path, child, out)
		}
	default:
		out[prefix] = node
	}
}

// writeKey appends an object key, bracket-quoting keys that a dotted path could
// not express.
func writeKey(path *strings.Builder, key string, root bool) {
	if key == "" || strings.ContainsAny(key, ". []") {
		quote := "'"
		if strings.Contains(key, "'") {
			quote = `"`
		}
		path.WriteString("[" + quote + key + quote + "]")
		return
	}
	if !root {
		path.WriteByte('.')
	}
	path.WriteString(key)
}

// Stringify renders a decoded JSON value the way it is compared in assertions.
// Scalars print plainly, null prints as "null", and containers print as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
