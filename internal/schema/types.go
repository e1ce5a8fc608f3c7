package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"apicase/internal/datefmt"
	"apicase/internal/jsonpath"
)

// Type is a schema type token without its leading "@".
type Type string

const (
	TypeUUID       Type = "UUID"
	TypeDate       Type = "DATE"
	TypeArray      Type = "ARRAY"
	TypeFloat      Type = "FLOAT"
	TypeString     Type = "STRING"
	TypeBoolean    Type = "BOOLEAN"
	TypeInteger    Type = "INTEGER"
	TypeJSONObject Type = "JSON_OBJECT"
)

const (
	tokenPrefix     = "@"
	formatSeparator = "->"
)

var knownTypes = map[Type]bool{
	TypeUUID: true, TypeDate: true, TypeArray: true, TypeFloat: true,
	TypeString: true, TypeBoolean: true, TypeInteger: true, TypeJSONObject: true,
}

// SchemaTypeUnknownError reports a type token outside the supported set.
type SchemaTypeUnknownError struct {
	Path  string
	Token string
}

func (e *SchemaTypeUnknownError) Error() string {
	return fmt.Sprintf("unknown schema type %q at %s", e.Token, e.Path)
}

// Check is a parsed type token.
type Check struct {
	Type   Type
	Format string
}

func (c Check) String() string {
	if c.Format == "" {
		return string(c.Type)
	}
	return string(c.Type) + formatSeparator + c.Format
}

// IsToken reports whether v is a type token.
func IsToken(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, tokenPrefix)
}

// ParseToken parses "@TYPE[->FORMAT]". The type is case-insensitive; the format
// is kept as written.
func ParseToken(path, token string) (Check, error) {
	body := strings.TrimPrefix(token, tokenPrefix)
	typ, format, _ := strings.Cut(body, formatSeparator)

	c := Check{Type: Type(strings.ToUpper(strings.TrimSpace(typ))), Format: format}
	if !knownTypes[c.Type] {
		return Check{}, &SchemaTypeUnknownError{Path: path, Token: token}
	}
	return c, nil
}

// Matches reports whether actual satisfies the check.
func (c Check) Matches(actual any) (bool, error) {
	switch c.Type {
	case TypeUUID:
		s, ok := actual.(string)
		if !ok {
			return false, nil
		}
		_, err := uuid.Parse(s)
		return err == nil, nil
	case TypeDate:
		if actual == nil {
			return false, nil
		}
		return datefmt.Valid(jsonpath.Stringify(actual), c.Format)
	case TypeArray:
		return isJSONArray(actual), nil
	case TypeJSONObject:
		return isJSONObject(actual), nil
	case TypeFloat:
		switch t := actual.(type) {
		case int, float64:
			return true, nil
		case string:
			_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			return err == nil, nil
		}
		return false, nil
	case TypeInteger:
		switch t := actual.(type) {
		case int:
			return true, nil
		case string:
			_, err := strconv.ParseInt(t, 10, 32)
			return err == nil, nil
		}
		return false, nil
	case TypeString:
		return actual != nil, nil
	case TypeBoolean:
		switch t := actual.(type) {
		case bool:
			return true, nil
		case string:
			return strings.EqualFold(t, "true") || strings.EqualFold(t, "false"), nil
		}
		return false, nil
	}
	return false, &SchemaTypeUnknownError{Token: string(c.Type)}
}

func isJSONArray(v any) bool {
	switch t := v.(type) {
	case []any:
		return true
	case string:
		var arr []any
		return json.Unmarshal([]byte(t), &arr) == nil && arr != nil
	}
	return false
}

func isJSONObject(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return true
	case string:
		var obj map[string]any
		return json.Unmarshal([]byte(t), &obj) == nil && obj != nil
	}
	return false
}
