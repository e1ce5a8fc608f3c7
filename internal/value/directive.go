// Package value parses and resolves the value mini-language used in test-case cells.
//
//	PreFlow:<module>[:<function>[:<arg>]]   call a registered extension
//	ApiGlobalVariables:<name>               read a global variable
//	Custom:<class>:<method>                 extension call, expected-value contexts only
//	anything else                           literal
package value

import (
	"strings"
)

const (
	PreFlowPrefix  = "PreFlow"
	VariablePrefix = "ApiGlobalVariables"
	CustomPrefix   = "Custom"

	// None is the universal "absent" sentinel of test-case files.
	None = "NONE"
)

// Kind tags a Directive.
type Kind int

const (
	KindLiteral Kind = iota
	KindVariable
	KindExtension
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	case KindExtension:
		return "extension"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Directive is a parsed cell value.
type Directive struct {
	Kind Kind
	Raw  string

	// Variable is the name read by KindVariable.
	Variable string

	// Module, Function and Arg are set for KindExtension and KindCustom.
	Module   string
	Function string
	Arg      string
	HasArg   bool
}

// Parse classifies raw for generic list resolution. Custom: values stay literal here.
func Parse(raw string) Directive {
	tokens := strings.Split(raw, ":")
	switch tokens[0] {
	case PreFlowPrefix:
		d := Directive{Kind: KindExtension, Raw: raw}
		if len(tokens) > 1 {
			d.Module = strings.TrimSpace(tokens[1])
		}
		if len(tokens) > 2 {
			d.Function = strings.TrimSpace(tokens[2])
		}
		if len(tokens) > 3 {
			// The argument keeps its colons, so "HH:mm" patterns survive.
			d.Arg = strings.Join(tokens[3:], ":")
			d.HasArg = true
		}
		return d
	case VariablePrefix:
		d := Directive{Kind: KindVariable, Raw: raw}
		if len(tokens) > 1 {
			d.Variable = strings.TrimSpace(tokens[1])
		}
		return d
	default:
		return Directive{Kind: KindLiteral, Raw: raw}
	}
}

// IsCustom reports whether raw is shaped like a custom call: a case-insensitive
// Custom prefix followed by at least one more colon-separated token.
func IsCustom(raw string) bool {
	tokens := strings.Split(raw, ":")
	return len(tokens) > 1 && strings.EqualFold(tokens[0], CustomPrefix)
}

// ParseCustom parses Custom:<class>:<method>. It returns false when raw is not
// shaped like a custom call; a custom-shaped value without a method is returned
// with an empty Function.
func ParseCustom(raw string) (Directive, bool) {
	if !IsCustom(raw) {
		return Directive{}, false
	}
	tokens := strings.Split(raw, ":")
	d := Directive{Kind: KindCustom, Raw: raw, Module: strings.TrimSpace(tokens[1])}
	if len(tokens) > 2 {
		d.Function = strings.TrimSpace(tokens[2])
	}
	return d, true
}

// IsNone reports whether s is the absent sentinel or empty.
func IsNone(s string) bool {
	return s == None || s == ""
}
