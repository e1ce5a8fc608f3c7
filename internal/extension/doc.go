// Package extension is the registry of host-supplied functions reachable from test data.
//
// Values written as PreFlow:<module>:<function>[:<arg>] call a registered function and
// use its result. Custom:<class>:<method> entries in expected-value contexts call a
// registered function for its side effects, usually assertions recorded on the
// execution context. Both forms resolve through the same Registry, keyed by module
// and function name.
//
// The binary registers the MOCK module and the dynamic string lookup with
// RegisterBuiltins. Embedders add their own functions with Register.
package extension
