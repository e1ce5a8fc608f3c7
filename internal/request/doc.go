// Package request assembles a parsed test case into request parameters and turns
// them into *http.Request values.
//
// Key and value lists are merged into maps, skipping NONE and empty keys.
// Boolean-looking strings become bools and Custom:<class>:<method> values are
// replaced by the extension's result, in that order. A body containing the
// reserved JsonRepository key is rendered from a template file.
package request
