// Package jsonpath addresses values inside decoded JSON documents.
//
// Paths use the dotted notation found in test-case files: "data.items[0].id",
// optionally prefixed with "$" and with quoted keys ('first name' or ["a.b"]) for
// keys that contain separators. A key applied to an array is applied to every
// element, so "items.id" yields the list of ids.
//
// Paths are compiled to jq programs and evaluated with gojq. Compiled programs are
// cached per path, so repeated lookups across test cases stay cheap.
//
// Leaves enumerates every leaf of a document under the same addressing scheme and
// is the basis of the schema shape diff.
package jsonpath
