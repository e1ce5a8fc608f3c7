// Package schema validates a response against an expected schema document.
//
// A schema document is JSON or YAML shaped like the expected response. Each leaf
// is a literal, an ApiGlobalVariables:<name> reference or a type token:
//
//	{"id": "@UUID", "created": "@DATE->yyyy-MM-dd", "owner": "ApiGlobalVariables:userId"}
//
// Validation first compares the leaf paths of the response with those of the
// document, then checks every expected leaf. Schema problems never abort a test
// case: a missing document or an unknown type token skips validation with a note.
package schema
