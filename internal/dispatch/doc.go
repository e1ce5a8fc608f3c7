// Package dispatch sends requests and polls for response conditions.
//
// A Condition comes from the first expected value of a test case, written
// "<substring>[:<seconds>]". When it is active, Poll re-sends the request every
// poll interval until the body contains the substring or the timeout elapses.
// On timeout the last response is returned as final without an error. Attempts
// never overlap, and each one is bounded by the remaining timeout.
//
// Strict methods use a client that does not follow redirects. RELAX_ methods use
// a client that skips TLS verification and follows redirects. All requests share
// one optional rate limiter.
package dispatch
