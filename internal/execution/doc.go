// Package execution holds the per-test-case state shared by every pipeline stage.
//
// A Context is created by the runner when a test case starts and cleared when it
// ends. It carries the global variables written by response extraction and extension
// calls, the last HTTP response, and the soft assertion failures accumulated while
// validating. A dependent test case runs on the caller's Context, so it can read and
// overwrite the caller's variables.
package execution
