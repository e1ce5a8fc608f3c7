// Package mock provides a fake HTTP API for exercising test cases end to end.
//
// The API keeps users and job states in memory and is meant to be wrapped in
// an httptest.Server:
//
//	api := mock.NewAPI()
//	srv := httptest.NewServer(api)
//	defer srv.Close()
//
// Jobs report "pending" for the first ReadyAfter reads and "ready" afterwards,
// which makes them suitable for polling tests.
package mock
