package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apicase/internal/config"
	apitesting "apicase/internal/testing"
	"apicase/internal/testing/mock"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	api := httptest.NewServer(mock.NewAPI())
	t.Cleanup(api.Close)

	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"test_data/auth/TC001_whoami.csv": fmt.Sprintf(`END_POINT,%s/whoami
METHOD,GET
RESPONSE:JSON_PATH,error
RESPONSE:EXPECTED_VALUE,missing bearer token
RESPONSE:CODE,401
`, api.URL),
		"test_data/users/TC002_missing_user.csv": fmt.Sprintf(`END_POINT,%s/users/u-1
METHOD,GET
RESPONSE:JSON_PATH,error,error
RESPONSE:EXPECTED_VALUE,NONE,nope
RESPONSE:CODE,404
`, api.URL),
		"test_data/users/SMOKE_users.csv": fmt.Sprintf(`END_POINT,%s/users/u-1
METHOD,GET
RESPONSE:CODE,404
`, api.URL),
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}

	cfg := config.GetDefaultConfig()
	cfg.PollInterval = 20 * time.Millisecond
	cfg.DefaultPollTimeout = time.Second

	s, err := NewServer(cfg, apitesting.FrameworkOptions{Fs: fsys}, "test")
	require.NoError(t, err)
	return s
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content type %T", res.Content[0])
	return text.Text
}

func TestServer_ListTestCases(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		args    map[string]any
		want    []string
		wantErr bool
	}{
		{name: "no filter", args: map[string]any{}, want: []string{"TC001", "SMOKE", "TC002"}},
		{name: "filter", args: map[string]any{"filter": "^TC"}, want: []string{"TC001", "TC002"}},
		{name: "invalid filter", args: map[string]any{"filter": "("}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleListTestCases(context.Background(), callTool("list_test_cases", tt.args))
			require.NoError(t, err)

			if tt.wantErr {
				assert.True(t, res.IsError)
				return
			}
			assert.False(t, res.IsError)

			var cases []apitesting.TestCase
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &cases))
			names := make([]string, 0, len(cases))
			for _, tc := range cases {
				names = append(names, tc.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestServer_RunTestCase(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleRunTestCase(context.Background(), callTool("run_test_case", map[string]any{"name": "TC001"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var result apitesting.TestCaseResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.Equal(t, apitesting.ResultPassed, result.Result, "failures: %v, error: %s", result.Failures, result.Error)
	assert.Equal(t, "Auth", result.TestCase.Category)
	assert.Equal(t, 401, result.StatusCode)
	assert.True(t, result.ConditionMet)
}

func TestServer_RunTestCaseErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing name", args: map[string]any{}},
		{name: "unknown case", args: map[string]any{"name": "TC999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleRunTestCase(context.Background(), callTool("run_test_case", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestServer_RunTestSuite(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleGetResults(context.Background(), callTool("get_results", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "No test results available")

	res, err = s.handleRunTestSuite(context.Background(), callTool("run_test_suite", map[string]any{
		"run":      "^TC",
		"parallel": float64(2),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var suite apitesting.TestSuiteResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &suite))
	assert.Equal(t, 2, suite.TotalCases)
	assert.Equal(t, 1, suite.PassedCases)
	assert.Equal(t, 1, suite.FailedCases)
	assert.Equal(t, 2, suite.Configuration.Parallel)

	res, err = s.handleGetResults(context.Background(), callTool("get_results", nil))
	require.NoError(t, err)
	var last apitesting.TestSuiteResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &last))
	assert.Equal(t, 2, last.TotalCases)
}

func TestServer_RunTestSuiteRejectsBadArguments(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "parallel too low", args: map[string]any{"parallel": float64(0)}},
		{name: "parallel too high", args: map[string]any{"parallel": float64(MaxParallel + 1)}},
		{name: "invalid skip pattern", args: map[string]any{"skip": "["}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleRunTestSuite(context.Background(), callTool("run_test_suite", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}
