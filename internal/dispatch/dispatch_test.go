package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apicase/internal/request"
)

// counting wraps a handler and counts the requests it serves.
type counting struct {
	next http.Handler
	n    atomic.Int32
}

func (c *counting) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.n.Add(1)
	c.next.ServeHTTP(w, r)
}

func bodyHandler(body string) http.Handler {
	return httphelpers.HandlerWithResponse(http.StatusOK, nil, []byte(body))
}

func getParams(endpoint string) *request.Parameters {
	return &request.Parameters{Endpoint: endpoint, Method: request.Method{Verb: http.MethodGet}}
}

func TestParseCondition(t *testing.T) {
	def := 30 * time.Second
	tests := []struct {
		name  string
		first any
		want  Condition
	}{
		{name: "token with timeout", first: "ok:10", want: Condition{Token: "ok", Timeout: 10 * time.Second}},
		{name: "token only", first: "ready", want: Condition{Token: "ready", Timeout: def}},
		{name: "NONE", first: "NONE", want: Condition{Token: "NONE", Timeout: def}},
		{name: "NONE with timeout", first: "NONE:5", want: Condition{Token: "NONE", Timeout: 5 * time.Second}},
		{name: "non numeric suffix kept", first: "10:30 AM", want: Condition{Token: "10:30 AM", Timeout: def}},
		{name: "zero timeout", first: "ready:0", want: Condition{Token: "ready", Timeout: 0}},
		{name: "last colon wins", first: "a:b:3", want: Condition{Token: "a:b", Timeout: 3 * time.Second}},
		{name: "nil", first: nil, want: Condition{Timeout: def}},
		{name: "number", first: 42, want: Condition{Token: "42", Timeout: def}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCondition(tt.first, def))
		})
	}

	assert.False(t, Condition{Token: "NONE"}.Active())
	assert.False(t, Condition{}.Active())
	assert.True(t, Condition{Token: "ok"}.Active())
}

func TestPoll_SingleSendForInactiveCondition(t *testing.T) {
	h := &counting{next: bodyHandler(`{"status":"pending"}`)}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		d := New(Options{PollInterval: 10 * time.Millisecond})

		resp, out, err := d.Poll(context.Background(), getParams(server.URL), Condition{Token: "NONE", Timeout: time.Hour})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, Outcome{Attempts: 1}, out)
		assert.Equal(t, int32(1), h.n.Load())
	})
}

func TestPoll_UntilConditionMet(t *testing.T) {
	h := &counting{next: httphelpers.SequentialHandler(
		bodyHandler(`{"status":"pending"}`),
		bodyHandler(`{"status":"pending"}`),
		bodyHandler(`{"status":"ready"}`),
	)}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		d := New(Options{PollInterval: 10 * time.Millisecond})

		resp, out, err := d.Poll(context.Background(), getParams(server.URL), Condition{Token: "ready", Timeout: 5 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, `{"status":"ready"}`, resp.BodyString())
		assert.True(t, out.ConditionMet)
		assert.False(t, out.TimedOut)
		assert.Equal(t, 3, out.Attempts)
		assert.Equal(t, int32(3), h.n.Load())
	})
}

func TestPoll_TimeoutReturnsLastResponse(t *testing.T) {
	h := &counting{next: bodyHandler(`{"status":"pending"}`)}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		reg := prometheus.NewRegistry()
		metrics := NewMetrics(reg)
		d := New(Options{PollInterval: 50 * time.Millisecond, Metrics: metrics})

		timeout := 300 * time.Millisecond
		start := time.Now()
		resp, out, err := d.Poll(context.Background(), getParams(server.URL), Condition{Token: "ready", Timeout: timeout})
		elapsed := time.Since(start)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, `{"status":"pending"}`, resp.BodyString())
		assert.True(t, out.TimedOut)
		assert.False(t, out.ConditionMet)
		assert.GreaterOrEqual(t, out.Attempts, 2)
		assert.GreaterOrEqual(t, elapsed, timeout)
		assert.Less(t, elapsed, timeout+time.Second)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PollTimeouts))
	})
}

func TestPoll_ZeroTimeoutSendsOnce(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		conditionMet bool
	}{
		{name: "condition met", body: `{"status":"ready"}`, conditionMet: true},
		{name: "condition not met", body: `{"status":"pending"}`, conditionMet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &counting{next: bodyHandler(tt.body)}
			httphelpers.WithServer(h, func(server *httptest.Server) {
				d := New(Options{PollInterval: time.Hour})

				resp, out, err := d.Poll(context.Background(), getParams(server.URL), ParseCondition("ready:0", 30*time.Second))
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, tt.body, resp.BodyString())
				assert.Equal(t, 1, out.Attempts)
				assert.Equal(t, tt.conditionMet, out.ConditionMet)
				assert.Equal(t, !tt.conditionMet, out.TimedOut)
				assert.Equal(t, int32(1), h.n.Load())
			})
		})
	}
}

func TestSend_TransportErrorIsUnwrapped(t *testing.T) {
	server := httptest.NewServer(bodyHandler("x"))
	endpoint := server.URL
	server.Close()

	d := New(Options{})
	_, out, err := d.Poll(context.Background(), getParams(endpoint), Condition{Token: "NONE"})
	require.Error(t, err)

	var uerr *url.Error
	assert.ErrorAs(t, err, &uerr)
	assert.Equal(t, 1, out.Attempts)
}

func TestSend_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/target", bodyHandler("arrived"))
	mux.Handle("/start", httphelpers.HandlerWithResponse(http.StatusFound, http.Header{"Location": []string{"/target"}}, nil))

	httphelpers.WithServer(mux, func(server *httptest.Server) {
		d := New(Options{})

		resp, err := d.Send(context.Background(), getParams(server.URL+"/start"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)

		relaxed := getParams(server.URL + "/start")
		relaxed.Method.Relaxed = true
		resp, err = d.Send(context.Background(), relaxed)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "arrived", resp.BodyString())
	})
}

func TestSend_RelaxedSkipsTLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(bodyHandler("secure"))
	defer server.Close()

	d := New(Options{})

	_, err := d.Send(context.Background(), getParams(server.URL))
	require.Error(t, err)

	relaxed := getParams(server.URL)
	relaxed.Method.Relaxed = true
	resp, err := d.Send(context.Background(), relaxed)
	require.NoError(t, err)
	assert.Equal(t, "secure", resp.BodyString())
}

func TestSend_RecordsMetrics(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(http.StatusNoContent), func(server *httptest.Server) {
		reg := prometheus.NewRegistry()
		metrics := NewMetrics(reg)
		d := New(Options{Metrics: metrics})

		_, err := d.Send(context.Background(), getParams(server.URL))
		require.NoError(t, err)
		_, err = d.Send(context.Background(), getParams(server.URL))
		require.NoError(t, err)

		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("GET", "204")))
	})
}

func TestSend_RateLimited(t *testing.T) {
	h := &counting{next: httphelpers.HandlerWithStatus(http.StatusOK)}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		d := New(Options{RequestsPerSecond: 20, Burst: 1})

		start := time.Now()
		for i := 0; i < 3; i++ {
			_, err := d.Send(context.Background(), getParams(server.URL))
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
		assert.Equal(t, int32(3), h.n.Load())
	})
}

func TestCurlCommand(t *testing.T) {
	p := &request.Parameters{
		Method:  request.Method{Verb: http.MethodPost, Relaxed: true},
		Headers: map[string]any{"X-Name": "it's"},
		Auth:    map[string]any{"Bearer": "secret"},
	}

	got := curlCommand(p, "http://api.local/users?a=1&b=2", []byte(`{"a":1}`))
	assert.Equal(t,
		`curl -X POST -k -L -H 'X-Name: it'"'"'s' -H 'Authorization: Bearer ***' --data '{"a":1}' 'http://api.local/users?a=1&b=2'`,
		got)
}
