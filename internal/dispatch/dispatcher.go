package dispatch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"apicase/internal/execution"
	"apicase/internal/jsonpath"
	"apicase/internal/request"
	"apicase/pkg/logging"
)

// Default settings used when Options leaves them zero.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultPollInterval   = time.Second
)

// Options configures a Dispatcher.
type Options struct {
	RequestTimeout time.Duration
	PollInterval   time.Duration

	// RequestsPerSecond limits outgoing requests across all workers. Zero means
	// unlimited.
	RequestsPerSecond float64
	Burst             int

	// Metrics defaults to an unregistered set.
	Metrics *Metrics

	// Transport replaces the default transports of both clients.
	Transport http.RoundTripper
}

// Outcome describes how a Poll ended.
type Outcome struct {
	Attempts     int
	ConditionMet bool
	TimedOut     bool
}

// Dispatcher sends requests. It is safe for concurrent use.
type Dispatcher struct {
	strict       *http.Client
	relaxed      *http.Client
	limiter      *rate.Limiter
	pollInterval time.Duration
	metrics      *Metrics
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	strictTransport, relaxedTransport := opts.Transport, opts.Transport
	if opts.Transport == nil {
		base := http.DefaultTransport.(*http.Transport)
		strictTransport = base.Clone()
		rt := base.Clone()
		rt.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // RELAX_ methods opt out of verification
		relaxedTransport = rt
	}

	d := &Dispatcher{
		strict: &http.Client{
			Timeout:   opts.RequestTimeout,
			Transport: strictTransport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		relaxed: &http.Client{
			Timeout:   opts.RequestTimeout,
			Transport: relaxedTransport,
		},
		pollInterval: opts.PollInterval,
		metrics:      opts.Metrics,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return d
}

// Send performs one request. Transport errors are returned unwrapped.
func (d *Dispatcher) Send(ctx context.Context, p *request.Parameters) (*execution.Response, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := p.NewHTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	if logging.Enabled(logging.LevelDebug) {
		logging.Debug("Dispatcher", "%s", curlCommand(p, req.URL.String(), peekBody(req)))
	}

	client := d.strict
	if p.Method.Relaxed {
		client = d.relaxed
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		d.metrics.observeRequest(p.Method.String(), 0, 0)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.metrics.observeRequest(p.Method.String(), 0, 0)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	elapsed := time.Since(start)
	d.metrics.observeRequest(p.Method.String(), resp.StatusCode, elapsed.Seconds())

	logging.Debug("Dispatcher", "%s %s -> %d in %s", p.Method, req.URL, resp.StatusCode, elapsed)
	return &execution.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   elapsed,
	}, nil
}

// Poll sends p once, or repeatedly while cond is active. A timed-out poll
// returns the last response with a nil error; only when no attempt produced a
// response is the last transport error returned.
func (d *Dispatcher) Poll(ctx context.Context, p *request.Parameters, cond Condition) (*execution.Response, Outcome, error) {
	if !cond.Active() {
		resp, err := d.Send(ctx, p)
		return resp, Outcome{Attempts: 1}, err
	}

	pollCtx, cancel := context.WithTimeout(ctx, cond.Timeout)
	defer cancel()

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	var (
		out     Outcome
		last    *execution.Response
		lastErr error
	)
	for {
		out.Attempts++
		// The first attempt always goes out, even with a zero timeout.
		sendCtx := pollCtx
		if out.Attempts == 1 {
			sendCtx = ctx
		}
		resp, err := d.Send(sendCtx, p)
		switch {
		case err != nil && ctx.Err() != nil:
			return last, out, ctx.Err()
		case err != nil:
			if !errors.Is(err, context.DeadlineExceeded) || last == nil {
				lastErr = err
			}
			logging.Debug("Dispatcher", "Poll attempt %d failed: %v", out.Attempts, err)
		default:
			last, lastErr = resp, nil
			if strings.Contains(resp.BodyString(), cond.Token) {
				out.ConditionMet = true
				d.metrics.PollAttempts.Observe(float64(out.Attempts))
				return last, out, nil
			}
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return last, out, ctx.Err()
			}
			out.TimedOut = true
			d.metrics.PollAttempts.Observe(float64(out.Attempts))
			d.metrics.PollTimeouts.Inc()
			logging.Info("Dispatcher", "Response did not contain %q within %s after %d attempts", cond.Token, cond.Timeout, out.Attempts)
			if last == nil {
				return nil, out, lastErr
			}
			return last, out, nil
		case <-ticker.C:
		}
	}
}

func peekBody(req *http.Request) []byte {
	if req.GetBody == nil {
		return nil
	}
	rc, err := req.GetBody()
	if err != nil {
		return nil
	}
	defer rc.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(rc)
	return buf.Bytes()
}

func stringValue(v any) string {
	return jsonpath.Stringify(v)
}
