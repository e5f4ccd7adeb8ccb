// Package executor performs single HTTP exchanges against a fixed
// workload and classifies each result.
package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/volleyfire/volleyfire/internal/metrics"
	"github.com/volleyfire/volleyfire/internal/tracing"
	"github.com/volleyfire/volleyfire/internal/workload"
)

const maxErrorBodyBytes = 1024

// HTTPError represents an error-status response with body details.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTP executes requests described by a single workload spec. It is
// stateless across calls and safe for concurrent use by every worker.
type HTTP struct {
	spec      *workload.Spec
	client    *http.Client
	tracer    trace.Tracer
	propagate bool
}

// New builds an executor whose transport is tuned for sustained load
// against a single host.
func New(spec *workload.Spec) *HTTP {
	return &HTTP{spec: spec, client: newClient(spec)}
}

// WithTracing wraps every request in a span from tracer. When propagate
// is set, W3C trace context headers are injected into each request.
func (h *HTTP) WithTracing(tracer trace.Tracer, propagate bool) *HTTP {
	h.tracer = tracer
	h.propagate = propagate
	return h
}

// Execute performs one exchange and returns its outcome. The latency
// spans dispatch to full response receipt, body included. Execute never
// retries.
func (h *HTTP) Execute(ctx context.Context, seq uint64, worker int) metrics.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	var span trace.Span
	if h.tracer != nil {
		ctx, span = tracing.StartRequestSpan(ctx, h.tracer, h.spec.Method, h.spec.URL)
	}

	start := time.Now()
	req, err := h.buildRequest(ctx)
	if err != nil {
		// The spec is validated before any worker starts, so a build
		// failure here is unexpected.
		return h.finish(span, metrics.Outcome{
			Seq:     seq,
			Worker:  worker,
			Latency: time.Since(start),
			Class:   metrics.ClassTransportError,
			Reason:  metrics.ReasonOther,
			Err:     err,
		})
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return h.finish(span, metrics.Outcome{
			Seq:     seq,
			Worker:  worker,
			Latency: time.Since(start),
			Class:   metrics.ClassTransportError,
			Reason:  Classify(err),
			Err:     err,
		})
	}

	out := metrics.Outcome{
		Seq:        seq,
		Worker:     worker,
		Class:      metrics.ClassSuccess,
		StatusCode: resp.StatusCode,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		out.Class = metrics.ClassHTTPError
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		out.Err = &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	// The timer covers the whole exchange: draining the body is part of
	// the measured work and hands the connection back for reuse.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	out.Latency = time.Since(start)

	return h.finish(span, out)
}

// Close releases idle connections held by the transport.
func (h *HTTP) Close() {
	h.client.CloseIdleConnections()
}

func (h *HTTP) buildRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if len(h.spec.Body) > 0 {
		body = bytes.NewReader(h.spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, h.spec.Method, h.spec.URL, body)
	if err != nil {
		return nil, err
	}

	// Add keeps repeated names as repeated fields, in the order the
	// spec lists them.
	for _, hdr := range h.spec.Headers {
		req.Header.Add(hdr.Name, hdr.Value)
	}

	if h.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}
	return req, nil
}

func (h *HTTP) finish(span trace.Span, out metrics.Outcome) metrics.Outcome {
	if span != nil {
		attrs := []attribute.KeyValue{
			attribute.Int64("volleyfire.seq", int64(out.Seq)),
		}
		if out.StatusCode != 0 {
			attrs = append(attrs, attribute.Int("http.response.status_code", out.StatusCode))
		}
		tracing.EndSpan(span, out.Err, attrs...)
	}
	return out
}

func newClient(spec *workload.Spec) *http.Client {
	keepAlive := spec.KeepAlive
	if keepAlive == 0 {
		keepAlive = 30 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: keepAlive,
	}

	// Idle pool sized to the worker count so a full complement of
	// connections survives between iterations.
	perHost := spec.Concurrency
	if perHost < 32 {
		perHost = 32
	}
	maxIdle := 256
	if perHost > maxIdle {
		maxIdle = perHost
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if spec.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Timeout:   spec.Timeout,
		Transport: transport,
	}
}
