// Package httpclient provides an instrumented HTTP client with OTEL tracing,
// metrics and a bounded retry transport.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceOption selects which bodies are attached to request spans.
type TraceOption string

const (
	TraceRequest  TraceOption = "request"
	TraceResponse TraceOption = "response"
)

type clientOptions struct {
	providerName   string
	baseURL        string
	headers        map[string]string
	requestTimeout time.Duration
	roundTripper   http.RoundTripper
	retry          *RetryPolicy
	secretURL      bool

	tracer      trace.Tracer
	logRequest  bool
	logResponse bool
}

// ClientOption configures NewInstrumentedClient.
type ClientOption func(*clientOptions)

// WithProviderName names the upstream in metrics and spans.
func WithProviderName(name string) ClientOption {
	return func(o *clientOptions) { o.providerName = name }
}

// WithBaseURL is prefixed to relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *clientOptions) { o.headers = headers }
}

// WithRequestTimeout bounds a whole call, retries included.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) { o.requestTimeout = timeout }
}

// WithRoundTripper replaces the base transport.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.roundTripper = rt }
}

// WithRetryPolicy installs the retry transport under the instrumentation.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(o *clientOptions) { o.retry = &p }
}

// WithSecretURL marks the base URL as carrying a credential, such as a bot
// token in the path. Transport-level spans, which record the full URL, are
// not emitted; request spans only record the path.
func WithSecretURL() ClientOption {
	return func(o *clientOptions) { o.secretURL = true }
}

// WithTraceOptions sets the tracer and which bodies go into span events.
func WithTraceOptions(tracer trace.Tracer, opts ...TraceOption) ClientOption {
	return func(o *clientOptions) {
		o.tracer = tracer
		for _, opt := range opts {
			switch opt {
			case TraceRequest:
				o.logRequest = true
			case TraceResponse:
				o.logResponse = true
			}
		}
	}
}

type requestOptions struct {
	errorHandler ResponseErrorHandler
	labels       []*Label
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// ResponseErrorHandler maps a completed response to an error, or nil. A
// non-nil error is returned from the call alongside the response.
type ResponseErrorHandler func(statusCode int, body []byte) error

// WithResponseErrorHandler classifies responses for one request.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *requestOptions) { o.errorHandler = handler }
}

// Label is a key-value pair attached to the request metric.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a new label.
func NewLabel(key, value string) *Label {
	return &Label{Key: key, Value: value}
}

// WithLabels sets labels for the request.
func WithLabels(labels ...*Label) RequestOption {
	return func(o *requestOptions) { o.labels = labels }
}
