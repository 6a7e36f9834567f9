// Package synapse queries the Synapse bridge REST API for output estimates.
package synapse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/bridge-screener/business/bridge/app"
	"github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/chain"
	"github.com/fd1az/bridge-screener/internal/circuitbreaker"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/httpclient"
	"github.com/fd1az/bridge-screener/internal/logger"
)

const (
	tracerName = "bridge.synapse"
	meterName  = "bridge.synapse"

	estimateEndpoint = "/v1/estimate_bridge_output"

	// DefaultBaseURL is the public estimate API.
	DefaultBaseURL = "https://syn-api-dev.herokuapp.com"
)

var _ app.Quoter = (*Client)(nil)

// Config holds the client settings.
type Config struct {
	BaseURL string
	// Timeout bounds one estimate, retries included.
	Timeout time.Duration
	// Retry is the transport retry budget.
	Retry httpclient.RetryPolicy
	// RoundTripper overrides the base transport (tests).
	RoundTripper http.RoundTripper
}

// DefaultConfig returns the production settings: two attempts per call.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 20 * time.Second,
		Retry:   httpclient.DefaultRetryPolicy(),
	}
}

type clientMetrics struct {
	estimates metric.Int64Counter
	latency   metric.Float64Histogram
	breaker   metric.Int64Counter
}

// Client implements app.Quoter over HTTP.
type Client struct {
	http    httpclient.Client
	cb      *circuitbreaker.CircuitBreaker[decimal.Decimal]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *clientMetrics
}

// estimateResponse accepts amountToReceive as a JSON string or number.
type estimateResponse struct {
	AmountToReceive *decimal.Decimal `json:"amountToReceive"`
}

// NewClient builds a client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	tracer := otel.Tracer(tracerName)

	retry := cfg.Retry
	retry.OnRetry = func(err error, wait time.Duration) {
		log.Debug(context.Background(), "retrying bridge request", "error", err, "wait", wait)
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("synapse"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithRetryPolicy(retry),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	}
	if cfg.RoundTripper != nil {
		opts = append(opts, httpclient.WithRoundTripper(cfg.RoundTripper))
	}

	hc, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	c := &Client{
		http:   hc,
		logger: log,
		tracer: tracer,
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	c.initCircuitBreaker()

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.estimates, err = meter.Int64Counter(
		"bridge_estimates_total",
		metric.WithDescription("Bridge output estimates by outcome"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return err
	}

	c.metrics.latency, err = meter.Float64Histogram(
		"bridge_estimate_duration_seconds",
		metric.WithDescription("Bridge estimate latency, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	c.metrics.breaker, err = meter.Int64Counter(
		"bridge_circuit_transitions_total",
		metric.WithDescription("Circuit breaker state changes"),
	)
	return err
}

// initCircuitBreaker trips only on transport faults; a malformed body means
// the API is up.
func (c *Client) initCircuitBreaker() {
	cfg := circuitbreaker.DefaultConfig("synapse")
	cfg.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		return apperror.FaultKind(err) != apperror.FaultTransport
	}
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Warn(context.Background(), "bridge circuit changed state",
			"breaker", name, "from", from.String(), "to", to.String())
		c.metrics.breaker.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("to", to.String())))
	}
	c.cb = circuitbreaker.New[decimal.Decimal](cfg)
}

// CircuitCheck reports unhealthy while the breaker is open.
func (c *Client) CircuitCheck() health.CheckFunc {
	return func(context.Context) (bool, string) {
		state := c.cb.State()
		return state != gobreaker.StateOpen, "circuit " + state.String()
	}
}

// EstimateOutput implements app.Quoter.
func (c *Client) EstimateOutput(ctx context.Context, amountIn decimal.Decimal, in, out domain.Network) (decimal.Decimal, error) {
	route := domain.Route{In: in, Out: out}

	ctx, span := c.tracer.Start(ctx, "synapse.estimate_output",
		trace.WithAttributes(
			attribute.String("route", route.Key()),
			attribute.String("token_in", in.Token),
			attribute.String("token_out", out.Token),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	start := time.Now()
	amountOut, err := c.cb.Execute(func() (decimal.Decimal, error) {
		return c.estimate(ctx, amountIn, route)
	})
	c.metrics.latency.Record(ctx, time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = string(apperror.FaultKind(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(attribute.String("amount_out", amountOut.String()))
		span.SetStatus(codes.Ok, "estimated")
	}
	c.metrics.estimates.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route.Key()),
		attribute.String("outcome", outcome),
	))

	return amountOut, err
}

func (c *Client) estimate(ctx context.Context, amountIn decimal.Decimal, route domain.Route) (decimal.Decimal, error) {
	raw, err := chain.ToBaseUnits(amountIn, route.In.Decimals)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err), apperror.WithContext(route.Key()))
	}

	var result estimateResponse
	resp, err := c.http.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "estimate_bridge_output"),
		),
		httpclient.WithResponseErrorHandler(statusFault(route.Key())),
	).
		SetQueryParam("fromChain", strconv.FormatUint(route.In.ChainID, 10)).
		SetQueryParam("toChain", strconv.FormatUint(route.Out.ChainID, 10)).
		SetQueryParam("fromToken", route.In.Token).
		SetQueryParam("toToken", route.Out.Token).
		SetQueryParam("amountFrom", raw.String()).
		SetResult(&result).
		Get(ctx, estimateEndpoint)

	if err != nil {
		if apperror.IsAppError(err) {
			return decimal.Zero, err
		}
		return decimal.Zero, apperror.External(apperror.CodeBridgeConnectionFailed, route.Key(), err)
	}

	if derr := resp.DecodeError(); derr != nil {
		return decimal.Zero, apperror.New(apperror.CodeBridgeInvalidResponse,
			apperror.WithCause(derr), apperror.WithContext(route.Key()))
	}
	if result.AmountToReceive == nil {
		return decimal.Zero, apperror.New(apperror.CodeBridgeMissingField,
			apperror.WithContext(route.Key()))
	}

	amountOut := chain.FromBaseUnits(*result.AmountToReceive, route.Out.Decimals)

	c.logger.Debug(ctx, "bridge estimate",
		"route", route.Key(),
		"amount_in", amountIn.String(),
		"amount_out", amountOut.String())

	return amountOut, nil
}

// statusFault classifies HTTP errors: a 5xx means the API is down
// (transport fault), a 4xx means it rejected the query (response fault).
func statusFault(routeKey string) httpclient.ResponseErrorHandler {
	return func(status int, body []byte) error {
		switch {
		case status >= http.StatusInternalServerError:
			return apperror.New(apperror.CodeBridgeConnectionFailed,
				apperror.WithContext(fmt.Sprintf("%s: HTTP %d", routeKey, status)))
		case status >= http.StatusBadRequest:
			return apperror.New(apperror.CodeBridgeInvalidResponse,
				apperror.WithContext(fmt.Sprintf("%s: HTTP %d: %s", routeKey, status, truncate(string(body), 200))))
		}
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
