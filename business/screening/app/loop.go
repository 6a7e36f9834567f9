package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/apm"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/logger"
)

const tracerName = "screening.loop"

// LoopDeps groups the loop's collaborators.
type LoopDeps struct {
	Dispatcher *Dispatcher
	Alerter    Alerter
	Reporter   Reporter
	// Logger receives progress; AlertLog receives alerts and iteration
	// durations.
	Logger   logger.LoggerInterface
	AlertLog logger.LoggerInterface
}

type loopMetrics struct {
	iterations metric.Int64Counter
	duration   metric.Float64Histogram
	alerts     metric.Int64Counter
}

// Loop drives iterations forever: dispatch, dedup, alert, sleep.
type Loop struct {
	jobs  []domain.Job
	sleep time.Duration
	deps  LoopDeps

	tracer  apm.Tracer
	metrics loopMetrics

	// previous is touched only by the goroutine running the loop.
	previous  domain.RecordSet
	iteration uint64

	started      time.Time
	lastFinished atomic.Int64
}

// NewLoop creates a loop over a fixed job list.
func NewLoop(jobs []domain.Job, sleep time.Duration, deps LoopDeps) (*Loop, error) {
	meter := otel.Meter(meterName)

	iterations, err := meter.Int64Counter("screening_iterations_total",
		metric.WithDescription("Finished loop iterations"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("screening_iteration_duration_seconds",
		metric.WithDescription("Iteration wall-clock time, sleep included"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	alerts, err := meter.Int64Counter("screening_alerts_total",
		metric.WithDescription("Newly surfaced arbitrage records"))
	if err != nil {
		return nil, err
	}

	return &Loop{
		jobs:     jobs,
		sleep:    sleep,
		deps:     deps,
		tracer:   apm.NewTracer(tracerName),
		metrics:  loopMetrics{iterations: iterations, duration: duration, alerts: alerts},
		previous: make(domain.RecordSet),
		started:  time.Now(),
	}, nil
}

// Jobs returns the job list the loop screens.
func (l *Loop) Jobs() []domain.Job {
	return l.jobs
}

// Run iterates until ctx is cancelled, then returns ctx's error.
func (l *Loop) Run(ctx context.Context) error {
	l.deps.Logger.Info(ctx, "screening loop started", "jobs", len(l.jobs), "sleep", l.sleep)

	for {
		if err := ctx.Err(); err != nil {
			l.deps.Logger.Info(ctx, "screening loop stopped", "iterations", l.iteration)
			return err
		}
		l.RunOnce(ctx)
	}
}

// RunOnce performs a single iteration and returns its stats.
func (l *Loop) RunOnce(ctx context.Context) IterationStats {
	start := time.Now()

	ctx, span := l.tracer.StartSpanFromContext(ctx, "screening.iteration")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("iteration", int64(l.iteration)),
		attribute.Int("jobs", len(l.jobs)),
	)

	result := l.deps.Dispatcher.Dispatch(ctx, l.jobs)
	fresh := domain.Complement(l.previous, result.Records)

	for _, rec := range fresh.Sorted() {
		l.deps.AlertLog.Info(ctx, rec.TerminalMessage,
			"coin", rec.Coin, "id", rec.ID, "arbitrage", rec.Arbitrage.String())
		l.deps.Reporter.ReportAlert(rec)
		l.deps.Alerter.Alert(ctx, rec)
		span.AddEvent("alert", attribute.String("id", rec.ID), attribute.String("job", rec.Job.Key()))
		l.metrics.alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("coin", rec.Coin)))
	}

	l.previous = result.Records

	span.SetAttributes(
		attribute.Int("records", len(result.Records)),
		attribute.Int("new", len(fresh)),
		attribute.Int("faulted", result.Faulted),
		attribute.Int("timed_out", result.TimedOut),
	)
	if result.TimedOut > 0 {
		span.RecordFault(apperror.New(apperror.CodeJobTimeout,
			apperror.WithContext(fmt.Sprintf("%d of %d jobs", result.TimedOut, len(l.jobs)))))
	}

	l.pause(ctx)

	elapsed := time.Since(start)
	l.deps.AlertLog.Info(ctx, fmt.Sprintf("Loop executed in %.2f seconds", elapsed.Seconds()),
		"iteration", l.iteration, "records", len(result.Records), "new", len(fresh))

	stats := IterationStats{
		Number:   l.iteration,
		Jobs:     len(l.jobs),
		Records:  len(result.Records),
		New:      len(fresh),
		Faulted:  result.Faulted,
		TimedOut: result.TimedOut,
		Duration: elapsed,
		Finished: time.Now(),
	}

	l.iteration++
	l.lastFinished.Store(stats.Finished.UnixNano())
	l.metrics.iterations.Add(ctx, 1)
	l.metrics.duration.Record(ctx, elapsed.Seconds())
	l.deps.Reporter.ReportIteration(stats)

	return stats
}

func (l *Loop) pause(ctx context.Context) {
	if l.sleep <= 0 {
		return
	}
	t := time.NewTimer(l.sleep)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// FreshnessCheck reports unhealthy once no iteration has finished within
// maxAge, counting from loop creation until the first one does.
func (l *Loop) FreshnessCheck(maxAge time.Duration) health.CheckFunc {
	return func(ctx context.Context) (bool, string) {
		last := l.started
		if ns := l.lastFinished.Load(); ns != 0 {
			last = time.Unix(0, ns)
		}
		age := time.Since(last).Round(time.Second)
		if age > maxAge {
			return false, fmt.Sprintf("last iteration finished %s ago", age)
		}
		return true, fmt.Sprintf("last iteration finished %s ago", age)
	}
}
