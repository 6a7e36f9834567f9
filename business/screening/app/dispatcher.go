package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	bridgeApp "github.com/fd1az/bridge-screener/business/bridge/app"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/logger"
)

const meterName = "screening"

// DefaultMaxWait is the batch deadline used when none is configured.
const DefaultMaxWait = 90 * time.Second

// DispatcherConfig holds the dispatcher settings.
type DispatcherConfig struct {
	// MaxWait is the wall-clock deadline for one batch.
	MaxWait time.Duration
	// MaxWorkers caps concurrency. Zero runs every job at once.
	MaxWorkers int
}

// Outcome of one dispatched job.
type Outcome string

// Job outcomes.
const (
	OutcomeRecord   Outcome = "record"
	OutcomeNoRecord Outcome = "no_record"
	OutcomeFaulted  Outcome = "faulted"
	OutcomeTimedOut Outcome = "timed_out"
)

// DispatchResult is what one batch produced.
type DispatchResult struct {
	Records  domain.RecordSet
	Faulted  int
	TimedOut int
}

// Dispatcher runs one iteration's jobs concurrently against a quoter.
type Dispatcher struct {
	quoter   bridgeApp.Quoter
	selector *Selector
	cfg      DispatcherConfig
	logger   logger.LoggerInterface
	errLog   logger.LoggerInterface
	jobs     metric.Int64Counter
}

// NewDispatcher creates a dispatcher. Faults go to errLog; progress goes to
// log.
func NewDispatcher(quoter bridgeApp.Quoter, selector *Selector, cfg DispatcherConfig, log, errLog logger.LoggerInterface) (*Dispatcher, error) {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}

	jobs, err := otel.Meter(meterName).Int64Counter(
		"screening_jobs_total",
		metric.WithDescription("Dispatched jobs by outcome"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		quoter:   quoter,
		selector: selector,
		cfg:      cfg,
		logger:   log,
		errLog:   errLog,
		jobs:     jobs,
	}, nil
}

// collector gathers results until the batch is closed. Results arriving
// after close belong to abandoned workers and are dropped.
type collector struct {
	mu       sync.Mutex
	closed   bool
	records  domain.RecordSet
	finished map[int]Outcome
}

func (c *collector) add(idx int, outcome Outcome, rec *domain.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.finished[idx] = outcome
	if rec != nil {
		c.records.Add(*rec)
	}
	return true
}

func (c *collector) close() (domain.RecordSet, map[int]Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return c.records, c.finished
}

// Dispatch runs jobs with at most MaxWorkers in flight and returns when all
// finished or MaxWait elapsed, whichever is first. Outstanding jobs are
// abandoned against a cancelled context and yield no record.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []domain.Job) DispatchResult {
	batchCtx, cancel := context.WithTimeout(ctx, d.cfg.MaxWait)
	defer cancel()

	workers := len(jobs)
	if d.cfg.MaxWorkers > 0 && d.cfg.MaxWorkers < workers {
		workers = d.cfg.MaxWorkers
	}

	col := &collector{
		records:  make(domain.RecordSet),
		finished: make(map[int]Outcome, len(jobs)),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		g, gctx := errgroup.WithContext(batchCtx)
		g.SetLimit(max(workers, 1))
		for i := range jobs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				outcome, rec := d.runJob(gctx, jobs[i])
				if !col.add(i, outcome, rec) {
					d.logger.Debug(gctx, "dropping result of abandoned job", "job", jobs[i].Key())
				}
				return nil
			})
		}
		g.Wait()
	}()

	select {
	case <-done:
	case <-batchCtx.Done():
	}

	records, finished := col.close()

	result := DispatchResult{Records: records}
	for i, job := range jobs {
		outcome, ok := finished[i]
		if !ok {
			outcome = OutcomeTimedOut
		}
		switch outcome {
		case OutcomeFaulted:
			result.Faulted++
		case OutcomeTimedOut:
			result.TimedOut++
		}
		d.jobs.Add(ctx, 1, metric.WithAttributes(
			attribute.String("coin", job.Coin),
			attribute.String("outcome", string(outcome)),
		))
	}

	if result.TimedOut > 0 {
		err := apperror.New(apperror.CodeJobTimeout,
			apperror.WithContext("batch deadline "+d.cfg.MaxWait.String()))
		d.errLog.Error(ctx, "jobs abandoned at deadline",
			append(apperror.LogArgs(err), "count", result.TimedOut, "jobs", len(jobs))...)
	}

	return result
}

// runJob samples the job's amounts in order. The first fault ends sampling;
// samples taken before it still count.
func (d *Dispatcher) runJob(ctx context.Context, job domain.Job) (Outcome, *domain.Record) {
	samples := make([]domain.Sample, 0, len(job.Amounts))
	faulted := false

	for _, amount := range job.Amounts {
		out, err := d.quoter.EstimateOutput(ctx, amount, job.In, job.Out)
		if err != nil {
			if ctx.Err() != nil {
				return OutcomeTimedOut, nil
			}
			faulted = true
			d.errLog.Error(ctx, "bridge estimate failed",
				append(apperror.LogArgs(err), "job", job.Key(), "amount_in", amount.String(), "samples", len(samples))...)
			break
		}
		samples = append(samples, domain.Sample{AmountIn: amount, AmountOut: out})
	}

	outcome := OutcomeNoRecord
	rec, ok := d.selector.Select(job, samples)
	switch {
	case faulted:
		outcome = OutcomeFaulted
	case ok:
		outcome = OutcomeRecord
	}
	if !ok {
		return outcome, nil
	}
	return outcome, &rec
}
