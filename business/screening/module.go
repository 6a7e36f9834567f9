// Package screening implements the screening bounded context: expanding the
// coin schema into jobs and running the dispatch, dedup and alert loop.
package screening

import (
	"context"

	alertingDI "github.com/fd1az/bridge-screener/business/alerting/di"
	bridgeDI "github.com/fd1az/bridge-screener/business/bridge/di"
	"github.com/fd1az/bridge-screener/business/screening/app"
	screeningDI "github.com/fd1az/bridge-screener/business/screening/di"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/business/screening/infra"
	"github.com/fd1az/bridge-screener/internal/chain"
	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/logger"
	"github.com/fd1az/bridge-screener/internal/monolith"
)

// Module implements the screening bounded context.
type Module struct{}

// RegisterServices expands the coin schema and registers the screening
// services. A schema that yields no valid jobs fails here, before anything
// starts.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)
	chains := c.Get("chains").(*chain.Registry)

	jobs, err := app.Expand(cfg.Coins, cfg.Settings.SpecialRouting, chains)
	if err != nil {
		return err
	}

	di.RegisterToken(c, screeningDI.Jobs, func(di.ServiceRegistry) []domain.Job {
		return jobs
	})

	di.RegisterToken(c, screeningDI.Selector, func(sr di.ServiceRegistry) *app.Selector {
		cfg := sr.Get("config").(*config.Config)
		return app.NewSelector(cfg.Settings.MinDiffDecimal())
	})

	di.RegisterToken(c, screeningDI.Dispatcher, func(sr di.ServiceRegistry) *app.Dispatcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		errLog := sr.Get("errorLog").(logger.LoggerInterface)

		d, err := app.NewDispatcher(
			bridgeDI.GetQuoter(sr),
			di.GetToken(sr, screeningDI.Selector),
			app.DispatcherConfig{
				MaxWait:    cfg.Settings.MaxWait(),
				MaxWorkers: cfg.Settings.MaxWorkers,
			},
			log, errLog)
		if err != nil {
			panic("failed to create dispatcher: " + err.Error())
		}
		return d
	})

	di.RegisterToken(c, screeningDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter(cfg.App.Name)
	})

	di.RegisterToken(c, screeningDI.Loop, func(sr di.ServiceRegistry) *app.Loop {
		cfg := sr.Get("config").(*config.Config)

		loop, err := app.NewLoop(screeningDI.GetJobs(sr), cfg.Settings.SleepDuration(), app.LoopDeps{
			Dispatcher: di.GetToken(sr, screeningDI.Dispatcher),
			Alerter:    alertingDI.GetRouter(sr),
			Reporter:   screeningDI.GetReporter(sr),
			Logger:     sr.Get("logger").(logger.LoggerInterface),
			AlertLog:   sr.Get("alertLog").(logger.LoggerInterface),
		})
		if err != nil {
			panic("failed to create screening loop: " + err.Error())
		}
		return loop
	})

	return nil
}

// Startup shows the job table, registers the loop's health check and tells
// the debug chat the screener is up.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	jobs := screeningDI.GetJobs(mono.Services())
	loop := screeningDI.GetLoop(mono.Services())

	if err := screeningDI.GetReporter(mono.Services()).Start(ctx, jobs); err != nil {
		return err
	}

	if hs, ok := mono.Services().Get("health").(*health.Server); ok && hs != nil {
		// An iteration may take the full batch deadline plus the sleep; allow two.
		maxAge := 2 * (cfg.Settings.SleepDuration() + cfg.Settings.MaxWait())
		hs.RegisterCheck("screening_loop", loop.FreshnessCheck(maxAge))
	}

	alertingDI.GetRouter(mono.Services()).Started(ctx)

	mono.Logger().Info(ctx, "screening module started",
		"jobs", len(jobs),
		"sleep", cfg.Settings.SleepDuration(),
		"max_wait", cfg.Settings.MaxWait())
	return nil
}
