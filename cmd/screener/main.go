// Package main is the entry point for the bridge arbitrage screener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/bridge-screener/business/alerting"
	alertingDI "github.com/fd1az/bridge-screener/business/alerting/di"
	"github.com/fd1az/bridge-screener/business/bridge"
	"github.com/fd1az/bridge-screener/business/screening"
	screeningDI "github.com/fd1az/bridge-screener/business/screening/di"
	"github.com/fd1az/bridge-screener/internal/apm"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/logger"
	"github.com/fd1az/bridge-screener/internal/metrics"
	"github.com/fd1az/bridge-screener/internal/monolith"
	"github.com/fd1az/bridge-screener/pkg/ui"
)

// stopGrace bounds the wait for the loop after the TUI exits.
const stopGrace = 10 * time.Second

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <config>

<config> is a path to a JSON schema file or the JSON document itself.
Secrets are read from the environment or a .env file:
  TOKEN, CHAT_ID_ALERTS, CHAT_ID_SPECIAL, CHAT_ID_DEBUG

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	flag.Usage = usage
	tuiMode := flag.Bool("tui", false, "Run with the terminal dashboard instead of log output")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bridge-screener %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !*tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, flag.Arg(0), *tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		code := exitCode(err)
		if code == 2 {
			usage()
		}
		os.Exit(code)
	}
}

// exitCode maps a startup error to the process status: 2 for a malformed
// schema or missing settings, 1 for anything else.
func exitCode(err error) int {
	if apperror.FaultKind(err) == apperror.FaultConfig {
		return 2
	}
	return 1
}

func run(ctx context.Context, configSource string, tuiMode bool) error {
	cfg, err := config.Load(configSource)
	if err != nil {
		return err
	}

	// Set TUI mode in config so modules know
	cfg.TUIMode = tuiMode

	logLevel := logger.ParseLevel(cfg.App.LogLevel)

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, apm.TraceIDFromContext)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, apm.TraceIDFromContext)
		log.Info(ctx, "starting bridge screener",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	stopTelemetry, err := startTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	healthServer := health.NewServer(cfg.Health.Port, version, log)
	healthServer.Start()
	log.Info(ctx, "health server started", "port", cfg.Health.Port)
	defer shutdown(healthServer.Stop)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log, healthServer, apm.TraceIDFromContext)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&bridge.Module{},    // Quoter
		&alerting.Module{},  // Notifier and router
		&screening.Module{}, // Jobs and loop; depends on both
	}

	registerErr := mono.RegisterModules(modules...)

	// Best effort, whatever ends the run once alerting is wired.
	if router, ok := di.LookupToken(mono.Services(), alertingDI.Router); ok {
		defer router.Stopped(ctx)
	}
	if registerErr != nil {
		return registerErr
	}

	stopReporter := func() {
		if err := screeningDI.GetReporter(mono.Services()).Stop(); err != nil {
			log.Error(ctx, "error stopping reporter", "error", err)
		}
	}

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func(ctx context.Context) error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			defer stopReporter()
			return ignoreCancel(screeningDI.GetLoop(mono.Services()).Run(ctx))
		}
		return runTUI(ctx, startFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	defer stopReporter()

	return runCLI(ctx, mono, log)
}

func runCLI(ctx context.Context, mono monolith.Monolith, log *logger.Logger) error {
	log.Info(ctx, "all modules started, beginning screening")

	err := ignoreCancel(screeningDI.GetLoop(mono.Services()).Run(ctx))

	log.Info(ctx, "shutting down")
	return err
}

func runTUI(ctx context.Context, startFunc func(context.Context) error) error {
	// Quitting the TUI ends the run just like a signal does.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	// Run the loop in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Runs until ctx is cancelled; progress reaches the TUI through the reporter
		if err := startFunc(ctx); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	cancel()

	// Wait for the loop to wind down so the stop notice goes out.
	select {
	case err := <-errCh:
		return err
	case <-time.After(stopGrace):
		return nil
	}
}

// startTelemetry installs the trace and metric providers when telemetry is
// enabled and returns the matching shutdown.
func startTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	provider := apm.Provider(cfg.Telemetry.Exporter)
	endpoint := cfg.Telemetry.OTLPEndpoint
	if provider == apm.ZipkinProvider {
		endpoint = cfg.Telemetry.ZipkinURL
	}

	traceProvider, err := apm.NewTraceProvider(
		apm.WithServiceName(cfg.Telemetry.ServiceName),
		apm.WithProvider(provider, endpoint, log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", provider, "endpoint", endpoint)

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
	}
	if provider != apm.ZipkinProvider && cfg.Telemetry.OTLPEndpoint != "" {
		metricOpts = append(metricOpts, metrics.WithProviderConfig(metrics.NewCollectorConfig(cfg.Telemetry.OTLPEndpoint)))
	}

	meterProvider, err := metrics.NewMetricProvider(metricOpts...)
	if err != nil {
		traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	promServer := metrics.NewPrometheusServer(log, metrics.WithPort(cfg.Telemetry.PrometheusPort))
	promServer.Start()

	return func() {
		shutdown(promServer.Stop)
		shutdown(meterProvider.Shutdown)
		if err := traceProvider.Stop(); err != nil {
			log.Warn(context.Background(), "trace provider stop", "error", err)
		}
	}, nil
}

func shutdown(stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = stop(ctx)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
