// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fd1az/bridge-screener/internal/chain"
	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/logger"
)

// Log file names inside the configured log directory.
const (
	AlertLogFile    = "arbitrage.log"
	ErrorLogFile    = "error.log"
	TelegramLogFile = "telegram.log"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Chains() *chain.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	chains    *chain.Registry
	container di.Container
	files     []*os.File
}

// New creates a new Monolith instance. It opens the alert, error and
// telegram log files under cfg.App.LogDir and registers them with the
// shared services.
func New(cfg *config.Config, log logger.LoggerInterface, hs *health.Server, traceIDFn logger.TraceIDFn) (*app, error) {
	a := &app{
		config:    cfg,
		logger:    log,
		chains:    chain.DefaultRegistry(),
		container: di.NewContainer(),
	}

	// The file logs record alerts and faults, so they never filter below info.
	logs := map[string]string{
		"alertLog":    AlertLogFile,
		"errorLog":    ErrorLogFile,
		"telegramLog": TelegramLogFile,
	}
	for name, file := range logs {
		l, f, err := logger.OpenFile(filepath.Join(cfg.App.LogDir, file), logger.LevelInfo, cfg.App.Name, traceIDFn)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.files = append(a.files, f)
		a.container.Register(name, l)
	}

	// Register global services
	a.container.Register("config", cfg)
	a.container.Register("logger", log)
	a.container.Register("chains", a.chains)
	a.container.Register("health", hs)

	return a, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Chains() *chain.Registry {
	return a.chains
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the log files.
func (a *app) Close() error {
	var errs []error
	for _, f := range a.files {
		errs = append(errs, f.Close())
	}
	a.files = nil
	return errors.Join(errs...)
}
