// Package alerting implements the alerting bounded context: routing records
// and lifecycle notices to Telegram chats.
package alerting

import (
	"context"

	"github.com/fd1az/bridge-screener/business/alerting/app"
	alertingDI "github.com/fd1az/bridge-screener/business/alerting/di"
	"github.com/fd1az/bridge-screener/business/alerting/infra/telegram"
	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/logger"
	"github.com/fd1az/bridge-screener/internal/monolith"
	"github.com/fd1az/bridge-screener/pkg/ui"
)

// Module implements the alerting bounded context.
type Module struct{}

// RegisterServices registers the notifier and router with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, alertingDI.Notifier, func(sr di.ServiceRegistry) app.Notifier {
		cfg := sr.Get("config").(*config.Config)
		telegramLog := sr.Get("telegramLog").(logger.LoggerInterface)

		if !cfg.Telegram.Enabled() {
			return telegram.NewLogSender(telegramLog)
		}

		sender, err := telegram.NewSender(telegram.Config{
			APIURL:        cfg.Telegram.APIURL,
			Token:         cfg.Telegram.Token,
			RatePerMinute: cfg.Telegram.RatePerMinute,
			MaxRetryTime:  cfg.Telegram.MaxRetryDuration(),
		}, telegramLog)
		if err != nil {
			panic("failed to create telegram sender: " + err.Error())
		}
		return sender
	})

	di.RegisterToken(c, alertingDI.Router, func(sr di.ServiceRegistry) *app.Router {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		telegramLog := sr.Get("telegramLog").(logger.LoggerInterface)

		router, err := app.NewRouter(alertingDI.GetNotifier(sr), app.RouterConfig{
			AppName: cfg.App.Name,
			Chats: app.Chats{
				Alerts:  cfg.Telegram.ChatAlerts,
				Special: cfg.Telegram.ChatSpecial,
				Debug:   cfg.Telegram.ChatDebug,
			},
			// One message may wait out a rate limit for the whole retry window.
			SendTimeout: cfg.Telegram.MaxRetryDuration() + cfg.Settings.RequestTimeoutDuration(),
		}, log, telegramLog)
		if err != nil {
			panic("failed to create alert router: " + err.Error())
		}
		return router
	})

	return nil
}

// Startup resolves the router and reports whether Telegram delivery is on.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	alertingDI.GetRouter(mono.Services())

	cfg := mono.Config()
	status := "enabled"
	if !cfg.Telegram.Enabled() {
		status = "disabled (no token), logging only"
	}

	if cfg.TUIMode {
		ui.Send(ui.StartupMsg{Step: "telegram", Status: "done"})
	}
	mono.Logger().Info(ctx, "alerting module started", "telegram", status)
	return nil
}
