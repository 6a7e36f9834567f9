package app

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	screeningApp "github.com/fd1az/bridge-screener/business/screening/app"
	screeningDomain "github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/logger"
)

var _ screeningApp.Alerter = (*Router)(nil)

// Chats holds the destination chat IDs. Empty IDs are skipped.
type Chats struct {
	Alerts  string
	Special string
	Debug   string
}

// RouterConfig holds the router settings.
type RouterConfig struct {
	AppName string
	Chats   Chats
	// SendTimeout bounds one delivery, notifier retries included.
	SendTimeout time.Duration
}

// Router fans records out to the alert chats and sends lifecycle notices to
// the debug chat. Delivery failures are logged to the telegram log and
// swallowed.
type Router struct {
	notifier    Notifier
	cfg         RouterConfig
	logger      logger.LoggerInterface
	telegramLog logger.LoggerInterface
	sent        metric.Int64Counter
	now         func() time.Time
}

// NewRouter creates a router.
func NewRouter(n Notifier, cfg RouterConfig, log, telegramLog logger.LoggerInterface) (*Router, error) {
	sent, err := otel.Meter("alerting").Int64Counter("alerting_messages_total",
		metric.WithDescription("Notifier deliveries by route and outcome"))
	if err != nil {
		return nil, err
	}

	return &Router{
		notifier:    n,
		cfg:         cfg,
		logger:      log,
		telegramLog: telegramLog,
		sent:        sent,
		now:         time.Now,
	}, nil
}

// Alert sends rec to the alerts chat, and to the special chat when the
// record's job routes there.
func (r *Router) Alert(ctx context.Context, rec screeningDomain.Record) {
	r.deliver(ctx, "alerts", r.cfg.Chats.Alerts, rec.Message)

	if rec.Job.Special.Matches(rec.Coin, rec.AmountIn) {
		r.deliver(ctx, "special", r.cfg.Chats.Special, rec.Message)
	}
}

// Started notifies the debug chat that the screener is running.
func (r *Router) Started(ctx context.Context) {
	r.deliver(ctx, "debug", r.cfg.Chats.Debug,
		fmt.Sprintf("✅ %s has started.", html.EscapeString(r.cfg.AppName)))
}

// Stopped notifies the debug chat that the screener stopped. It runs during
// shutdown, so it does not inherit cancellation from ctx.
func (r *Router) Stopped(ctx context.Context) {
	msg := fmt.Sprintf("⚠️WARNING - %s\n<b>%s</b> stopped. Please contact your administrator.",
		r.now().Format(screeningDomain.TimeFormat), html.EscapeString(r.cfg.AppName))
	r.deliver(context.WithoutCancel(ctx), "debug", r.cfg.Chats.Debug, msg)
}

func (r *Router) deliver(ctx context.Context, route, chatID, text string) {
	if chatID == "" {
		r.logger.Debug(ctx, "no chat configured, skipping message", "route", route)
		return
	}

	if r.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.SendTimeout)
		defer cancel()
	}

	outcome := "sent"
	if err := r.notifier.Send(ctx, chatID, text); err != nil {
		outcome = "failed"
		if !apperror.IsAppError(err) {
			err = apperror.External(apperror.CodeNotificationFailed, route, err)
		}
		r.telegramLog.Error(ctx, "message not delivered",
			append(apperror.LogArgs(err), "route", route, "chat_id", chatID)...)
	}

	r.sent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("outcome", outcome),
	))
}
