// Package telegram sends alert messages through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"

	"github.com/fd1az/bridge-screener/business/alerting/app"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/httpclient"
	"github.com/fd1az/bridge-screener/internal/logger"
	"github.com/fd1az/bridge-screener/internal/ratelimit"
)

const (
	tracerName = "alerting.telegram"

	// DefaultAPIURL is the public Bot API.
	DefaultAPIURL = "https://api.telegram.org"
)

var _ app.Notifier = (*Sender)(nil)

// Config holds the sender settings.
type Config struct {
	APIURL string
	Token  string
	// RatePerMinute paces outgoing messages per chat. Zero disables pacing.
	RatePerMinute int
	// MaxRetryTime bounds the retry loop of one message.
	MaxRetryTime time.Duration
	// InitialInterval is the first backoff wait.
	InitialInterval time.Duration
	RequestTimeout  time.Duration
	RoundTripper    http.RoundTripper
}

// Sender implements app.Notifier.
type Sender struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	cfg     Config
	logger  logger.LoggerInterface
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// NewSender builds a sender. The token is part of the base URL, as the Bot
// API requires.
func NewSender(cfg Config, log logger.LoggerInterface) (*Sender, error) {
	if cfg.Token == "" {
		return nil, apperror.New(apperror.CodeNotifierNotConfigured,
			apperror.WithContext("telegram token is empty"))
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.MaxRetryTime <= 0 {
		cfg.MaxRetryTime = time.Minute
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("telegram"),
		httpclient.WithBaseURL(cfg.APIURL + "/bot" + cfg.Token),
		httpclient.WithSecretURL(),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithTraceOptions(otel.Tracer(tracerName)),
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

	return &Sender{
		http:    hc,
		limiter: ratelimit.New(cfg.RatePerMinute),
		cfg:     cfg,
		logger:  log,
	}, nil
}

// Send posts text to chatID, retrying on rate limiting and server errors
// until Telegram acknowledges it or MaxRetryTime runs out.
func (s *Sender) Send(ctx context.Context, chatID, text string) error {
	if err := s.limiter.Wait(ctx, chatID); err != nil {
		return apperror.External(apperror.CodeNotificationFailed, "rate limiter", err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.InitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.post(ctx, chatID, text)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxElapsedTime(s.cfg.MaxRetryTime),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.logger.Warn(ctx, "telegram send will be retried", "chat_id", chatID, "error", err, "wait", wait)
		}),
	)
	if err == nil {
		return nil
	}

	var retryAfter *backoff.RetryAfterError
	if errors.As(err, &retryAfter) {
		return apperror.New(apperror.CodeTelegramRateLimited,
			apperror.WithContext(fmt.Sprintf("chat %s: still limited after %s", chatID, s.cfg.MaxRetryTime)))
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.External(apperror.CodeNotificationFailed, "chat "+chatID, err)
}

// post makes one attempt. Returned errors are retried unless wrapped as
// permanent.
func (s *Sender) post(ctx context.Context, chatID, text string) error {
	var result apiResponse
	resp, err := s.http.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("method", "sendMessage")),
	).
		SetBody(sendMessageRequest{
			ChatID:                chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		}).
		SetResult(&result).
		Post(ctx, "/sendMessage")
	if err != nil {
		return backoff.Permanent(apperror.External(apperror.CodeNotificationFailed, "chat "+chatID, err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if result.Parameters.RetryAfter > 0 {
			return backoff.RetryAfter(result.Parameters.RetryAfter)
		}
		return apperror.New(apperror.CodeTelegramRateLimited, apperror.WithContext("chat "+chatID))
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext("chat "+chatID+": HTTP "+strconv.Itoa(resp.StatusCode)))
	case resp.DecodeError() != nil:
		return backoff.Permanent(apperror.New(apperror.CodeTelegramNotAccepted,
			apperror.WithCause(resp.DecodeError()), apperror.WithContext("chat "+chatID)))
	case !result.OK:
		return backoff.Permanent(apperror.New(apperror.CodeTelegramNotAccepted,
			apperror.WithContext(fmt.Sprintf("chat %s: %d %s", chatID, result.ErrorCode, result.Description))))
	}
	return nil
}
