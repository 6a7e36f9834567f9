package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fd1az/bridge-screener/business/alerting"
	alertingDI "github.com/fd1az/bridge-screener/business/alerting/di"
	"github.com/fd1az/bridge-screener/business/bridge"
	"github.com/fd1az/bridge-screener/business/screening"
	screeningApp "github.com/fd1az/bridge-screener/business/screening/app"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/chain"
	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/logger"
	"github.com/fd1az/bridge-screener/internal/monolith"
)

func TestExitCode(t *testing.T) {
	_, tooFine := screeningApp.Expand(map[string]config.Coin{
		"USDC": {
			SwapAmount: []float64{0.0000001},
			Arbitrage:  5,
			Networks: map[string]config.Network{
				"a": {Decimals: 6, ChainID: 1, Token: "USDC"},
				"b": {Decimals: 6, ChainID: 10, Token: "USDC"},
			},
		},
	}, nil, chain.DefaultRegistry())
	if tooFine == nil {
		t.Fatal("Expand accepted a swap amount finer than the network decimals")
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing setting", apperror.Config("missing settings.sleepTime"), 2},
		{"amount finer than decimals", tooFine, 2},
		{"wrapped schema fault", fmt.Errorf("register: %w", tooFine), 2},
		{"bridge fault", apperror.New(apperror.CodeBridgeConnectionFailed), 1},
		{"plain error", errors.New("listen tcp: address in use"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRegisterFailure_StopNoticeStillReachable(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "screener", LogDir: dir},
		Telegram: config.TelegramConfig{ChatDebug: "42"},
	}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	mono, err := monolith.New(cfg, log, health.NewServer(0, "test", log), nil)
	if err != nil {
		t.Fatalf("monolith.New: %v", err)
	}

	err = mono.RegisterModules(&bridge.Module{}, &alerting.Module{}, &screening.Module{})
	if err == nil {
		t.Fatal("expected a schema fault with no coins")
	}
	if got := exitCode(err); got != 2 {
		t.Fatalf("exitCode = %d, want 2", got)
	}

	router, ok := di.LookupToken(mono.Services(), alertingDI.Router)
	if !ok {
		t.Fatal("router not registered after alerting module")
	}
	router.Stopped(context.Background())

	if err := mono.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, monolith.TelegramLogFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "stopped") {
		t.Fatalf("stop notice not delivered: %q", raw)
	}
}
