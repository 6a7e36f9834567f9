package monolith

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/logger"
)

type recordingModule struct {
	calls *[]string
	name  string
}

func (m recordingModule) RegisterServices(c di.Container) error {
	*m.calls = append(*m.calls, "register "+m.name)
	return nil
}

func (m recordingModule) Startup(ctx context.Context, mono Monolith) error {
	*m.calls = append(*m.calls, "start "+m.name)
	return nil
}

func TestNew_OpensLogFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := &config.Config{App: config.AppConfig{Name: "screener", LogDir: dir}}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	a, err := New(cfg, log, health.NewServer(0, "test", log), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a.Services().Get("alertLog").(logger.LoggerInterface).Info(context.Background(), "Loop executed in 1.00 seconds")
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{AlertLogFile, ErrorLogFile, TelegramLogFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, AlertLogFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Loop executed in 1.00 seconds") {
		t.Errorf("alert log missing entry: %q", raw)
	}

	if a.Chains().Name(10) != "Optimism" {
		t.Errorf("chains not registered: %q", a.Chains().Name(10))
	}
}

func TestModulesRegisterBeforeStartup(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "screener", LogDir: t.TempDir()}}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	a, err := New(cfg, log, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	var calls []string
	mods := []Module{recordingModule{&calls, "a"}, recordingModule{&calls, "b"}}

	if err := a.RegisterModules(mods...); err != nil {
		t.Fatal(err)
	}
	if err := a.StartModules(context.Background(), mods...); err != nil {
		t.Fatal(err)
	}

	want := "register a,register b,start a,start b"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}
