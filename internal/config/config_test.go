package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fd1az/bridge-screener/internal/apperror"
)

const sampleJSON = `{
  "settings": {
    "sleepTime": 30,
    "specialRouting": {"maxSwapAmount": 5000, "coins": ["usdc"]}
  },
  "coins": {
    "USDC": {
      "swapAmount": [100, 1000],
      "arbitrage": 5,
      "networks": {
        "ethereum": {"decimals": 6, "chainId": 1, "token": "USDC"},
        "optimism": {"decimals": 6, "chainId": 10, "token": "USDC"}
      }
    },
    "USDC.e": {
      "swapAmount": [0.5],
      "arbitrage": 1,
      "networks": {
        "avalanche": {"decimals": 6, "chainId": 43114, "token": "USDC.e"}
      }
    }
  }
}`

func TestLoad_InlineJSON(t *testing.T) {
	cfg, err := Load(sampleJSON)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Settings.SleepDuration() != 30*time.Second {
		t.Errorf("SleepDuration = %v", cfg.Settings.SleepDuration())
	}
	if cfg.Settings.MaxWait() != 90*time.Second {
		t.Errorf("MaxWait default = %v", cfg.Settings.MaxWait())
	}
	if cfg.Settings.MinDiff != 5 {
		t.Errorf("MinDiff default = %v", cfg.Settings.MinDiff)
	}
	if cfg.Settings.BridgeAPI != "https://syn-api-dev.herokuapp.com" {
		t.Errorf("BridgeAPI = %q", cfg.Settings.BridgeAPI)
	}

	usdc, ok := cfg.Coins["USDC"]
	if !ok {
		t.Fatalf("coins = %v, want upper-case USDC", cfg.Coins)
	}
	if got := usdc.NetworkKeys(); strings.Join(got, ",") != "ethereum,optimism" {
		t.Errorf("NetworkKeys = %v", got)
	}
	if n := usdc.Networks["optimism"]; n.ChainID != 10 || n.Decimals != 6 || n.Token != "USDC" {
		t.Errorf("optimism = %+v", n)
	}
	if got := usdc.SwapAmountsDecimal(); len(got) != 2 || got[1].String() != "1000" {
		t.Errorf("SwapAmountsDecimal = %v", got)
	}

	if _, ok := cfg.Coins["USDC.E"]; !ok {
		t.Errorf("dotted symbol lost: %v", cfg.Coins)
	}

	sr := cfg.Settings.SpecialRouting
	if sr == nil || sr.Coins[0] != "USDC" || sr.MaxSwapAmount != 5000 {
		t.Errorf("SpecialRouting = %+v", sr)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Coins) != 2 {
		t.Fatalf("coins = %d", len(cfg.Coins))
	}
}

func TestLoad_SecretsFromEnv(t *testing.T) {
	t.Setenv("TOKEN", "bot-token")
	t.Setenv("CHAT_ID_ALERTS", "-100")
	t.Setenv("CHAT_ID_DEBUG", "-300")

	cfg, err := Load(sampleJSON)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Telegram.Enabled() || cfg.Telegram.Token != "bot-token" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.ChatAlerts != "-100" || cfg.Telegram.ChatDebug != "-300" || cfg.Telegram.ChatSpecial != "" {
		t.Errorf("chats = %+v", cfg.Telegram)
	}
}

func TestLoad_ConfigFaults(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", "no configuration"},
		{"missing file", "/nonexistent/config.json", "nonexistent"},
		{"bad json", `{"settings": `, "inline json"},
		{"no sleepTime", `{"settings": {}, "coins": {"A": {}}}`, "sleepTime"},
		{"no coins", `{"settings": {"sleepTime": 1}}`, "coins"},
		{"coin missing arbitrage", `{"settings": {"sleepTime": 1}, "coins": {"usdc": {"swapAmount": [1], "networks": {}}}}`, "USDC.arbitrage"},
		{"network missing chainId", `{"settings": {"sleepTime": 1}, "coins": {"USDC": {"swapAmount": [1], "arbitrage": 1, "networks": {"eth": {"decimals": 6, "token": "USDC"}}}}}`, "chainId"},
		{"empty swap amounts", `{"settings": {"sleepTime": 1}, "coins": {"USDC": {"swapAmount": [], "arbitrage": 1, "networks": {"eth": {"decimals": 6, "chainId": 1, "token": "USDC"}}}}}`, "swapAmount"},
		{"bad maxWaitTime", `{"settings": {"sleepTime": 1, "maxWaitTime": 0}, "coins": {"USDC": {"swapAmount": [1], "arbitrage": 1, "networks": {"eth": {"decimals": 6, "chainId": 1, "token": "USDC"}}}}}`, "maxWaitTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if apperror.FaultKind(err) != apperror.FaultConfig {
				t.Errorf("fault = %q, want config", apperror.FaultKind(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
