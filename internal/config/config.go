// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fd1az/bridge-screener/internal/apperror"
)

// keyDelimiter replaces viper's "." so token symbols like "USDC.e" survive
// as map keys.
const keyDelimiter = "::"

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Settings  Settings        `mapstructure:"settings"`
	Coins     map[string]Coin `mapstructure:"coins"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
	TUIMode   bool            `mapstructure:"-"` // Set at runtime, not from config
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	LogDir      string `mapstructure:"logDir"`
}

// Settings drives the polling loop.
type Settings struct {
	// SleepTime is the pause between iterations, in seconds.
	SleepTime float64 `mapstructure:"sleepTime"`
	// MaxWaitTime is the per-iteration batch deadline, in seconds.
	MaxWaitTime float64 `mapstructure:"maxWaitTime"`
	// MinDiff is the cluster gap used by the selector.
	MinDiff float64 `mapstructure:"minDiff"`
	// MaxWorkers caps the pool. Zero means one worker per job.
	MaxWorkers int `mapstructure:"maxWorkers"`
	// BridgeAPI is the base URL of the estimate API.
	BridgeAPI string `mapstructure:"bridgeApi"`
	// RequestTimeout bounds one bridge call, retries included, in seconds.
	RequestTimeout float64         `mapstructure:"requestTimeout"`
	SpecialRouting *SpecialRouting `mapstructure:"specialRouting"`
}

// SleepDuration returns SleepTime as a duration.
func (s Settings) SleepDuration() time.Duration {
	return seconds(s.SleepTime)
}

// MaxWait returns MaxWaitTime as a duration.
func (s Settings) MaxWait() time.Duration {
	return seconds(s.MaxWaitTime)
}

// RequestTimeoutDuration returns RequestTimeout as a duration.
func (s Settings) RequestTimeoutDuration() time.Duration {
	return seconds(s.RequestTimeout)
}

// MinDiffDecimal returns MinDiff as a decimal.
func (s Settings) MinDiffDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.MinDiff)
}

// SpecialRouting fans small swaps of selected coins out to a second chat.
type SpecialRouting struct {
	MaxSwapAmount float64  `mapstructure:"maxSwapAmount"`
	Coins         []string `mapstructure:"coins"`
}

// MaxSwapAmountDecimal returns MaxSwapAmount as a decimal.
func (s *SpecialRouting) MaxSwapAmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.MaxSwapAmount)
}

// Coin is one token to screen across its networks.
type Coin struct {
	SwapAmount []float64          `mapstructure:"swapAmount"`
	Arbitrage  float64            `mapstructure:"arbitrage"`
	Networks   map[string]Network `mapstructure:"networks"`
}

// SwapAmountsDecimal returns swap amounts as decimals, in config order.
func (c Coin) SwapAmountsDecimal() []decimal.Decimal {
	result := make([]decimal.Decimal, len(c.SwapAmount))
	for i, a := range c.SwapAmount {
		result[i] = decimal.NewFromFloat(a)
	}
	return result
}

// ArbitrageDecimal returns the threshold as a decimal.
func (c Coin) ArbitrageDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Arbitrage)
}

// NetworkKeys returns the network keys sorted.
func (c Coin) NetworkKeys() []string {
	keys := make([]string, 0, len(c.Networks))
	for k := range c.Networks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Network is one deployment of a coin.
type Network struct {
	Decimals int32  `mapstructure:"decimals"`
	ChainID  uint64 `mapstructure:"chainId"`
	Token    string `mapstructure:"token"`
}

// TelegramConfig holds bot credentials. Chat IDs left empty disable that
// route.
type TelegramConfig struct {
	APIURL        string `mapstructure:"apiUrl"`
	Token         string `mapstructure:"token"`
	ChatAlerts    string `mapstructure:"chatAlerts"`
	ChatSpecial   string `mapstructure:"chatSpecial"`
	ChatDebug     string `mapstructure:"chatDebug"`
	RatePerMinute int    `mapstructure:"ratePerMinute"`
	// MaxRetryTime bounds the rate-limit retry loop, in seconds.
	MaxRetryTime float64 `mapstructure:"maxRetryTime"`
}

// Enabled reports whether a bot token is configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// MaxRetryDuration returns MaxRetryTime as a duration.
func (t TelegramConfig) MaxRetryDuration() time.Duration {
	return seconds(t.MaxRetryTime)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"serviceName"`
	Exporter       string `mapstructure:"exporter"`
	ZipkinURL      string `mapstructure:"zipkinUrl"`
	OTLPEndpoint   string `mapstructure:"otlpEndpoint"`
	PrometheusPort int    `mapstructure:"prometheusPort"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load reads the configuration from source, which is either a path to a
// JSON file or the JSON document itself. Every failure is a configuration
// error.
func Load(source string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigType("json")

	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := read(v, source); err != nil {
		return nil, err
	}

	if err := checkRequired(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("decode"), apperror.WithCause(err))
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func read(v *viper.Viper, source string) error {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return apperror.Config("no configuration given")
	}

	if strings.HasPrefix(trimmed, "{") {
		if err := v.ReadConfig(strings.NewReader(trimmed)); err != nil {
			return apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("inline json"), apperror.WithCause(err))
		}
		return nil
	}

	if _, err := os.Stat(source); err != nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(source), apperror.WithCause(err))
	}
	v.SetConfigFile(source)
	if err := v.ReadInConfig(); err != nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(source), apperror.WithCause(err))
	}
	return nil
}

func key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// checkRequired reports the first missing key. Unmarshal alone would
// silently zero them.
func checkRequired(v *viper.Viper) error {
	if !v.IsSet(key("settings", "sleepTime")) {
		return apperror.Config("settings.sleepTime is required")
	}

	coins := v.GetStringMap("coins")
	if len(coins) == 0 {
		return apperror.Config("coins must list at least one coin")
	}

	for _, coin := range sortedKeys(coins) {
		for _, field := range []string{"swapAmount", "arbitrage", "networks"} {
			if !v.IsSet(key("coins", coin, field)) {
				return apperror.Config(fmt.Sprintf("coins.%s.%s is required", strings.ToUpper(coin), field))
			}
		}

		networks := v.GetStringMap(key("coins", coin, "networks"))
		for _, nk := range sortedKeys(networks) {
			for _, field := range []string{"decimals", "chainId", "token"} {
				if !v.IsSet(key("coins", coin, "networks", nk, field)) {
					return apperror.Config(fmt.Sprintf("coins.%s.networks.%s.%s is required", strings.ToUpper(coin), nk, field))
				}
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize restores upper-case symbols, which viper lower-cases.
func (c *Config) normalize() {
	coins := make(map[string]Coin, len(c.Coins))
	for sym, coin := range c.Coins {
		coins[strings.ToUpper(sym)] = coin
	}
	c.Coins = coins

	if c.Settings.SpecialRouting != nil {
		for i, sym := range c.Settings.SpecialRouting.Coins {
			c.Settings.SpecialRouting.Coins[i] = strings.ToUpper(sym)
		}
	}
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv(key("app", "logLevel"), "SCREENER_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv(key("app", "logDir"), "SCREENER_LOG_DIR")
	v.BindEnv(key("app", "environment"), "SCREENER_ENVIRONMENT", "ENVIRONMENT")

	// Telegram secrets keep the names the bot has always used in .env.
	v.BindEnv(key("telegram", "token"), "SCREENER_TELEGRAM_TOKEN", "TOKEN")
	v.BindEnv(key("telegram", "chatAlerts"), "SCREENER_CHAT_ID_ALERTS", "CHAT_ID_ALERTS")
	v.BindEnv(key("telegram", "chatSpecial"), "SCREENER_CHAT_ID_SPECIAL", "CHAT_ID_SPECIAL")
	v.BindEnv(key("telegram", "chatDebug"), "SCREENER_CHAT_ID_DEBUG", "CHAT_ID_DEBUG")

	// Telemetry
	v.BindEnv(key("telemetry", "enabled"), "SCREENER_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv(key("telemetry", "serviceName"), "SCREENER_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv(key("telemetry", "otlpEndpoint"), "SCREENER_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv(key("telemetry", "zipkinUrl"), "SCREENER_ZIPKIN_URL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(key("app", "name"), "bridge-screener")
	v.SetDefault(key("app", "environment"), "development")
	v.SetDefault(key("app", "logLevel"), "info")
	v.SetDefault(key("app", "logDir"), "logs")

	v.SetDefault(key("settings", "maxWaitTime"), 90)
	v.SetDefault(key("settings", "minDiff"), 5)
	v.SetDefault(key("settings", "maxWorkers"), 0)
	v.SetDefault(key("settings", "bridgeApi"), "https://syn-api-dev.herokuapp.com")
	v.SetDefault(key("settings", "requestTimeout"), 20)

	v.SetDefault(key("telegram", "apiUrl"), "https://api.telegram.org")
	v.SetDefault(key("telegram", "ratePerMinute"), 20)
	v.SetDefault(key("telegram", "maxRetryTime"), 60)

	v.SetDefault(key("telemetry", "enabled"), false)
	v.SetDefault(key("telemetry", "serviceName"), "bridge-screener")
	v.SetDefault(key("telemetry", "exporter"), "zipkin")
	v.SetDefault(key("telemetry", "zipkinUrl"), "http://localhost:9411/api/v2/spans")
	v.SetDefault(key("telemetry", "prometheusPort"), 9090)

	v.SetDefault(key("health", "port"), 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	s := c.Settings
	if s.SleepTime < 0 {
		return apperror.Config("settings.sleepTime must not be negative")
	}
	if s.MaxWaitTime <= 0 {
		return apperror.Config("settings.maxWaitTime must be positive")
	}
	if s.MinDiff < 0 {
		return apperror.Config("settings.minDiff must not be negative")
	}
	if s.MaxWorkers < 0 {
		return apperror.Config("settings.maxWorkers must not be negative")
	}
	if s.BridgeAPI == "" {
		return apperror.Config("settings.bridgeApi is required")
	}
	if len(c.Coins) == 0 {
		return apperror.Config("coins must list at least one coin")
	}

	for sym, coin := range c.Coins {
		if len(coin.SwapAmount) == 0 {
			return apperror.Config(fmt.Sprintf("coins.%s.swapAmount must not be empty", sym))
		}
		for _, a := range coin.SwapAmount {
			if a <= 0 {
				return apperror.Config(fmt.Sprintf("coins.%s.swapAmount must be positive", sym))
			}
		}
		if len(coin.Networks) == 0 {
			return apperror.Config(fmt.Sprintf("coins.%s.networks must not be empty", sym))
		}
		for nk, n := range coin.Networks {
			if n.Decimals < 0 || n.Decimals > 36 {
				return apperror.Config(fmt.Sprintf("coins.%s.networks.%s.decimals out of range", sym, nk))
			}
			if n.ChainID == 0 {
				return apperror.Config(fmt.Sprintf("coins.%s.networks.%s.chainId must be set", sym, nk))
			}
			if n.Token == "" {
				return apperror.Config(fmt.Sprintf("coins.%s.networks.%s.token must be set", sym, nk))
			}
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
