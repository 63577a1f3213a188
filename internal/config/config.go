// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Name        string `mapstructure:"name"`
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	WSSEndpoint string `mapstructure:"wss_endpoint"`
	PrivateKey  string `mapstructure:"private_key"`

	Trade        TradeConfig   `mapstructure:"trade"`
	Filters      FilterConfig  `mapstructure:"filters"`
	PriorityFees FeeConfig     `mapstructure:"priority_fees"`
	Retries      RetryConfig   `mapstructure:"retries"`
	Timing       TimingConfig  `mapstructure:"timing"`
	Cleanup      CleanupConfig `mapstructure:"cleanup"`
	Logging      LogConfig     `mapstructure:"logging"`
}

type TradeConfig struct {
	BuyAmountSOL           float64 `mapstructure:"buy_amount"`
	BuySlippageBps         uint64  `mapstructure:"buy_slippage_bps"`
	SellSlippageBps        uint64  `mapstructure:"sell_slippage_bps"`
	ExtremeFastMode        bool    `mapstructure:"extreme_fast_mode"`
	ExtremeFastTokenAmount uint64  `mapstructure:"extreme_fast_token_amount"`
	ComputeUnitLimit       uint32  `mapstructure:"compute_unit_limit"`
}

type FilterConfig struct {
	ListenerType   string        `mapstructure:"listener_type"`
	MatchString    string        `mapstructure:"match_string"`
	CreatorAddress string        `mapstructure:"bro_address"`
	MarryMode      bool          `mapstructure:"marry_mode"`
	YoloMode       bool          `mapstructure:"yolo_mode"`
	MaxTokenAge    time.Duration `mapstructure:"max_token_age"`
}

type FeeConfig struct {
	EnableDynamic   bool    `mapstructure:"enable_dynamic"`
	EnableFixed     bool    `mapstructure:"enable_fixed"`
	FixedAmount     uint64  `mapstructure:"fixed_amount"`
	ExtraPercentage float64 `mapstructure:"extra_percentage"`
	HardCap         uint64  `mapstructure:"hard_cap"`
}

type RetryConfig struct {
	MaxElapsed     time.Duration `mapstructure:"max_elapsed"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
}

type TimingConfig struct {
	WaitAfterCreation time.Duration `mapstructure:"wait_after_creation"`
	WaitAfterBuy      time.Duration `mapstructure:"wait_after_buy"`
	Cooldown          time.Duration `mapstructure:"cooldown"`
	ListenTimeout     time.Duration `mapstructure:"listen_timeout"`
}

type CleanupConfig struct {
	Mode               string `mapstructure:"mode"`
	ForceCloseWithBurn bool   `mapstructure:"force_close_with_burn"`
	WithPriorityFee    bool   `mapstructure:"with_priority_fee"`
}

type LogConfig struct {
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	MaxBackups  int    `mapstructure:"max_backups"`
	Compress    bool   `mapstructure:"compress"`
	Development bool   `mapstructure:"development"`
}

const (
	DefaultBuySlippageBps  = 2500
	DefaultSellSlippageBps = 2500
	DefaultMaxTokenAge     = 15 * time.Second
	DefaultMaxElapsed      = 15 * time.Second
	DefaultConfirmTimeout  = 60 * time.Second
	DefaultCooldown        = 15 * time.Second
	DefaultLogFile         = "bot.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"name":                       "sniper",
		"trade.buy_slippage_bps":     DefaultBuySlippageBps,
		"trade.sell_slippage_bps":    DefaultSellSlippageBps,
		"filters.listener_type":      "logs",
		"filters.max_token_age":      DefaultMaxTokenAge,
		"priority_fees.enable_fixed": true,
		"retries.max_elapsed":        DefaultMaxElapsed,
		"retries.confirm_timeout":    DefaultConfirmTimeout,
		"timing.cooldown":            DefaultCooldown,
		"cleanup.mode":               "disabled",
		"logging.file":               DefaultLogFile,
		"logging.max_size_mb":        100,
		"logging.max_age_days":       7,
		"logging.max_backups":        3,
		"logging.compress":           true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := resolveSecrets(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// resolveSecrets substitutes ${ENV_VAR} placeholders so endpoints and keys
// never have to live in the YAML file itself.
func resolveSecrets(cfg *Config) error {
	fields := []*string{&cfg.RPCEndpoint, &cfg.WSSEndpoint, &cfg.PrivateKey}
	for _, field := range fields {
		resolved, err := resolvePlaceholder(*field)
		if err != nil {
			return err
		}
		*field = resolved
	}
	return nil
}

func resolvePlaceholder(value string) (string, error) {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value, nil
	}
	name := value[2 : len(value)-1]
	resolved := os.Getenv(name)
	if resolved == "" {
		return "", fmt.Errorf("environment variable %q not set", name)
	}
	return resolved, nil
}

func validateConfig(cfg *Config) error {
	if cfg.RPCEndpoint == "" {
		return errors.New("missing rpc_endpoint in configuration")
	}
	if err := validateURL(cfg.RPCEndpoint, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if cfg.WSSEndpoint == "" {
		return errors.New("missing wss_endpoint in configuration")
	}
	if err := validateURL(cfg.WSSEndpoint, "ws"); err != nil {
		return errors.New("invalid WebSocket URL protocol")
	}
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	if err := validateTradeParams(cfg); err != nil {
		return err
	}
	switch cfg.Filters.ListenerType {
	case "logs", "blocks":
	default:
		return fmt.Errorf("filters.listener_type must be 'logs' or 'blocks', got %q", cfg.Filters.ListenerType)
	}
	switch cfg.Cleanup.Mode {
	case "disabled", "on_fail", "after_sell", "post_session":
	default:
		return fmt.Errorf("cleanup.mode must be one of disabled, on_fail, after_sell, post_session, got %q", cfg.Cleanup.Mode)
	}
	return nil
}

func validateTradeParams(cfg *Config) error {
	if cfg.Trade.BuyAmountSOL <= 0 {
		return errors.New("trade.buy_amount must be a positive number")
	}
	if cfg.Trade.BuySlippageBps > 10000 {
		return errors.New("trade.buy_slippage_bps must be between 0 and 10000")
	}
	if cfg.Trade.SellSlippageBps > 10000 {
		return errors.New("trade.sell_slippage_bps must be between 0 and 10000")
	}
	if cfg.Trade.ExtremeFastMode && cfg.Trade.ExtremeFastTokenAmount == 0 {
		return errors.New("trade.extreme_fast_token_amount must be positive when extreme_fast_mode is enabled")
	}
	if cfg.PriorityFees.ExtraPercentage < 0 || cfg.PriorityFees.ExtraPercentage > 1 {
		return errors.New("priority_fees.extra_percentage must be between 0 and 1")
	}
	if cfg.Filters.MaxTokenAge < 0 {
		return errors.New("filters.max_token_age must be non-negative")
	}
	if cfg.Retries.MaxElapsed <= 0 {
		return errors.New("retries.max_elapsed must be positive")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}
