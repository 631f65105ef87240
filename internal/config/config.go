package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports an out-of-range or inconsistent setting.
// Raised at setup, before any symbol is evaluated.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Field + ": " + e.Reason
}

// Weights are the per-check confidence increments. Multi-timeframe
// confirmation and POC proximity weigh more than a raw volume spike.
type Weights struct {
	MTFAlignment  float64 `yaml:"mtf_alignment"`
	POCProximity  float64 `yaml:"poc_proximity"`
	LowVolumeNode float64 `yaml:"low_volume_node"`
	VolumeSpike   float64 `yaml:"volume_spike"`
	MACD          float64 `yaml:"macd"`
	FreshLevel    float64 `yaml:"fresh_level"`
}

// Config is the explicit configuration for one engine instance. There is no
// module-level state: every evaluator receives this struct.
type Config struct {
	Symbols       []string `yaml:"symbols"`
	Timeframes    []string `yaml:"timeframes"` // evaluated low to high, first is primary
	SwingLookback int      `yaml:"swing_lookback"`

	// Swing level detection
	SwingWindow         int     `yaml:"swing_window"`          // bars on each side of a local extremum
	ClusterTolerance    float64 `yaml:"cluster_tolerance"`     // absolute price tolerance, 0 = ATR-relative only
	ClusterToleranceATR float64 `yaml:"cluster_tolerance_atr"` // tolerance as ATR multiple

	// Trendline fitting
	TrendlineLookback  int     `yaml:"trendline_lookback"`
	TrendlineTolerance float64 `yaml:"trendline_tolerance"` // relative boundary tolerance
	TrendlineMinSlope  float64 `yaml:"trendline_min_slope"`
	TrendlineTouches   int     `yaml:"trendline_touches"`

	// Indicator periods
	ATRPeriod     int `yaml:"atr_period"`
	ATRFastPeriod int `yaml:"atr_fast_period"`
	EMAPeriod     int `yaml:"ema_period"`
	MACDFast      int `yaml:"macd_fast"`
	MACDSlow      int `yaml:"macd_slow"`
	MACDSignal    int `yaml:"macd_signal"`
	ProfileBins   int `yaml:"profile_bins"` // 0 = adaptive bin size

	// Context thresholds
	VolumeSpikeMultiplier float64 `yaml:"volume_spike_multiplier"`
	OverextensionATR      float64 `yaml:"overextension_atr"`
	POCProximityATR       float64 `yaml:"poc_proximity_atr"`
	FreshLevelAge         int     `yaml:"fresh_level_age"`
	StaleLevelAge         int     `yaml:"stale_level_age"`

	// Scoring
	Weights         Weights `yaml:"weights"`
	StrongThreshold float64 `yaml:"strong_threshold"`
	WeakThreshold   float64 `yaml:"weak_threshold"`
	TargetRatio     float64 `yaml:"target_ratio"` // fallback structural target as stop-distance multiple

	// Analysis hygiene
	DailyRejectionLimit      int `yaml:"daily_rejection_limit"`
	MaxConsecutiveRejections int `yaml:"max_consecutive_rejections"`

	// Runtime
	Workers        int    `yaml:"workers"`
	CycleSeconds   int    `yaml:"cycle_seconds"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds
	LogLevel       string `yaml:"log_level"`

	// Collaborators
	ExchangeBaseURL  string `yaml:"exchange_base_url"`
	DatabaseURL      string `yaml:"database_url"`
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`
}

// Default returns the engine defaults, mirroring the documented reference
// parameters.
func Default() Config {
	return Config{
		Symbols:       []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "DOGEUSDT", "XRPUSDT"},
		Timeframes:    []string{"15m", "1h", "4h"},
		SwingLookback: 100,

		SwingWindow:         2,
		ClusterTolerance:    0,
		ClusterToleranceATR: 0.5,

		TrendlineLookback:  50,
		TrendlineTolerance: 0.01,
		TrendlineMinSlope:  0.0002,
		TrendlineTouches:   2,

		ATRPeriod:     14,
		ATRFastPeriod: 5,
		EMAPeriod:     50,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,

		VolumeSpikeMultiplier: 1.2,
		OverextensionATR:      2.0,
		POCProximityATR:       0.3,
		FreshLevelAge:         10,
		StaleLevelAge:         50,

		Weights: Weights{
			MTFAlignment:  1.5,
			POCProximity:  1.5,
			LowVolumeNode: 1.0,
			VolumeSpike:   1.0,
			MACD:          1.0,
			FreshLevel:    0.5,
		},
		StrongThreshold: 4.0,
		WeakThreshold:   2.0,
		TargetRatio:     3.0,

		DailyRejectionLimit:      10,
		MaxConsecutiveRejections: 3,

		Workers:        4,
		CycleSeconds:   60,
		RequestTimeout: 30,
		LogLevel:       "info",

		ExchangeBaseURL: "https://api.binance.com",
	}
}

// Load builds a Config from defaults, an optional YAML file, and environment
// overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		cfg.ExchangeBaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}

// Validate fails fast on out-of-range tolerances, periods and weights.
func (c Config) Validate() error {
	if len(c.Timeframes) == 0 {
		return &ConfigurationError{Field: "timeframes", Reason: "at least one timeframe required"}
	}
	if c.SwingWindow < 1 {
		return &ConfigurationError{Field: "swing_window", Reason: "must be >= 1"}
	}
	if c.SwingLookback < 2*c.SwingWindow {
		return &ConfigurationError{Field: "swing_lookback", Reason: "must cover at least twice the swing window"}
	}
	if c.ClusterTolerance < 0 || c.ClusterToleranceATR < 0 {
		return &ConfigurationError{Field: "cluster_tolerance", Reason: "must not be negative"}
	}
	if c.ClusterTolerance == 0 && c.ClusterToleranceATR == 0 {
		return &ConfigurationError{Field: "cluster_tolerance", Reason: "absolute or ATR-relative tolerance required"}
	}
	if c.TrendlineTolerance <= 0 {
		return &ConfigurationError{Field: "trendline_tolerance", Reason: "must be > 0"}
	}
	if c.TrendlineTouches < 2 {
		return &ConfigurationError{Field: "trendline_touches", Reason: "a line needs at least two points"}
	}
	for field, period := range map[string]int{
		"atr_period":      c.ATRPeriod,
		"atr_fast_period": c.ATRFastPeriod,
		"ema_period":      c.EMAPeriod,
		"macd_fast":       c.MACDFast,
		"macd_slow":       c.MACDSlow,
		"macd_signal":     c.MACDSignal,
	} {
		if period < 1 {
			return &ConfigurationError{Field: field, Reason: "must be >= 1"}
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return &ConfigurationError{Field: "macd_fast", Reason: "fast period must be below slow period"}
	}
	if c.VolumeSpikeMultiplier <= 0 {
		return &ConfigurationError{Field: "volume_spike_multiplier", Reason: "must be > 0"}
	}
	if c.OverextensionATR <= 0 {
		return &ConfigurationError{Field: "overextension_atr", Reason: "must be > 0"}
	}
	if c.POCProximityATR <= 0 {
		return &ConfigurationError{Field: "poc_proximity_atr", Reason: "must be > 0"}
	}
	for field, w := range map[string]float64{
		"weights.mtf_alignment":   c.Weights.MTFAlignment,
		"weights.poc_proximity":   c.Weights.POCProximity,
		"weights.low_volume_node": c.Weights.LowVolumeNode,
		"weights.volume_spike":    c.Weights.VolumeSpike,
		"weights.macd":            c.Weights.MACD,
		"weights.fresh_level":     c.Weights.FreshLevel,
	} {
		if w < 0 {
			return &ConfigurationError{Field: field, Reason: "must not be negative"}
		}
	}
	if c.WeakThreshold <= 0 {
		return &ConfigurationError{Field: "weak_threshold", Reason: "must be > 0"}
	}
	if c.StrongThreshold <= c.WeakThreshold {
		return &ConfigurationError{Field: "strong_threshold", Reason: "must be above weak threshold"}
	}
	if c.TargetRatio <= 0 {
		return &ConfigurationError{Field: "target_ratio", Reason: "must be > 0"}
	}
	if c.Workers < 1 {
		return &ConfigurationError{Field: "workers", Reason: "must be >= 1"}
	}
	return nil
}

// Primary returns the lowest (entry) timeframe.
func (c Config) Primary() string {
	return c.Timeframes[0]
}
