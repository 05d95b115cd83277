package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"rtcdiag/internal/core/domain"
	"rtcdiag/pkg/tracing"
)

type RangeConfig struct {
	Good float64 `yaml:"good"`
	Bad  float64 `yaml:"bad"`
}

type BitrateTierConfig struct {
	MinWidth   float64 `yaml:"min_width"`
	MinHeight  float64 `yaml:"min_height"`
	TargetKbps float64 `yaml:"target_kbps"`
}

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Analysis struct {
		MaxDumpBytes int `yaml:"max_dump_bytes"`
	} `yaml:"analysis"`

	Thresholds struct {
		JitterMs        RangeConfig         `yaml:"jitter_ms"`
		RoundTripMs     RangeConfig         `yaml:"round_trip_time_ms"`
		PacketLossPct   RangeConfig         `yaml:"packet_loss_pct"`
		FPS             RangeConfig         `yaml:"frames_per_second"`
		FreezeCount     RangeConfig         `yaml:"freeze_count"`
		BitrateTiers    []BitrateTierConfig `yaml:"bitrate_tiers"`
		FallbackKbps    float64             `yaml:"fallback_kbps"`
		BitrateBadRatio float64             `yaml:"bitrate_bad_ratio"`
	} `yaml:"thresholds"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing tracing.Config `yaml:"tracing"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Analysis
	if c.Analysis.MaxDumpBytes <= 0 {
		return fmt.Errorf("analysis.max_dump_bytes must be > 0")
	}

	// Thresholds
	lowerIsBetter := map[string]RangeConfig{
		"jitter_ms":          c.Thresholds.JitterMs,
		"round_trip_time_ms": c.Thresholds.RoundTripMs,
		"packet_loss_pct":    c.Thresholds.PacketLossPct,
		"freeze_count":       c.Thresholds.FreezeCount,
	}
	for name, r := range lowerIsBetter {
		if r.Good < 0 || r.Bad <= r.Good {
			return fmt.Errorf("thresholds.%s: bad must be > good >= 0", name)
		}
	}
	if c.Thresholds.FPS.Bad < 0 || c.Thresholds.FPS.Good <= c.Thresholds.FPS.Bad {
		return fmt.Errorf("thresholds.frames_per_second: good must be > bad >= 0")
	}
	for i, tier := range c.Thresholds.BitrateTiers {
		if tier.TargetKbps <= 0 {
			return fmt.Errorf("thresholds.bitrate_tiers[%d].target_kbps must be > 0", i)
		}
	}
	if c.Thresholds.FallbackKbps <= 0 {
		return fmt.Errorf("thresholds.fallback_kbps must be > 0")
	}
	if c.Thresholds.BitrateBadRatio <= 0 || c.Thresholds.BitrateBadRatio >= 1 {
		return fmt.Errorf("thresholds.bitrate_bad_ratio must be in (0, 1)")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in [0, 1]")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// ScoringThresholds converts the thresholds section into scoring thresholds.
func (c *Config) ScoringThresholds() domain.Thresholds {
	t := domain.Thresholds{
		JitterMs:        domain.Range(c.Thresholds.JitterMs),
		RoundTripMs:     domain.Range(c.Thresholds.RoundTripMs),
		PacketLossPct:   domain.Range(c.Thresholds.PacketLossPct),
		FPS:             domain.Range(c.Thresholds.FPS),
		FreezeCount:     domain.Range(c.Thresholds.FreezeCount),
		FallbackKbps:    c.Thresholds.FallbackKbps,
		BitrateBadRatio: c.Thresholds.BitrateBadRatio,
	}
	for _, tier := range c.Thresholds.BitrateTiers {
		t.BitrateTiers = append(t.BitrateTiers, domain.BitrateTier(tier))
	}
	return t
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Analysis.MaxDumpBytes = 64 << 20

	defaults := domain.DefaultThresholds()
	cfg.Thresholds.JitterMs = RangeConfig(defaults.JitterMs)
	cfg.Thresholds.RoundTripMs = RangeConfig(defaults.RoundTripMs)
	cfg.Thresholds.PacketLossPct = RangeConfig(defaults.PacketLossPct)
	cfg.Thresholds.FPS = RangeConfig(defaults.FPS)
	cfg.Thresholds.FreezeCount = RangeConfig(defaults.FreezeCount)
	for _, tier := range defaults.BitrateTiers {
		cfg.Thresholds.BitrateTiers = append(cfg.Thresholds.BitrateTiers, BitrateTierConfig(tier))
	}
	cfg.Thresholds.FallbackKbps = defaults.FallbackKbps
	cfg.Thresholds.BitrateBadRatio = defaults.BitrateBadRatio

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing = tracing.DefaultConfig()

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 5
	cfg.RateLimiting.HTTP.Burst = 10
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("RTCDIAG_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("RTCDIAG_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if raw := os.Getenv("RTCDIAG_MAX_DUMP_BYTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			c.Analysis.MaxDumpBytes = n
		}
	}
}
