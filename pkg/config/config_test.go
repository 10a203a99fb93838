package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App: AppConfig{Name: "test-bench"},
		Log: LogConfig{Level: "info"},
		Bench: BenchConfig{
			Mode:              ModeBenchmark,
			Code:              CodePlanar,
			D:                 5,
			NoisyMeasurements: 0,
			P:                 0.01,
			MaxHalfWeight:     500,
			Rounds:            100,
			Workers:           1,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"missing app name", func(c *Config) { c.App.Name = "" }, "app.name"},
		{"empty log level defaults", func(c *Config) { c.Log.Level = "" }, ""},
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "log.level"},
		{"metrics port", func(c *Config) { c.Metrics = MetricsConfig{Enabled: true, Port: 70000} }, "metrics.port"},
		{"metrics disabled ignores port", func(c *Config) { c.Metrics = MetricsConfig{Port: 0} }, ""},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
		{"cache driver", func(c *Config) { c.Cache.Driver = "redis" }, "cache.driver"},
		{"mode", func(c *Config) { c.Bench.Mode = "decode" }, "bench.mode"},
		{"code", func(c *Config) { c.Bench.Code = "toric" }, "bench.code"},
		{"even distance", func(c *Config) { c.Bench.D = 4 }, "bench.d"},
		{"small distance", func(c *Config) { c.Bench.D = 1 }, "bench.d"},
		{"negative measurements", func(c *Config) { c.Bench.NoisyMeasurements = -1 }, "bench.noisy_measurements"},
		{"zero p", func(c *Config) { c.Bench.P = 0 }, "bench.p"},
		{"large p", func(c *Config) { c.Bench.P = 0.6 }, "bench.p"},
		{"pe", func(c *Config) { c.Bench.Pe = 1.5 }, "bench.pe"},
		{"max half weight", func(c *Config) { c.Bench.MaxHalfWeight = 0 }, "bench.max_half_weight"},
		{"rounds", func(c *Config) { c.Bench.Rounds = 0 }, "bench.rounds"},
		{"verify ignores rounds", func(c *Config) { c.Bench.Mode = ModeVerify; c.Bench.Rounds = 0 }, ""},
		{"workers", func(c *Config) { c.Bench.Workers = 0 }, "bench.workers"},
		{"timeout", func(c *Config) { c.Bench.Timeout = -time.Second }, "bench.timeout"},
		{"generate needs path", func(c *Config) { c.Bench.Mode = ModeGenerate }, "bench.replay_path"},
		{"replay needs path", func(c *Config) { c.Bench.Mode = ModeReplay }, "bench.replay_path"},
		{"replay ignores code", func(c *Config) {
			c.Bench.Mode = ModeReplay
			c.Bench.ReplayPath = "patterns.txt"
			c.Bench.Code = ""
			c.Bench.D = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateSetsDefaultLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = ""
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected 'info', got %s", cfg.Log.Level)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
	}

	for _, tt := range tests {
		cfg := Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}
