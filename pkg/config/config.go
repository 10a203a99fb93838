// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Режимы работы bench-svc
const (
	ModeBenchmark = "benchmark"
	ModeGenerate  = "generate"
	ModeReplay    = "replay"
	ModeVerify    = "verify"
)

// Семейства кодов
const (
	CodeRepetition       = "repetition"
	CodePlanar           = "planar"
	CodePhenomenological = "phenomenological"
	CodeCircuitLevel     = "circuit_level"
)

// Config - главная структура конфигурации
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Cache   CacheConfig   `koanf:"cache"`
	Bench   BenchConfig   `koanf:"bench"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig - настройки кэша путей
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Driver          string        `koanf:"driver"` // memory
	DefaultTTL      time.Duration `koanf:"default_ttl"`
	MaxEntries      int           `koanf:"max_entries"`
	MaxMemoryBytes  int64         `koanf:"max_memory_bytes"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// BenchConfig - параметры прогона
type BenchConfig struct {
	Mode string `koanf:"mode"` // benchmark, generate, replay, verify

	// Код
	Code              string  `koanf:"code"`               // repetition, planar, phenomenological, circuit_level
	D                 int     `koanf:"d"`                  // кодовое расстояние, нечётное >= 3
	NoisyMeasurements int     `koanf:"noisy_measurements"` // число зашумлённых раундов измерений
	P                 float64 `koanf:"p"`                  // вероятность ошибки ребра
	Pe                float64 `koanf:"pe"`                 // вероятность стирания ребра
	MaxHalfWeight     int64   `koanf:"max_half_weight"`

	// Прогон
	Rounds  int           `koanf:"rounds"`  // число синдромов
	Seed    uint64        `koanf:"seed"`    // начальное зерно
	Workers int           `koanf:"workers"` // число реплик генератора
	Timeout time.Duration `koanf:"timeout"` // 0 - без ограничения

	// Файлы
	ReplayPath  string `koanf:"replay_path"`  // файл синдромов для generate/replay
	ProfilePath string `koanf:"profile_path"` // JSON-lines профиль, пусто - не писать
	ReportPath  string `koanf:"report_path"`  // XLSX сводка, пусто - не писать
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be in [0, 1], got %v", c.Tracing.SampleRate))
	}

	if c.Cache.Driver != "" && c.Cache.Driver != "memory" {
		errs = append(errs, fmt.Sprintf("cache.driver must be memory, got %s", c.Cache.Driver))
	}

	errs = append(errs, c.Bench.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (b *BenchConfig) validate() []string {
	var errs []string

	validModes := map[string]bool{ModeBenchmark: true, ModeGenerate: true, ModeReplay: true, ModeVerify: true}
	if !validModes[b.Mode] {
		errs = append(errs, fmt.Sprintf("bench.mode must be one of: benchmark, generate, replay, verify, got %s", b.Mode))
	}

	// replay берёт граф из файла
	if b.Mode != ModeReplay {
		validCodes := map[string]bool{CodeRepetition: true, CodePlanar: true, CodePhenomenological: true, CodeCircuitLevel: true}
		if !validCodes[b.Code] {
			errs = append(errs, fmt.Sprintf("bench.code must be one of: repetition, planar, phenomenological, circuit_level, got %s", b.Code))
		}
		if b.D < 3 || b.D%2 == 0 {
			errs = append(errs, fmt.Sprintf("bench.d must be odd integer >= 3, got %d", b.D))
		}
		if b.NoisyMeasurements < 0 {
			errs = append(errs, "bench.noisy_measurements must be non-negative")
		}
		if b.P <= 0 || b.P > 0.5 {
			errs = append(errs, fmt.Sprintf("bench.p must be in (0, 0.5], got %v", b.P))
		}
		if b.Pe < 0 || b.Pe > 1 {
			errs = append(errs, fmt.Sprintf("bench.pe must be in [0, 1], got %v", b.Pe))
		}
		if b.MaxHalfWeight <= 0 {
			errs = append(errs, "bench.max_half_weight must be positive")
		}
	}

	if b.Mode != ModeVerify && b.Rounds <= 0 {
		errs = append(errs, fmt.Sprintf("bench.rounds must be positive, got %d", b.Rounds))
	}
	if b.Workers < 1 {
		errs = append(errs, fmt.Sprintf("bench.workers must be at least 1, got %d", b.Workers))
	}
	if b.Timeout < 0 {
		errs = append(errs, "bench.timeout must be non-negative")
	}
	if (b.Mode == ModeGenerate || b.Mode == ModeReplay) && b.ReplayPath == "" {
		errs = append(errs, fmt.Sprintf("bench.replay_path is required in %s mode", b.Mode))
	}

	return errs
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
