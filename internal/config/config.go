// Package config loads sutra settings from defaults, an optional config file
// and SUTRA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sutra/internal/executor"
	"sutra/internal/observability"
)

const (
	// EnvPrefix namespaces environment overrides, e.g. SUTRA_SERVER_PORT.
	EnvPrefix = "SUTRA"
	// FileName is looked up in the working directory and $HOME/.sutra.
	FileName = "sutra"
)

// Config is the complete runtime configuration.
type Config struct {
	Server        ServerConfig         `mapstructure:"server"`
	Executor      ExecutorConfig       `mapstructure:"executor"`
	Observability observability.Config `mapstructure:"observability"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Debug          bool          `mapstructure:"debug"`
	EnableCORS     bool          `mapstructure:"enable_cors"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IndexFile      string        `mapstructure:"index_file"`
	// MaxBodyBytes caps POST /api/evaluate bodies; 0 disables the cap.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// ExecutorConfig configures action dispatch.
type ExecutorConfig struct {
	SimulatedDelay time.Duration `mapstructure:"simulated_delay"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	ActionTimeout  time.Duration `mapstructure:"action_timeout"`
}

// Dispatch converts the settings into executor limits.
func (c ExecutorConfig) Dispatch() executor.Config {
	return executor.Config{
		MaxConcurrency: c.MaxConcurrency,
		ActionTimeout:  c.ActionTimeout,
	}
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			EnableCORS:   true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Executor: ExecutorConfig{
			SimulatedDelay: executor.DefaultSimulatedDelay,
		},
		Observability: observability.DefaultConfig(),
	}
}

// Load reads configuration. An explicit path must exist; without one the
// default locations are searched and a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sutra")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot honor.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must not be negative: %d", c.Server.MaxBodyBytes))
	}
	if c.Executor.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("executor.max_concurrency must not be negative: %d", c.Executor.MaxConcurrency))
	}
	if c.Executor.SimulatedDelay < 0 {
		errs = append(errs, fmt.Errorf("executor.simulated_delay must not be negative: %s", c.Executor.SimulatedDelay))
	}
	if c.Executor.ActionTimeout < 0 {
		errs = append(errs, fmt.Errorf("executor.action_timeout must not be negative: %s", c.Executor.ActionTimeout))
	}
	switch strings.ToLower(c.Observability.Logging.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("observability.logging.format must be json or text: %q", c.Observability.Logging.Format))
	}
	return errors.Join(errs...)
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.debug", d.Server.Debug)
	v.SetDefault("server.enable_cors", d.Server.EnableCORS)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.index_file", d.Server.IndexFile)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("executor.simulated_delay", d.Executor.SimulatedDelay)
	v.SetDefault("executor.max_concurrency", d.Executor.MaxConcurrency)
	v.SetDefault("executor.action_timeout", d.Executor.ActionTimeout)

	obs := d.Observability
	v.SetDefault("observability.logging.level", obs.Logging.Level)
	v.SetDefault("observability.logging.format", obs.Logging.Format)
	v.SetDefault("observability.logging.file", obs.Logging.File)
	v.SetDefault("observability.metrics.enabled", obs.Metrics.Enabled)
	v.SetDefault("observability.tracing.enabled", obs.Tracing.Enabled)
	v.SetDefault("observability.tracing.exporter", obs.Tracing.Exporter)
	v.SetDefault("observability.tracing.otlp_endpoint", obs.Tracing.OTLPEndpoint)
	v.SetDefault("observability.tracing.zipkin_endpoint", obs.Tracing.ZipkinEndpoint)
	v.SetDefault("observability.tracing.sample_rate", obs.Tracing.SampleRate)
	v.SetDefault("observability.tracing.service_name", obs.Tracing.ServiceName)
	v.SetDefault("observability.tracing.service_version", obs.Tracing.ServiceVersion)
}
