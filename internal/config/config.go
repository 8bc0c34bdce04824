// Package config loads the server configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/internal/logging"
	"github.com/signalsfoundry/groundwave/internal/observability"
	"github.com/signalsfoundry/groundwave/kb"
	"github.com/signalsfoundry/groundwave/model"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig                `yaml:"server"`
	Engine  EngineConfig                `yaml:"engine"`
	Tracing observability.TracingConfig `yaml:"tracing"`
	Logging logging.Config              `yaml:"logging"`

	// DefaultGround names the ground type used by stations that set none.
	DefaultGround string             `yaml:"default_ground"`
	GroundTypes   []model.GroundType `yaml:"ground_types"`
	Stations      []model.Station    `yaml:"stations"`
}

// ServerConfig holds listener addresses.
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	// SweepWorkers bounds concurrent evaluations per sweep; zero uses GOMAXPROCS.
	SweepWorkers int `yaml:"sweep_workers"`
	// MaxSweepPoints caps the distances accepted by one sweep request.
	MaxSweepPoints int `yaml:"max_sweep_points"`
}

// EngineConfig mirrors core.Options.
type EngineConfig struct {
	MaxModes          int     `yaml:"max_modes"`
	MaxRootIterations int     `yaml:"max_root_iterations"`
	SeriesTolerance   float64 `yaml:"series_tolerance"`
}

// Options converts the engine section into core options.
func (e EngineConfig) Options() core.Options {
	return core.Options{
		MaxModes:          e.MaxModes,
		MaxRootIterations: e.MaxRootIterations,
		SeriesTolerance:   e.SeriesTolerance,
	}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opts := core.DefaultOptions()
	return Config{
		Server: ServerConfig{
			GRPCAddr:       ":50061",
			MetricsAddr:    ":9091",
			MaxSweepPoints: 10000,
		},
		Engine: EngineConfig{
			MaxModes:          opts.MaxModes,
			MaxRootIterations: opts.MaxRootIterations,
			SeriesTolerance:   opts.SeriesTolerance,
		},
		Tracing:       observability.DefaultTracingConfig(),
		Logging:       logging.Config{Level: "info", Format: "text"},
		DefaultGround: kb.DefaultGroundName,
	}
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LFMF_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := os.Getenv("LFMF_METRICS_ADDR"); v != "" {
		c.Server.MetricsAddr = v
	}
	if v := os.Getenv("LFMF_MAX_MODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LFMF_MAX_MODES: %w", err)
		}
		c.Engine.MaxModes = n
	}
	if v := os.Getenv("LFMF_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LFMF_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	c.Tracing = c.Tracing.ApplyEnv()
	return nil
}

// Validate checks the settings a server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Server.GRPCAddr == "" {
		errs = append(errs, errors.New("server.grpc_addr is required"))
	}
	if c.Server.SweepWorkers < 0 {
		errs = append(errs, errors.New("server.sweep_workers must not be negative"))
	}
	if c.Server.MaxSweepPoints <= 0 {
		errs = append(errs, errors.New("server.max_sweep_points must be positive"))
	}
	if c.Engine.MaxModes <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_modes must be positive, got %d", c.Engine.MaxModes))
	}
	if c.Engine.MaxRootIterations <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_root_iterations must be positive, got %d", c.Engine.MaxRootIterations))
	}
	if tol := c.Engine.SeriesTolerance; tol < 1e-6 || tol > 0.1 {
		errs = append(errs, fmt.Errorf("engine.series_tolerance %g outside [1e-6, 0.1]", tol))
	}
	if r := c.Tracing.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio %g outside [0, 1]", r))
	}
	return errors.Join(errs...)
}

// Catalogue builds the knowledge base: the built-in ground types, then the
// configured ones, then the stations.
func (c Config) Catalogue() (*kb.KnowledgeBase, error) {
	store := kb.NewWithDefaults()
	for _, g := range c.GroundTypes {
		if err := store.AddGroundType(g); err != nil {
			return nil, fmt.Errorf("ground_types: %w", err)
		}
	}
	if c.DefaultGround != "" {
		if err := store.SetDefaultGround(c.DefaultGround); err != nil {
			return nil, fmt.Errorf("default_ground: %w", err)
		}
	}
	for _, s := range c.Stations {
		if err := store.AddStation(s); err != nil {
			return nil, fmt.Errorf("stations: %w", err)
		}
	}
	return store, nil
}
