package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/kb"
	"github.com/signalsfoundry/groundwave/model"
)

const sampleYAML = `
server:
  grpc_addr: "127.0.0.1:6000"
  sweep_workers: 4
engine:
  max_modes: 120
  series_tolerance: 0.0001
logging:
  level: debug
  format: json
tracing:
  enabled: true
  exporter: otlp
  endpoint: "collector:4317"
  sample_ratio: 0.5
default_ground: land
ground_types:
  - name: salt marsh
    epsilon: 40
    sigma: 0.5
stations:
  - id: droitwich
    name: Droitwich
    lat: 52.296
    lon: -2.105
    antenna_height__meter: 0
    f__mhz: 0.198
    p_tx__watt: 500000
    pol: vertical
  - id: rx-marsh
    lat: 52.9
    lon: 0.5
    antenna_height__meter: 2
    pol: 1
    ground_type: salt marsh
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lfmf.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config error: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate error: %v", err)
	}
	if cfg.Engine.Options() != core.DefaultOptions() {
		t.Fatalf("default engine options = %+v, want %+v", cfg.Engine.Options(), core.DefaultOptions())
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.GRPCAddr != "127.0.0.1:6000" || cfg.Server.SweepWorkers != 4 {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Server.MetricsAddr != Default().Server.MetricsAddr {
		t.Fatalf("unset metrics_addr lost its default: %q", cfg.Server.MetricsAddr)
	}
	if cfg.Engine.MaxModes != 120 || cfg.Engine.SeriesTolerance != 1e-4 {
		t.Fatalf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.MaxRootIterations != core.DefaultOptions().MaxRootIterations {
		t.Fatalf("unset max_root_iterations = %d", cfg.Engine.MaxRootIterations)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Exporter != "otlp" || cfg.Tracing.ServiceName != "lfmf-grpc" {
		t.Fatalf("tracing = %+v", cfg.Tracing)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if len(cfg.Stations) != 2 {
		t.Fatalf("stations = %+v", cfg.Stations)
	}
	if cfg.Stations[0].Polarization != model.PolarizationVertical || cfg.Stations[1].Polarization != model.PolarizationVertical {
		t.Fatalf("polarizations = %v, %v", cfg.Stations[0].Polarization, cfg.Stations[1].Polarization)
	}
}

func TestCatalogue(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	store, err := cfg.Catalogue()
	if err != nil {
		t.Fatalf("Catalogue error: %v", err)
	}
	if got := len(store.ListGroundTypes()); got != len(kb.DefaultGroundTypes())+1 {
		t.Fatalf("ground types = %d", got)
	}
	tx, err := store.Station("droitwich")
	if err != nil {
		t.Fatalf("Station error: %v", err)
	}
	g, err := store.GroundFor(tx)
	if err != nil || g.Name != "land" {
		t.Fatalf("GroundFor(droitwich) = %+v, %v", g, err)
	}
	rx, _ := store.Station("rx-marsh")
	if g, _ := store.GroundFor(rx); g.Epsilon != 40 {
		t.Fatalf("GroundFor(rx-marsh) = %+v", g)
	}

	cfg.Stations = append(cfg.Stations, model.Station{ID: "bad", GroundType: "bog"})
	if _, err := cfg.Catalogue(); !errors.Is(err, kb.ErrNotFound) {
		t.Fatalf("Catalogue with unknown ground error = %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LFMF_GRPC_ADDR", ":7000")
	t.Setenv("LFMF_MAX_MODES", "42")
	t.Setenv("LFMF_TRACING_ENABLED", "false")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.GRPCAddr != ":7000" || cfg.Engine.MaxModes != 42 || cfg.Tracing.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	t.Setenv("LFMF_MAX_MODES", "many")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "LFMF_MAX_MODES") {
		t.Fatalf("bad LFMF_MAX_MODES error = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(writeConfig(t, "stations:\n  - id: x\n    pol: circular\n")); err == nil {
		t.Fatalf("expected polarization error")
	}

	_, err := Load(writeConfig(t, "engine:\n  max_modes: -1\n  series_tolerance: 2\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"engine.max_modes", "engine.series_tolerance"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "lfmf.yaml"))
	if err != nil {
		t.Fatalf("Load example config error: %v", err)
	}
	if cfg.Engine.Options() != core.DefaultOptions() {
		t.Fatalf("example engine options = %+v, want defaults", cfg.Engine.Options())
	}
	store, err := cfg.Catalogue()
	if err != nil {
		t.Fatalf("Catalogue error: %v", err)
	}
	if n := len(store.ListStations()); n != 3 {
		t.Fatalf("stations = %d, want 3", n)
	}
	if _, err := store.GroundType("Peat Bog"); err != nil {
		t.Fatalf("GroundType(peat bog) error: %v", err)
	}
}
