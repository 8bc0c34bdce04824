package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Polarization selects the antenna polarization of both terminals.
type Polarization int

const (
	PolarizationHorizontal Polarization = 0
	PolarizationVertical   Polarization = 1
)

func (p Polarization) String() string {
	switch p {
	case PolarizationHorizontal:
		return "horizontal"
	case PolarizationVertical:
		return "vertical"
	default:
		return fmt.Sprintf("Polarization(%d)", int(p))
	}
}

// Valid reports whether p is one of the supported polarizations.
func (p Polarization) Valid() bool {
	return p == PolarizationHorizontal || p == PolarizationVertical
}

// ParsePolarization accepts the numeric codes ("0", "1") as well as the
// names "horizontal"/"vertical" and their single letter forms.
func ParsePolarization(s string) (Polarization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "h", "horizontal":
		return PolarizationHorizontal, nil
	case "1", "v", "vertical":
		return PolarizationVertical, nil
	default:
		return 0, fmt.Errorf("unknown polarization %q", s)
	}
}

// UnmarshalYAML accepts any form ParsePolarization does, so configuration
// files may write either "pol: 1" or "pol: vertical".
func (p *Polarization) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: polarization must be a scalar", node.Line)
	}
	v, err := ParsePolarization(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*p = v
	return nil
}

// SolutionMethod tags which ground-wave solution produced a result.
type SolutionMethod int

const (
	// FlatEarthCurveCorrection is the Norton flat-earth solution with Wait's
	// curvature correction, used on short paths.
	FlatEarthCurveCorrection SolutionMethod = 0
	// ResidueSeries is the spherical-earth mode sum used on long paths.
	ResidueSeries SolutionMethod = 1
)

func (m SolutionMethod) String() string {
	switch m {
	case FlatEarthCurveCorrection:
		return "Flat earth with curve correction"
	case ResidueSeries:
		return "Residue series"
	default:
		return fmt.Sprintf("SolutionMethod(%d)", int(m))
	}
}

// Key is the short machine-readable form of m used in labels and JSON.
func (m SolutionMethod) Key() string {
	switch m {
	case FlatEarthCurveCorrection:
		return "flat_earth"
	case ResidueSeries:
		return "residue_series"
	default:
		return "unknown"
	}
}

// Input is the full set of path parameters for a single prediction.
// Heights are in metres, frequency in MHz, power in watts, distance in km
// and conductivity in S/m.
type Input struct {
	TxHeightM           float64      `json:"h_tx__meter" yaml:"h_tx__meter" mapstructure:"h_tx__meter"`
	RxHeightM           float64      `json:"h_rx__meter" yaml:"h_rx__meter" mapstructure:"h_rx__meter"`
	FrequencyMHz        float64      `json:"f__mhz" yaml:"f__mhz" mapstructure:"f__mhz"`
	TxPowerW            float64      `json:"p_tx__watt" yaml:"p_tx__watt" mapstructure:"p_tx__watt"`
	SurfaceRefractivity float64      `json:"n_s" yaml:"n_s" mapstructure:"n_s"`
	DistanceKm          float64      `json:"d__km" yaml:"d__km" mapstructure:"d__km"`
	Epsilon             float64      `json:"epsilon" yaml:"epsilon" mapstructure:"epsilon"`
	SigmaSPerM          float64      `json:"sigma" yaml:"sigma" mapstructure:"sigma"`
	Polarization        Polarization `json:"pol" yaml:"pol" mapstructure:"pol"`
}

// Result is the outcome of a successful prediction.
type Result struct {
	ABtlDB float64        `json:"A_btl__db"` // basic transmission loss
	EdBuVm float64        `json:"E__dBuVm"`  // field strength, dB above 1 uV/m
	PRxDBm float64        `json:"P_rx__dbm"` // received power
	Method SolutionMethod `json:"method"`
}
