package model

// GroundType is a named homogeneous ground with its electrical constants.
type GroundType struct {
	Name        string  `json:"name" yaml:"name" mapstructure:"name"`
	Epsilon     float64 `json:"epsilon" yaml:"epsilon" mapstructure:"epsilon"`
	SigmaSPerM  float64 `json:"sigma" yaml:"sigma" mapstructure:"sigma"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// Station is a fixed LF/MF terminal: a transmitter or a receiving site.
// Coordinates are geodetic degrees; TxPowerW is zero for receive-only sites.
type Station struct {
	ID             string       `json:"id" yaml:"id" mapstructure:"id"`
	Name           string       `json:"name" yaml:"name" mapstructure:"name"`
	LatDeg         float64      `json:"lat" yaml:"lat" mapstructure:"lat"`
	LonDeg         float64      `json:"lon" yaml:"lon" mapstructure:"lon"`
	AntennaHeightM float64      `json:"antenna_height__meter" yaml:"antenna_height__meter" mapstructure:"antenna_height__meter"`
	FrequencyMHz   float64      `json:"f__mhz,omitempty" yaml:"f__mhz,omitempty" mapstructure:"f__mhz"`
	TxPowerW       float64      `json:"p_tx__watt,omitempty" yaml:"p_tx__watt,omitempty" mapstructure:"p_tx__watt"`
	Polarization   Polarization `json:"pol" yaml:"pol" mapstructure:"pol"`
	// GroundType names the catalogue ground assumed along paths from this
	// station; empty means the catalogue default.
	GroundType string `json:"ground_type,omitempty" yaml:"ground_type,omitempty" mapstructure:"ground_type"`
}

// Transmits reports whether the station has what a path prediction needs
// from its transmitting end.
func (s Station) Transmits() bool {
	return s.FrequencyMHz > 0 && s.TxPowerW > 0
}
