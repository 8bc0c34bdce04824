package rpc

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/model"
)

// ErrInvalidRequest marks malformed request documents.
var ErrInvalidRequest = errors.New("invalid request")

// inputKeys are the fields every prediction input must carry.
var inputKeys = []string{
	"h_tx__meter", "h_rx__meter", "f__mhz", "p_tx__watt", "n_s",
	"d__km", "epsilon", "sigma", "pol",
}

var polarizationType = reflect.TypeOf(model.Polarization(0))

// polarizationHook accepts "vertical", "h", "1" and integral numbers.
func polarizationHook(from, to reflect.Type, data any) (any, error) {
	if to != polarizationType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return model.ParsePolarization(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("polarization %g is not an integer", v)
		}
		return model.Polarization(int(v)), nil
	}
	return data, nil
}

func decode(src map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  polarizationHook,
		ErrorUnused: true,
		Result:      dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func requireKeys(m map[string]any, prefix string, keys []string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			missing = append(missing, prefix+k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing fields %v", ErrInvalidRequest, missing)
	}
	return nil
}

// DecodeInput converts a request document into a prediction input. All
// nine input fields are required; unknown keys are rejected. Range checks
// are left to the engine.
func DecodeInput(m map[string]any) (model.Input, error) {
	if err := requireKeys(m, "", inputKeys); err != nil {
		return model.Input{}, err
	}
	var in model.Input
	if err := decode(m, &in); err != nil {
		return model.Input{}, err
	}
	return in, nil
}

type sweepRequest struct {
	Input     map[string]any `mapstructure:"input"`
	Distances []float64      `mapstructure:"distances"`
	StartKm   float64        `mapstructure:"start_km"`
	StopKm    float64        `mapstructure:"stop_km"`
	Points    int            `mapstructure:"points"`
}

// decodeSweep returns the base input and the distances to evaluate. The
// input's own d__km is optional and ignored.
func decodeSweep(m map[string]any, maxPoints int) (model.Input, []float64, error) {
	var req sweepRequest
	if err := decode(m, &req); err != nil {
		return model.Input{}, nil, err
	}
	if req.Input == nil {
		return model.Input{}, nil, fmt.Errorf("%w: missing fields [input]", ErrInvalidRequest)
	}
	if _, ok := req.Input["d__km"]; !ok {
		req.Input["d__km"] = 1.0
	}
	in, err := DecodeInput(req.Input)
	if err != nil {
		return model.Input{}, nil, err
	}

	dists := req.Distances
	switch {
	case len(dists) > 0 && req.Points > 0:
		return model.Input{}, nil, fmt.Errorf("%w: give either distances or start_km/stop_km/points", ErrInvalidRequest)
	case len(dists) == 0 && req.Points <= 0:
		return model.Input{}, nil, fmt.Errorf("%w: no distances requested", ErrInvalidRequest)
	case len(dists) > maxPoints || req.Points > maxPoints:
		n := max(len(dists), req.Points)
		return model.Input{}, nil, fmt.Errorf("%w: sweep of %d points exceeds limit %d", core.ErrTooManyPoints, n, maxPoints)
	case len(dists) == 0:
		if dists, err = core.Distances(req.StartKm, req.StopKm, req.Points); err != nil {
			return model.Input{}, nil, err
		}
	}
	return in, dists, nil
}

type stationsRequest struct {
	TxID                string  `mapstructure:"tx_id"`
	RxID                string  `mapstructure:"rx_id"`
	SurfaceRefractivity float64 `mapstructure:"n_s"`
	GroundType          string  `mapstructure:"ground_type"`
}

func decodeStations(m map[string]any) (stationsRequest, error) {
	if err := requireKeys(m, "", []string{"tx_id", "rx_id"}); err != nil {
		return stationsRequest{}, err
	}
	var req stationsRequest
	if err := decode(m, &req); err != nil {
		return stationsRequest{}, err
	}
	return req, nil
}

func predictionFields(in model.Input, p core.Prediction) map[string]any {
	return map[string]any{
		"d__km":        in.DistanceKm,
		"A_btl__db":    p.ABtlDB,
		"E__dBuVm":     p.EdBuVm,
		"P_rx__dbm":    p.PRxDBm,
		"method":       p.Method.String(),
		"method_key":   p.Method.Key(),
		"modes":        float64(p.Modes),
		"crossover_km": p.CrossoverKm,
		"return_code":  float64(core.Success),
	}
}

func groundFields(g model.GroundType) map[string]any {
	m := map[string]any{
		"name":    g.Name,
		"epsilon": g.Epsilon,
		"sigma":   g.SigmaSPerM,
	}
	if g.Description != "" {
		m["description"] = g.Description
	}
	return m
}

func stationFields(s model.Station) map[string]any {
	return map[string]any{
		"id":                    s.ID,
		"name":                  s.Name,
		"lat":                   s.LatDeg,
		"lon":                   s.LonDeg,
		"antenna_height__meter": s.AntennaHeightM,
		"f__mhz":                s.FrequencyMHz,
		"p_tx__watt":            s.TxPowerW,
		"pol":                   s.Polarization.String(),
		"ground_type":           s.GroundType,
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return s, nil
}
