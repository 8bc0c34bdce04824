package driver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/signalsfoundry/groundwave/model"
)

// Input-file keys, in report order.
const (
	KeyTxHeight            = "h_tx__meter"
	KeyRxHeight            = "h_rx__meter"
	KeyFrequency           = "f__mhz"
	KeyTxPower             = "p_tx__watt"
	KeySurfaceRefractivity = "n_s"
	KeyDistance            = "d__km"
	KeyEpsilon             = "epsilon"
	KeySigma               = "sigma"
	KeyPolarization        = "pol"
)

type inputKey struct {
	name  string
	code  Code
	field func(*model.Input) *float64
}

var inputKeys = []inputKey{
	{KeyTxHeight, CodeParseTxTerminalHeight, func(in *model.Input) *float64 { return &in.TxHeightM }},
	{KeyRxHeight, CodeParseRxTerminalHeight, func(in *model.Input) *float64 { return &in.RxHeightM }},
	{KeyFrequency, CodeParseFrequency, func(in *model.Input) *float64 { return &in.FrequencyMHz }},
	{KeyTxPower, CodeParseTxPower, func(in *model.Input) *float64 { return &in.TxPowerW }},
	{KeySurfaceRefractivity, CodeParseSurfaceRefractivity, func(in *model.Input) *float64 { return &in.SurfaceRefractivity }},
	{KeyDistance, CodeParsePathDistance, func(in *model.Input) *float64 { return &in.DistanceKm }},
	{KeyEpsilon, CodeParseEpsilon, func(in *model.Input) *float64 { return &in.Epsilon }},
	{KeySigma, CodeParseSigma, func(in *model.Input) *float64 { return &in.SigmaSPerM }},
	{KeyPolarization, CodeParsePolarization, nil},
}

func lookupKey(name string) (inputKey, bool) {
	for _, k := range inputKeys {
		if k.name == name {
			return k, true
		}
	}
	return inputKey{}, false
}

// ParseInput reads a key,value input file. Keys are case-insensitive and
// blank lines are skipped. A repeated key overrides the earlier value.
// Every key must appear; the values are not range-checked here.
func ParseInput(r io.Reader) (model.Input, error) {
	var in model.Input
	seen := make(map[string]bool, len(inputKeys))

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, ",")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !ok {
			return model.Input{}, newError(CodeParse, key, fmt.Errorf("line %d has no value", line))
		}
		if err := setValue(&in, key, value); err != nil {
			return model.Input{}, err
		}
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return model.Input{}, newError(CodeOpeningInputFile, "", err)
	}

	var missing []string
	for _, k := range inputKeys {
		if !seen[k.name] {
			missing = append(missing, k.name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return model.Input{}, newError(CodeParse, strings.Join(missing, ","), errors.New("missing keys"))
	}
	return in, nil
}

// setValue parses value into the field named by key.
func setValue(in *model.Input, key, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return newError(CodeParse, key, nil)
	}
	if k.field == nil {
		pol, err := model.ParsePolarization(value)
		if err != nil {
			return newError(k.code, key, err)
		}
		in.Polarization = pol
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return newError(k.code, key, err)
	}
	*k.field(in) = v
	return nil
}
