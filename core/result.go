package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/groundwave/model"
)

// AntennaGainDBi is the gain assumed for both terminals: a short vertical
// monopole over a perfect ground plane.
const AntennaGainDBi = 4.77

// AssembleResult scales the normalised field eNorm by the free-space field
// of the transmitter and converts it into basic transmission loss, field
// strength and received power.
func AssembleResult(eNorm float64, in model.Input, method model.SolutionMethod) (model.Result, error) {
	fHz := in.FrequencyMHz * 1e6
	gTx := math.Pow(10, AntennaGainDBi/10)

	// Unattenuated field at the receiver, V/km = mV/m.
	e0 := math.Sqrt(FreeSpaceImped*in.TxPowerW*gTx/(4*math.Pi)) / in.DistanceKm
	eGw := eNorm * e0

	res := model.Result{
		ABtlDB: 10*math.Log10(in.TxPowerW*gTx) +
			10*math.Log10(FreeSpaceImped*4*math.Pi) +
			20*math.Log10(fHz) -
			20*math.Log10(eGw/1000) -
			20*math.Log10(SpeedOfLight),
		EdBuVm: 60 + 20*math.Log10(eGw),
		Method: method,
	}
	res.PRxDBm = res.EdBuVm + AntennaGainDBi - 20*math.Log10(fHz) + 42.8

	for _, v := range []float64{res.ABtlDB, res.EdBuVm, res.PRxDBm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Result{}, fmt.Errorf("%w: non-finite result for field %g mV/m", ErrNumericalInstability, eGw)
		}
	}
	return res, nil
}
