package driver

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/model"
)

// Report is everything written to one report file.
type Report struct {
	Args      []string
	Generated time.Time
	Input     model.Input
	// Distances is set for sweep reports; Input.DistanceKm is then ignored.
	Distances   []float64
	Predictions []core.Prediction
	Code        core.ReturnCode
}

const (
	labelWidth = 25
	valueWidth = 13
)

// WriteReport renders r as the plain-text report: a generator header, the
// inputs, and the results. Results beyond the return code are written only
// on success.
func WriteReport(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%-30s%s\n", "Model", LibraryName)
	fmt.Fprintf(bw, "%-30sv%s\n", "Library Version", LibraryVersion)
	fmt.Fprintf(bw, "%-30sv%s\n", "Driver Version", DriverVersion)
	fmt.Fprintf(bw, "%-30s%s\n", "Date Generated", r.Generated.Format(time.ANSIC))
	fmt.Fprintf(bw, "%-30s%s\n\n", "Input Arguments", strings.Join(r.Args, " "))

	fmt.Fprintln(bw, "Inputs:")
	in := r.Input
	line(bw, KeyTxHeight, in.TxHeightM, "(meters)")
	line(bw, KeyRxHeight, in.RxHeightM, "(meters)")
	line(bw, KeyFrequency, in.FrequencyMHz, "(MHz)")
	line(bw, KeyTxPower, in.TxPowerW, "(Watts)")
	line(bw, KeySurfaceRefractivity, in.SurfaceRefractivity, "(N-Units)")
	if r.Distances == nil {
		line(bw, KeyDistance, in.DistanceKm, "(km)")
	} else {
		line(bw, KeyDistance, fmt.Sprintf("%d points", len(r.Distances)), "(sweep)")
	}
	line(bw, KeyEpsilon, in.Epsilon, "")
	line(bw, KeySigma, in.SigmaSPerM, "(S/m)")
	line(bw, KeyPolarization, int(in.Polarization), "["+in.Polarization.String()+"]")

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Results:")
	line(bw, "Return Code", int(r.Code), "["+r.Code.String()+"]")
	if r.Code == core.Success {
		if r.Distances == nil && len(r.Predictions) == 1 {
			writePrediction(bw, r.Predictions[0])
		} else {
			writeSweepTable(bw, r.Distances, r.Predictions)
		}
	}
	return bw.Flush()
}

func line(w io.Writer, label string, value any, unit string) {
	if f, ok := value.(float64); ok {
		value = formatFloat(f)
	}
	fmt.Fprintf(w, "%-*s%-*v%s\n", labelWidth, label, valueWidth, value, unit)
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.6g", f)
}

func writePrediction(w io.Writer, p core.Prediction) {
	line(w, "Basic transmission loss", fmt.Sprintf("%.3f", p.ABtlDB), "(dB)")
	line(w, "Electric field strength", fmt.Sprintf("%.3f", p.EdBuVm), "(dB(uV/m))")
	line(w, "Received power", fmt.Sprintf("%.3f", p.PRxDBm), "(dBm)")
	line(w, "Solution method", int(p.Method), "["+p.Method.String()+"]")
	if p.Method == model.ResidueSeries {
		line(w, "Residue series modes", p.Modes, "")
	}
}

func writeSweepTable(w io.Writer, dists []float64, preds []core.Prediction) {
	fmt.Fprintf(w, "%-12s %-12s %-12s %-12s %s\n", KeyDistance, "A_btl__db", "E__dBuVm", "P_rx__dbm", "method")
	for i, p := range preds {
		fmt.Fprintf(w, "%-12s %-12.3f %-12.3f %-12.3f %s\n",
			formatFloat(dists[i]), p.ABtlDB, p.EdBuVm, p.PRxDBm, p.Method.Key())
	}
}
