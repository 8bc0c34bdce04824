// Package driver implements the lfmf command line: option parsing, the
// key,value input file, and the plain-text report.
package driver

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/internal/logging"
	"github.com/signalsfoundry/groundwave/model"
)

// Options are the parsed command line.
type Options struct {
	InFile  string
	OutFile string
	Help    bool
	Version bool

	// Direct holds the path given as flags instead of an input file.
	Direct    model.Input
	directSet map[string]bool

	// Sweep is "start,stop,points" in km; empty for a single prediction.
	Sweep   string
	Workers int
}

// directFlags maps each direct-mode flag onto its input-file key.
var directFlags = map[string]string{
	"h_tx":    KeyTxHeight,
	"h_rx":    KeyRxHeight,
	"f":       KeyFrequency,
	"p":       KeyTxPower,
	"ns":      KeySurfaceRefractivity,
	"d":       KeyDistance,
	"epsilon": KeyEpsilon,
	"sigma":   KeySigma,
	"pol":     KeyPolarization,
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet(DriverName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&o.InFile, "i", "", "input file")
	fs.StringVar(&o.OutFile, "o", "", "output file")
	fs.BoolVar(&o.Help, "h", false, "display help")
	fs.BoolVar(&o.Help, "help", false, "display help")
	fs.BoolVar(&o.Version, "v", false, "display version")
	fs.BoolVar(&o.Version, "version", false, "display version")

	fs.Float64Var(&o.Direct.TxHeightM, "h_tx", 0, "transmitter height (m)")
	fs.Float64Var(&o.Direct.RxHeightM, "h_rx", 0, "receiver height (m)")
	fs.Float64Var(&o.Direct.FrequencyMHz, "f", 0, "frequency (MHz)")
	fs.Float64Var(&o.Direct.TxPowerW, "p", 0, "transmit power (W)")
	fs.Float64Var(&o.Direct.SurfaceRefractivity, "ns", 0, "surface refractivity (N-units)")
	fs.Float64Var(&o.Direct.DistanceKm, "d", 0, "path distance (km)")
	fs.Float64Var(&o.Direct.Epsilon, "epsilon", 0, "relative permittivity")
	fs.Float64Var(&o.Direct.SigmaSPerM, "sigma", 0, "conductivity (S/m)")
	fs.Func("pol", "polarization: 0/h/horizontal or 1/v/vertical", func(s string) error {
		p, err := model.ParsePolarization(s)
		if err != nil {
			return err
		}
		o.Direct.Polarization = p
		return nil
	})

	fs.StringVar(&o.Sweep, "sweep", "", "sweep distances: start,stop,points (km)")
	fs.IntVar(&o.Workers, "workers", 0, "sweep worker goroutines (0 = GOMAXPROCS)")
	return fs
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func looksLikeNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ParseArgs parses the command line. Option names are case-insensitive and
// may be given as -name value, -name=value or --name.
func ParseArgs(args []string) (Options, error) {
	var o Options
	fs := newFlagSet(&o)

	norm := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return Options{}, newError(CodeInvalidOption, arg, errors.New("unexpected argument"))
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		name = strings.ToLower(name)
		f := fs.Lookup(name)
		if f == nil {
			return Options{}, newError(CodeInvalidOption, arg, nil)
		}
		switch {
		case hasValue:
			norm = append(norm, "-"+name+"="+value)
		case isBoolFlag(f):
			norm = append(norm, "-"+name)
		case i+1 >= len(args), strings.HasPrefix(args[i+1], "-") && !looksLikeNumber(args[i+1]):
			return Options{}, newError(CodeMissingOption, "-"+name, nil)
		default:
			norm = append(norm, "-"+name, args[i+1])
			i++
		}
	}
	if err := fs.Parse(norm); err != nil {
		return Options{}, newError(CodeInvalidOption, "", err)
	}

	o.directSet = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		if _, ok := directFlags[f.Name]; ok {
			o.directSet[f.Name] = true
		}
	})
	return o, nil
}

// validate checks that the options select exactly one complete mode.
func (o Options) validate() error {
	direct := len(o.directSet) > 0
	switch {
	case o.InFile != "" && direct:
		return newError(CodeInvalidOption, "-i", errors.New("input file cannot be combined with direct inputs"))
	case o.InFile == "" && !direct:
		return newError(CodeValidationInFile, "-i", nil)
	case o.InFile != "" && o.OutFile == "":
		return newError(CodeValidationOutFile, "-o", nil)
	case o.InFile != "":
		return nil
	}

	var missing []string
	for name, key := range directFlags {
		if key == KeyDistance && o.Sweep != "" {
			continue
		}
		if !o.directSet[name] {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return newError(CodeMissingOption, strings.Join(missing, ","), nil)
	}
	return nil
}

// sweepDistances parses "start,stop,points".
func sweepDistances(arg string) ([]float64, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return nil, newError(CodeInvalidOption, "-sweep", fmt.Errorf("want start,stop,points, got %q", arg))
	}
	start, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	stop, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	n, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, newError(CodeInvalidOption, "-sweep", err)
	}
	if n <= 0 {
		return nil, newError(CodeInvalidOption, "-sweep", fmt.Errorf("points must be positive, got %d", n))
	}
	dists, err := core.Distances(start, stop, n)
	if err != nil {
		return nil, newError(CodeInvalidOption, "-sweep", err)
	}
	return dists, nil
}

// Usage prints the help text.
func Usage(w io.Writer) {
	fmt.Fprintf(w, `
Usage: %[1]s [Options]
Options (not case sensitive)
	-i       :: Input file name (*.zst is decompressed)
	-o       :: Output file name (*.zst is compressed)

Direct inputs, instead of -i (report goes to -o or stdout)
	-h_tx    :: Transmitter height, meters
	-h_rx    :: Receiver height, meters
	-f       :: Frequency, MHz
	-p       :: Transmit power, Watts
	-ns      :: Surface refractivity, N-Units
	-d       :: Path distance, km
	-epsilon :: Relative permittivity
	-sigma   :: Conductivity, S/m
	-pol     :: Polarization, 0 = horizontal, 1 = vertical

Sweep
	-sweep   :: start,stop,points in km; replaces the path distance
	-workers :: Concurrent evaluations, 0 = one per CPU

Examples:
	%[1]s -i in.txt -o results.txt
	%[1]s -h_tx 0 -h_rx 0 -f 0.01 -p 1000 -ns 301 -d 1000 -epsilon 15 -sigma 0.005 -pol 0
	%[1]s -i in.txt -o sweep.txt -sweep 10,1000,100
Other Options (which don't run the model)
	-h       :: Display this help message
	-v       :: Display program version information

`, DriverName)
}

// Driver runs the command line against an engine.
type Driver struct {
	Engine *core.Engine
	Log    logging.Logger
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// New returns a Driver on the default engine writing to the process
// streams.
func New(log logging.Logger) *Driver {
	if log == nil {
		log = logging.Noop()
	}
	return &Driver{
		Engine: core.NewEngine(),
		Log:    log,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Now:    time.Now,
	}
}

// Run executes one invocation and returns the process exit code. Engine
// failures are written into the report and still exit with CodeSuccess;
// only driver failures produce a non-zero code.
func (d *Driver) Run(ctx context.Context, args []string) Code {
	opts, err := ParseArgs(args)
	if err != nil {
		return d.fail(err, true)
	}
	if opts.Help {
		Usage(d.Stdout)
		return CodeSuccess
	}
	if opts.Version {
		WriteVersion(d.Stdout)
		return CodeSuccess
	}
	if err := opts.validate(); err != nil {
		return d.fail(err, true)
	}

	in := opts.Direct
	if opts.InFile != "" {
		if in, err = readInputFile(opts.InFile); err != nil {
			return d.fail(err, false)
		}
	}

	report := Report{Args: args, Generated: d.Now(), Input: in}
	if opts.Sweep != "" {
		dists, err := sweepDistances(opts.Sweep)
		if err != nil {
			return d.fail(err, false)
		}
		report.Distances = dists
		report.Predictions, err = d.Engine.Sweep(ctx, in, dists, opts.Workers)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return d.fail(newError(CodeInterrupted, "", err), false)
		}
		report.Code = core.CodeOf(err)
		d.logResult(ctx, report, err)
	} else {
		p, err := d.Engine.Run(in)
		report.Code = core.CodeOf(err)
		if err == nil {
			report.Predictions = []core.Prediction{p}
		}
		d.logResult(ctx, report, err)
	}

	if opts.OutFile == "" {
		if err := WriteReport(d.Stdout, report); err != nil {
			return d.fail(newError(CodeOpeningOutputFile, "stdout", err), false)
		}
		return CodeSuccess
	}

	out, err := createOutput(opts.OutFile)
	if err != nil {
		return d.fail(err, false)
	}
	werr := WriteReport(out, report)
	if cerr := out.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return d.fail(newError(CodeOpeningOutputFile, opts.OutFile, werr), false)
	}

	fmt.Fprintf(d.Stdout, "%s Return Code: %d, %s\n", LibraryName, int(report.Code), report.Code)
	if report.Code == core.Success && len(report.Distances) == 0 {
		fmt.Fprintf(d.Stdout, "Basic transmission loss: %.2f\n", report.Predictions[0].ABtlDB)
	}
	return CodeSuccess
}

func readInputFile(path string) (model.Input, error) {
	r, err := openInput(path)
	if err != nil {
		return model.Input{}, err
	}
	defer r.Close()
	return ParseInput(r)
}

func (d *Driver) fail(err error, usage bool) Code {
	fmt.Fprintln(d.Stderr, err)
	if usage {
		Usage(d.Stderr)
	}
	return CodeOf(err)
}

func (d *Driver) logResult(ctx context.Context, r Report, err error) {
	if err != nil {
		d.Log.Warn(ctx, "prediction failed",
			logging.Int("return_code", int(r.Code)),
			logging.Err(err),
		)
		return
	}
	d.Log.Debug(ctx, "prediction complete",
		logging.Int("points", len(r.Predictions)),
		logging.Float64("f_mhz", r.Input.FrequencyMHz),
	)
}
