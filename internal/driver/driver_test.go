package driver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/model"
)

// lowFrequencyInputs is a 10 kHz path over 1000 km of average ground.
const lowFrequencyInputs = "h_tx__meter,0\nh_rx__meter,0\nf__mhz,0.01\nP_tx__watt,1000\n\nN_s,301\nd__km,1000\nepsilon,15\nsigma,0.005\npol,0\n"

func newTestDriver() (*Driver, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	d := New(nil)
	d.Stdout = &stdout
	d.Stderr = &stderr
	d.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return d, &stdout, &stderr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	return string(data)
}

func TestParseInput(t *testing.T) {
	in, err := ParseInput(strings.NewReader(lowFrequencyInputs))
	if err != nil {
		t.Fatalf("ParseInput error: %v", err)
	}
	want := model.Input{
		FrequencyMHz: 0.01, TxPowerW: 1000, SurfaceRefractivity: 301,
		DistanceKm: 1000, Epsilon: 15, SigmaSPerM: 0.005,
		Polarization: model.PolarizationHorizontal,
	}
	if in != want {
		t.Fatalf("ParseInput = %+v, want %+v", in, want)
	}

	in, err = ParseInput(strings.NewReader(lowFrequencyInputs + "POL, V\n"))
	if err != nil || in.Polarization != model.PolarizationVertical {
		t.Fatalf("repeated pol = %v, %v", in.Polarization, err)
	}
}

func TestParseInputErrors(t *testing.T) {
	tests := []struct {
		inputs string
		want   Code
	}{
		{"unknown_param,0.0", CodeParse},
		{"h_tx__meter", CodeParse},
		{"h_tx__meter,invalid", CodeParseTxTerminalHeight},
		{"h_rx__meter,invalid", CodeParseRxTerminalHeight},
		{"f__mhz,invalid", CodeParseFrequency},
		{"P_tx__watt,invalid", CodeParseTxPower},
		{"N_s,invalid", CodeParseSurfaceRefractivity},
		{"d__km,invalid", CodeParsePathDistance},
		{"epsilon,invalid", CodeParseEpsilon},
		{"sigma,invalid", CodeParseSigma},
		{"pol,invalid", CodeParsePolarization},
		{"pol,0\nf__mhz,1", CodeParse},
	}
	for _, tt := range tests {
		_, err := ParseInput(strings.NewReader(tt.inputs))
		if got := CodeOf(err); got != tt.want {
			t.Fatalf("ParseInput(%q) code = %d, want %d (%v)", tt.inputs, got, tt.want, err)
		}
	}
}

func TestMissingKeysNamed(t *testing.T) {
	_, err := ParseInput(strings.NewReader("f__mhz,1\n"))
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a driver error", err)
	}
	if !strings.Contains(de.Key, KeySigma) || strings.Contains(de.Key, KeyFrequency) {
		t.Fatalf("missing keys = %q", de.Key)
	}
}

func TestParseArgs(t *testing.T) {
	opts, err := ParseArgs([]string{"-I", "in.txt", "--O=out.txt", "-Sweep", "1,10,5"})
	if err != nil {
		t.Fatalf("ParseArgs error: %v", err)
	}
	if opts.InFile != "in.txt" || opts.OutFile != "out.txt" || opts.Sweep != "1,10,5" {
		t.Fatalf("ParseArgs = %+v", opts)
	}

	opts, err = ParseArgs([]string{"-d", "-5", "-pol", "vertical"})
	if err != nil {
		t.Fatalf("ParseArgs negative value error: %v", err)
	}
	if opts.Direct.DistanceKm != -5 || opts.Direct.Polarization != model.PolarizationVertical {
		t.Fatalf("direct = %+v", opts.Direct)
	}

	tests := []struct {
		args []string
		want Code
	}{
		{[]string{"-x"}, CodeInvalidOption},
		{[]string{"stray"}, CodeInvalidOption},
		{[]string{"-i"}, CodeMissingOption},
		{[]string{"-i", "-o", "out.txt"}, CodeMissingOption},
		{[]string{"-f", "fast"}, CodeInvalidOption},
		{[]string{"-pol", "circular"}, CodeInvalidOption},
	}
	for _, tt := range tests {
		if _, err := ParseArgs(tt.args); CodeOf(err) != tt.want {
			t.Fatalf("ParseArgs(%v) code = %d, want %d (%v)", tt.args, CodeOf(err), tt.want, err)
		}
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		args []string
		want Code
	}{
		{nil, CodeValidationInFile},
		{[]string{"-i", "in.txt"}, CodeValidationOutFile},
		{[]string{"-i", "in.txt", "-o", "out.txt", "-f", "1"}, CodeInvalidOption},
		{[]string{"-f", "1", "-d", "10"}, CodeMissingOption},
		{[]string{"-i", "does-not-exist.txt", "-o", "out.txt"}, CodeOpeningInputFile},
	}
	for _, tt := range tests {
		d, _, stderr := newTestDriver()
		if got := d.Run(context.Background(), tt.args); got != tt.want {
			t.Fatalf("Run(%v) = %d, want %d (stderr %q)", tt.args, got, tt.want, stderr.String())
		}
		if !strings.Contains(stderr.String(), DriverName+" Error") {
			t.Fatalf("Run(%v) stderr = %q", tt.args, stderr.String())
		}
	}
}

func TestRunHelpAndVersion(t *testing.T) {
	d, stdout, _ := newTestDriver()
	if got := d.Run(context.Background(), []string{"-h"}); got != CodeSuccess {
		t.Fatalf("-h = %d", got)
	}
	if !strings.Contains(stdout.String(), "Usage: "+DriverName) {
		t.Fatalf("help output = %q", stdout.String())
	}

	d, stdout, _ = newTestDriver()
	if got := d.Run(context.Background(), []string{"--VERSION"}); got != CodeSuccess {
		t.Fatalf("--version = %d", got)
	}
	if !strings.Contains(stdout.String(), "Driver v"+DriverVersion.String()) {
		t.Fatalf("version output = %q", stdout.String())
	}
}

func TestRunInputFile(t *testing.T) {
	in := writeFile(t, "in.txt", lowFrequencyInputs)
	out := filepath.Join(t.TempDir(), "out.txt")

	d, stdout, _ := newTestDriver()
	if got := d.Run(context.Background(), []string{"-i", in, "-o", out}); got != CodeSuccess {
		t.Fatalf("Run = %d", got)
	}
	if !strings.Contains(stdout.String(), "Basic transmission loss: 184.49") {
		t.Fatalf("stdout = %q", stdout.String())
	}

	report := readFile(t, out)
	for _, want := range []string{
		"Model                         LFMF",
		"Date Generated                Fri Mar  1 12:00:00 2024",
		"-i " + in + " -o " + out,
		"f__mhz                   0.01",
		"[Successful execution]",
		"184.489",
		"-82.503",
		"-114.933",
		"[Residue series]",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRunReportsEngineFailure(t *testing.T) {
	in := writeFile(t, "in.txt", strings.Replace(lowFrequencyInputs, "d__km,1000", "d__km,-1", 1))
	out := filepath.Join(t.TempDir(), "out.txt")

	d, stdout, _ := newTestDriver()
	if got := d.Run(context.Background(), []string{"-i", in, "-o", out}); got != CodeSuccess {
		t.Fatalf("Run = %d", got)
	}
	if !strings.Contains(stdout.String(), "Return Code: 37") {
		t.Fatalf("stdout = %q", stdout.String())
	}
	report := readFile(t, out)
	if !strings.Contains(report, "["+core.ErrorValidationPathDistance.String()+"]") {
		t.Fatalf("report lacks failure status:\n%s", report)
	}
	if strings.Contains(report, "Basic transmission loss") {
		t.Fatalf("report has results for a failed prediction:\n%s", report)
	}
}

func TestRunCompressedFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt.zst")
	out := filepath.Join(dir, "out.txt.zst")

	f, err := os.Create(in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}
	if _, err := io.WriteString(enc, lowFrequencyInputs); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close error: %v", err)
	}
	_ = f.Close()

	d, _, stderr := newTestDriver()
	if got := d.Run(context.Background(), []string{"-i", in, "-o", out}); got != CodeSuccess {
		t.Fatalf("Run = %d (%s)", got, stderr.String())
	}

	rf, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer rf.Close()
	dec, err := zstd.NewReader(rf)
	if err != nil {
		t.Fatalf("NewReader error: %v", err)
	}
	defer dec.Close()
	report, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if !strings.Contains(string(report), "184.489") {
		t.Fatalf("decompressed report:\n%s", report)
	}
}

func TestRunOutputFileError(t *testing.T) {
	in := writeFile(t, "in.txt", lowFrequencyInputs)
	out := filepath.Join(t.TempDir(), "missing-dir", "out.txt")

	d, _, _ := newTestDriver()
	if got := d.Run(context.Background(), []string{"-i", in, "-o", out}); got != CodeOpeningOutputFile {
		t.Fatalf("Run = %d, want %d", got, CodeOpeningOutputFile)
	}
}

func TestRunDirectSweep(t *testing.T) {
	d, stdout, stderr := newTestDriver()
	args := []string{
		"-h_tx", "50", "-h_rx", "10", "-f", "0.3", "-p", "1000", "-ns", "301",
		"-epsilon", "15", "-sigma", "0.005", "-pol", "h", "-sweep", "10,1000,3", "-workers", "2",
	}
	if got := d.Run(context.Background(), args); got != CodeSuccess {
		t.Fatalf("Run = %d (%s)", got, stderr.String())
	}

	report := stdout.String()
	if !strings.Contains(report, "3 points") {
		t.Fatalf("report lacks sweep size:\n%s", report)
	}
	var rows []string
	for _, l := range strings.Split(report, "\n") {
		if strings.HasSuffix(l, "flat_earth") || strings.HasSuffix(l, "residue_series") {
			rows = append(rows, l)
		}
	}
	if len(rows) != 3 {
		t.Fatalf("sweep rows = %d:\n%s", len(rows), report)
	}
	if !strings.HasPrefix(rows[0], "10 ") || !strings.Contains(rows[0], "106.051") {
		t.Fatalf("first row = %q", rows[0])
	}
	if !strings.HasPrefix(rows[2], "1000 ") || !strings.Contains(rows[2], "220.522") {
		t.Fatalf("last row = %q", rows[2])
	}
}

func TestRunRejectsBadSweep(t *testing.T) {
	in := writeFile(t, "in.txt", lowFrequencyInputs)
	d, _, _ := newTestDriver()
	got := d.Run(context.Background(), []string{"-i", in, "-o", filepath.Join(t.TempDir(), "o.txt"), "-sweep", "1,2"})
	if got != CodeInvalidOption {
		t.Fatalf("Run = %d, want %d", got, CodeInvalidOption)
	}
}

func TestRunRejectsOversizedSweep(t *testing.T) {
	in := writeFile(t, "in.txt", lowFrequencyInputs)
	d, _, stderr := newTestDriver()
	got := d.Run(context.Background(), []string{"-i", in, "-o", filepath.Join(t.TempDir(), "o.txt"), "-sweep", "1,100,1000000000000000"})
	if got != CodeInvalidOption {
		t.Fatalf("Run = %d, want %d", got, CodeInvalidOption)
	}
	if !strings.Contains(stderr.String(), "too many sweep points") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunCancelledSweepIsNotAnEngineFailure(t *testing.T) {
	in := writeFile(t, "in.txt", lowFrequencyInputs)
	out := filepath.Join(t.TempDir(), "o.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _, stderr := newTestDriver()
	if got := d.Run(ctx, []string{"-i", in, "-o", out, "-sweep", "1,100,5"}); got != CodeInterrupted {
		t.Fatalf("Run = %d, want %d (%s)", got, CodeInterrupted, stderr.String())
	}
	if strings.Contains(stderr.String(), core.ErrorNumericalInstability.String()) {
		t.Fatalf("cancellation reported as instability: %q", stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("report written for cancelled run: %v", err)
	}
}

func TestCodeStrings(t *testing.T) {
	if CodeValidationOutFile.String() != "Option -o is required but was not provided" {
		t.Fatalf("CodeValidationOutFile = %q", CodeValidationOutFile.String())
	}
	if Code(4242).String() != "Undefined return code 4242" {
		t.Fatalf("unknown code = %q", Code(4242).String())
	}
	if CodeOf(nil) != CodeSuccess || CodeOf(errors.New("x")) != CodeParse {
		t.Fatalf("CodeOf mapping")
	}
}
