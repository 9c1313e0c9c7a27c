// Command sedinfo builds observer-frame SEDs from tophat rest-frame
// luminosities and prints their normalisation, shape and AB magnitudes.
//
// Usage:
//
//	sedinfo -config catalog.yaml [flags]
//
// A single object is described with -flat or -tophat plus -zh, -z and -av.
// With -size, the disk's light profile is printed too.
// With -batch, JSON-lines objects are read from a file (or "-" for stdin)
// and summarised as JSON lines on stdout.
//
// Examples:
//
//	sedinfo -config cosmodc2.yaml -flat 1e40 -zh 0.5
//	sedinfo -config cosmodc2.yaml -flat 1e40 -zh 0.5 -av 0.2 -bands ./throughputs
//	sedinfo -config cosmodc2.yaml -batch objects.jsonl -workers 8 -metrics sed.prom
//	sedinfo -laws
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-sed/config"
	"github.com/cwbudde/algo-sed/internal/batch"
	"github.com/cwbudde/algo-sed/internal/logging"
	"github.com/cwbudde/algo-sed/internal/observability"
	"github.com/cwbudde/algo-sed/measure/photometry"
	"github.com/cwbudde/algo-sed/sed/core"
	"github.com/cwbudde/algo-sed/sed/dust"
	"github.com/cwbudde/algo-sed/source"
	"github.com/cwbudde/algo-sed/stats/spectral"
)

// errUsage marks flag errors; main exits with status 2 for them.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	flat       float64
	tophat     string
	zh, z, av  float64
	shear      [3]float64
	size       [2]float64 // major, minor
	ellip      [2]float64
	sersic     float64
	bands      string
	batchPath  string
	workers    int
	metrics    string
	laws       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("sedinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "catalog configuration YAML (required unless -laws)")
	fs.Float64Var(&o.flat, "flat", 0, "flat rest-frame tophat luminosity in every bin")
	fs.StringVar(&o.tophat, "tophat", "", "comma-separated rest-frame tophat luminosities")
	fs.Float64Var(&o.zh, "zh", 0.1, "cosmological (Hubble) redshift")
	fs.Float64Var(&o.z, "z", math.NaN(), "observed redshift (defaults to -zh)")
	fs.Float64Var(&o.av, "av", 0, "Milky Way A(V)")
	fs.Float64Var(&o.shear[0], "shear1", 0, "lensing shear component 1")
	fs.Float64Var(&o.shear[1], "shear2", 0, "lensing shear component 2")
	fs.Float64Var(&o.shear[2], "kappa", 0, "lensing convergence")
	fs.Float64Var(&o.size[0], "size", 0, "disk major-axis half-light size in arcsec (prints the profile)")
	fs.Float64Var(&o.size[1], "size-minor", math.NaN(), "disk minor-axis size in arcsec (defaults to -size)")
	fs.Float64Var(&o.ellip[0], "e1", 0, "disk ellipticity component 1")
	fs.Float64Var(&o.ellip[1], "e2", 0, "disk ellipticity component 2")
	fs.Float64Var(&o.sersic, "sersic", 1, "disk Sersic index")
	fs.StringVar(&o.bands, "bands", "", "directory of *.dat bandpass files for AB magnitudes")
	fs.StringVar(&o.batchPath, "batch", "", "JSON-lines object file to process (\"-\" for stdin)")
	fs.IntVar(&o.workers, "workers", 0, "batch workers (default GOMAXPROCS)")
	fs.StringVar(&o.metrics, "metrics", "", "write Prometheus metrics to this textfile after a batch run")
	fs.BoolVar(&o.laws, "laws", false, "print A(λ)/A(V) of every dust law and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: sedinfo -config catalog.yaml [flags]\n\n")
		fmt.Fprintf(stderr, "Builds observer-frame SEDs from tophat luminosities.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return o, err
		}
		return o, errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "error: unexpected arguments %q\n", fs.Args())
		return o, errUsage
	}
	if !o.laws && o.configPath == "" {
		fmt.Fprintf(stderr, "error: -config is required\n")
		return o, errUsage
	}
	if o.flat != 0 && o.tophat != "" {
		fmt.Fprintf(stderr, "error: -flat and -tophat are exclusive\n")
		return o, errUsage
	}
	if math.IsNaN(o.z) {
		o.z = o.zh
	}
	if math.IsNaN(o.size[1]) {
		o.size[1] = o.size[0]
	}
	return o, nil
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.laws {
		return printLaws(stdout)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	cfg.Resolve(getenv)
	session, err := cfg.NewSession(nil)
	if err != nil {
		return err
	}

	var conv *photometry.Converter
	if o.bands != "" {
		bps, err := photometry.LoadBandpasses(os.DirFS(o.bands), "*.dat")
		if err != nil {
			return err
		}
		if conv, err = photometry.NewConverter(bps); err != nil {
			return err
		}
	}

	if o.batchPath != "" {
		return runBatch(ctx, o, session, conv, getenv, stdin, stdout, stderr)
	}
	return runSingle(o, session, conv, stdout)
}

func runBatch(ctx context.Context, o options, session *source.Session, conv *photometry.Converter,
	getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer,
) error {
	in := stdin
	if o.batchPath != "-" {
		f, err := os.Open(o.batchPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	records, err := batch.ReadRecords(in)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return err
	}
	runner := &batch.Runner{
		Session:   session,
		Converter: conv,
		Logger: logging.New(logging.Config{
			Level:  getenv("LOG_LEVEL"),
			Format: getenv("LOG_FORMAT"),
			Output: stderr,
		}),
		Metrics: metrics,
		Workers: o.workers,
	}
	results, err := runner.Run(ctx, records)
	if err != nil {
		return err
	}
	if err := batch.WriteResults(stdout, results); err != nil {
		return err
	}
	if o.metrics != "" {
		return prometheus.WriteToTextfile(o.metrics, reg)
	}
	return nil
}

func runSingle(o options, session *source.Session, conv *photometry.Converter, stdout io.Writer) error {
	n := session.Factory().Geometry().Len()
	lnu, err := tophatValues(o, n)
	if err != nil {
		return err
	}

	attrs := source.MapAttributes{
		"sed_val_disk":    lnu,
		"redshift_hubble": o.zh,
		"redshift":        o.z,
		"MW_av":           o.av,
		"shear_1":         o.shear[0],
		"shear_2":         o.shear[1],
		"convergence":     o.shear[2],
	}
	if o.size[0] > 0 {
		attrs["size_disk_true"] = o.size[0]
		attrs["size_minor_disk_true"] = o.size[1]
		attrs["ellipticity_1_disk_true"] = o.ellip[0]
		attrs["ellipticity_2_disk_true"] = o.ellip[1]
		attrs["sersic_disk"] = o.sersic
	}
	gal := source.NewGalaxy("cli", attrs, session)
	emissions, err := gal.Emissions()
	if err != nil {
		return err
	}
	if len(emissions) == 0 {
		_, err := fmt.Fprintln(stdout, "no emission: every tophat value is zero")
		return err
	}

	var bands []string
	if conv != nil {
		bands = conv.Bands()
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	header := []string{"Component", "mag_norm", "Blue [nm]", "Red [nm]", "Centroid [nm]", "FWHM [nm]", "Peak [nm]"}
	header = append(header, bands...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, e := range emissions {
		st, err := spectral.FromSpectrum(e.SED, 0)
		if err != nil {
			return err
		}
		row := []string{
			e.Component,
			fmt.Sprintf("%.4f", e.MagNorm),
			fmt.Sprintf("%.1f", st.Blue),
			fmt.Sprintf("%.1f", st.Red),
			fmt.Sprintf("%.1f", st.Centroid),
			fmt.Sprintf("%.1f", st.FWHM),
			fmt.Sprintf("%.1f", st.PeakWavelength),
		}
		for _, b := range bands {
			mag, err := conv.SpectrumMagnitude(e.SED, b)
			if err != nil {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.4f", mag))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if o.size[0] > 0 {
		profiles, err := gal.Profiles(source.Disk)
		if err != nil {
			return err
		}
		p := profiles[source.Disk]
		if _, err := fmt.Fprintf(stdout, "profile: %s %s n=%.2f hlr=%.4f g1=%.4f g2=%.4f\n",
			p.Component, p.Kind, p.SersicIndex, p.HalfLightRadius, p.Shear1, p.Shear2); err != nil {
			return err
		}
	}
	if o.shear != ([3]float64{}) {
		lens, err := gal.Lensing()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "lensing: g1=%.4f g2=%.4f |g|=%.4f mu=%.4f dmag=%.4f\n",
			lens.G1, lens.G2, lens.G(), lens.Mu, lens.MagnitudeShift())
		return err
	}
	return nil
}

func tophatValues(o options, n int) ([]float64, error) {
	if o.tophat == "" {
		out := make([]float64, n)
		for i := range out {
			out[i] = o.flat
		}
		return out, nil
	}
	fields := strings.Split(o.tophat, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("-tophat: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// lawWavelengths are the sample points of -laws, in nm.
var lawWavelengths = []float64{150, 217.5, 300, 365, 445, 551, 658, 806, 1220, 2190}

func printLaws(stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Law\tRv")
	for _, nm := range lawWavelengths {
		fmt.Fprintf(tw, "\t%g nm", nm)
	}
	fmt.Fprintln(tw)

	for _, family := range []dust.Family{dust.FamilyF99, dust.FamilyCCM89, dust.FamilyOD94} {
		law, err := dust.New(family, dust.DefaultRv)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%.1f", law.Name(), law.Rv())
		for _, nm := range lawWavelengths {
			lo, hi := law.WaveRange()
			if nm < lo || nm > hi {
				fmt.Fprintf(tw, "\t-")
				continue
			}
			fmt.Fprintf(tw, "\t%.3f", law.AlAv(core.NMToInverseMicron(nm)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
