// Fuzzy vehicle control

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/fuzzy-control/base/zaplog"
	"example.com/fuzzy-control/benchmark"
	"example.com/fuzzy-control/core/config"
	"example.com/fuzzy-control/core/control"
	"example.com/fuzzy-control/core/diag"
	"example.com/fuzzy-control/core/fuzzy"
	"example.com/fuzzy-control/core/trace"
	"example.com/fuzzy-control/driver/sim"
)

const configEnv = "FUZZYCTL_CONFIG"

type options struct {
	verbose    bool
	configFile string

	cycles   uint64
	readings map[string]string

	goroutines      int
	cyclesPerWorker int
}

func loadConfig(configFile string) (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

func runMonitor(log *zap.Logger, addr string) {
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, nil)
	log.Fatal("failed to serve metrics", zap.Error(err))
}

func newVehicles(log *zap.Logger, n int) []control.Vehicle {
	vs := make([]control.Vehicle, n)
	for i := range vs {
		// Spread the initial heading errors across the reference domain.
		heading := -12.0
		if n > 1 {
			heading += 24.0 * float64(i) / float64(n-1)
		}
		id := uuid.New()
		car := sim.NewVehicle(log.With(zap.Stringer("vehicle", id)), 0, heading)
		vs[i] = control.Vehicle{ID: id, Sensor: car, Actuator: car}
	}
	return vs
}

func runControl(ctx context.Context, log *zap.Logger, opts *options) {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	e, err := cfg.Engine()
	if err != nil {
		log.Fatal("failed to build engine", zap.Error(err))
	}
	interval, err := cfg.Loop.IntervalDuration()
	if err != nil {
		log.Fatal("invalid loop interval", zap.Error(err))
	}

	loop := &control.Loop{
		Log:      log,
		Source:   control.NewSource(e),
		Interval: interval,
		Cycles:   opts.cycles,
	}
	if cfg.Loop.TraceDB != "" {
		r, err := trace.Open(cfg.Loop.TraceDB)
		if err != nil {
			log.Fatal("failed to open trace database", zap.Error(err))
		}
		defer r.Close()
		loop.Recorder = r
	}

	go runMonitor(log, cfg.Loop.MetricsAddress())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.RunFleet(ctx, newVehicles(log, cfg.Loop.NumVehicles()))
	})
	if opts.configFile != "" {
		g.Go(func() error {
			err := config.Watch(ctx, log, opts.configFile, loop.Source.Store)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("control loop failed", zap.Error(err))
	}
}

func parseReadings(raw map[string]string) (fuzzy.Readings, error) {
	r := make(fuzzy.Readings, len(raw))
	for axis, s := range raw {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", axis, err)
		}
		r[axis] = x
	}
	return r, nil
}

func runEval(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	e, err := cfg.Engine()
	if err != nil {
		return err
	}
	r, err := parseReadings(opts.readings)
	if err != nil {
		return err
	}
	c := e.NewCycle()
	e.Evaluate(r, c)

	var b strings.Builder
	diag.WriteCycle(&b, e, c)
	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}

func runCheck(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	e, err := cfg.Engine()
	if err != nil {
		return err
	}
	n := 0
	for _, rs := range e.Outputs() {
		n += len(rs.Rules())
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration ok: %d inputs, %d outputs, %d rules\n",
		len(e.Inputs()), len(e.Outputs()), n)
	return err
}

func runBenchmark(cmd *cobra.Command, log *zap.Logger, opts *options) error {
	if opts.goroutines <= 0 || opts.cyclesPerWorker <= 0 {
		return errors.New("goroutines and cycles must be positive")
	}
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	e, err := cfg.Engine()
	if err != nil {
		return err
	}
	r := benchmark.Run(log, e, opts.goroutines, opts.cyclesPerWorker)
	w := cmd.OutOrStdout()
	if err := r.WriteSummary(w); err != nil {
		return err
	}
	if opts.verbose {
		return r.WritePercentiles(w)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "fuzzyctl",
		Short:         "Fuzzy logic vehicle control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := zaplog.New(opts.verbose)
			if err != nil {
				return err
			}
			zaplog.SetLogger(log)
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Verbose logging")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv(configEnv),
		"Config file (.toml, .yaml or .yml); the built-in reference tuning if empty")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Drive simulated vehicles with the configured engine",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			runControl(ctx, zaplog.Logger(), opts)
		},
	}
	runCmd.Flags().Uint64Var(&opts.cycles, "cycles", 0, "Cycles per vehicle, 0 for unbounded")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one cycle and print the engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts)
		},
	}
	evalCmd.Flags().StringToStringVarP(&opts.readings, "reading", "r", nil,
		"Sensor reading as axis=value, repeatable")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure evaluation latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, zaplog.Logger(), opts)
		},
	}
	benchCmd.Flags().IntVar(&opts.goroutines, "goroutines", 1, "Number of goroutines")
	benchCmd.Flags().IntVar(&opts.cyclesPerWorker, "cycles", 1_000_000, "Cycles per goroutine")

	rootCmd.AddCommand(runCmd, evalCmd, checkCmd, benchCmd)
	return rootCmd
}

func main() {
	_ = godotenv.Load(".env")
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
