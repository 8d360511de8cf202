// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// matbench measures the dense matrix kernels of github.com/gomlx/matkernels/pkg/kernels.
//
// By default it runs all experiments with the default suite and prints a table with the mean and standard
// deviation of each measurement. See -help for the flags, and bench.Suite for the YAML configuration
// accepted by -config.
//
// Example:
//
//	matbench -experiments=optimization -sizes=256,512 -runs=3 -json=results.json -plot=results.png
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gomlx/matkernels/pkg/bench"
	"github.com/gomlx/matkernels/pkg/simd"
	"github.com/gomlx/matkernels/pkg/support/fsutil"
	"github.com/gomlx/matkernels/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagExperiments = xslices.StringsFlag("experiments", nil,
		fmt.Sprintf("Comma-separated list of experiments to run, from %v. Default is all of them.", bench.ExperimentNames()))
	flagConfig = flag.String("config", "", "YAML file with the benchmark suite configuration. "+
		"Flags explicitly set take precedence over its values.")
	flagRuns     = flag.Int("runs", 0, "Number of timed runs per measurement. Default is 5.")
	flagSizes    = xslices.IntsFlag("sizes", nil, "Comma-separated sizes of the square matrices. Default is 256,512,1024.")
	flagBlock    = flag.Int("block", 0, "Block size of the tiled kernels. If 0 it is derived from the L1 data cache size.")
	flagWorkers  = flag.Int("workers", 0, "Workers of the parallel kernel: 0 for GOMAXPROCS, -1 for unlimited.")
	flagSeed     = flag.Uint64("seed", 0, "Seed for the random matrices. Default is 1.")
	flagJSON     = flag.String("json", "", "If set, the report is written in JSON format to this file.")
	flagPlot     = flag.String("plot", "", "If set, one plot per experiment is saved using this path as a base: out.png becomes out-linalg.png, etc.")
	flagProgress = flag.Bool("progress", true, "Display a progress bar while measuring.")
	flagValidate = flag.Bool("validate", false, "Check the results of every kernel variant, print a pass/fail table and exit.")
	flagPrint    = flag.Bool("print_config", false, "Print the resulting suite configuration in YAML and exit.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Exitf("Unexpected arguments %q. See 'matbench -help'.", flag.Args())
	}

	suite, err := buildSuite()
	if err != nil {
		klog.Exitf("Invalid configuration: %+v", err)
	}
	if *flagPrint {
		fmt.Print(string(must.M1(suite.Marshal())))
		return
	}
	runner, err := bench.NewRunner(suite)
	if err != nil {
		klog.Exitf("Invalid configuration: %v", err)
	}
	env := runner.Env()
	fmt.Printf("Caches: %s, block size: %d, workers: %d, SIMD: %s (available: %s)\n",
		env.Caches, env.BlockSize, env.Pool.MaxParallelism(), simd.Best().Name(), strings.Join(simd.Names(), ", "))

	if *flagValidate {
		checks := bench.RunChecks(env.BlockSize, env.Pool, suite.Seed)
		fmt.Println(bench.TitleStyle.Render("Kernel Checks"))
		fmt.Println(bench.RenderChecks(checks))
		if !bench.AllPassed(checks) {
			os.Exit(1)
		}
		return
	}

	// The first Ctrl+C stops after the current measurement, and the results so far are reported.
	// A second one is handled by the default handler.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		signal.Stop(interrupt)
		klog.Warning("Interrupted: stopping after the current measurement, press Ctrl+C again to abort.")
		runner.Stop()
	}()

	if *flagProgress {
		runner.Progress = os.Stderr
	}
	startedAt := time.Now()
	rows, runErr := runner.Run()
	if runErr != nil {
		klog.Errorf("Benchmark failed: %+v", runErr)
	}
	if len(rows) > 0 {
		fmt.Println(bench.TitleStyle.Render("Results"))
		fmt.Println(bench.RenderTable(rows))
	}
	if err := writeOutputs(bench.NewReport(env, startedAt, rows)); err != nil {
		klog.Exitf("Failed to write results: %+v", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// buildSuite starts from the -config file (or the default suite) and overrides the values of the flags set.
func buildSuite() (bench.Suite, error) {
	suite := bench.DefaultSuite()
	if *flagConfig != "" {
		path, err := fsutil.ExpandHome(*flagConfig)
		if err != nil {
			return suite, err
		}
		suite, err = bench.LoadSuite(path)
		if err != nil {
			return suite, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "experiments":
			suite.Experiments = *flagExperiments
		case "runs":
			suite.Runs = *flagRuns
		case "sizes":
			suite.Sizes = *flagSizes
		case "block":
			suite.BlockSize = *flagBlock
		case "workers":
			suite.Workers = *flagWorkers
		case "seed":
			suite.Seed = *flagSeed
		}
	})
	return suite, suite.Validate()
}

func writeOutputs(report *bench.Report) error {
	if *flagJSON != "" {
		path, err := fsutil.PrepareOutput(*flagJSON)
		if err != nil {
			return err
		}
		if err := report.WriteJSON(path); err != nil {
			return err
		}
		fmt.Printf("Report %s written to %q\n", report.RunID, path)
	}
	if *flagPlot != "" {
		base, err := fsutil.PrepareOutput(*flagPlot)
		if err != nil {
			return err
		}
		for _, experiment := range report.Suite.Experiments {
			path := bench.PlotPath(base, experiment)
			if err := bench.WritePlot(path, report.Rows, experiment); err != nil {
				// Experiments interrupted before any measurement have nothing to plot.
				klog.Warningf("Skipping plot: %v", err)
				continue
			}
			fmt.Printf("Plot of %q written to %q\n", experiment, path)
		}
	}
	return nil
}
