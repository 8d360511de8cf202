// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/matkernels/pkg/simd"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RenderTable renders the rows as a table, one line per measurement.
func RenderTable(rows []Row) string {
	table := newStyledTable(
		[]string{"Experiment", "Kernel", "Label", "N", "Mean (ms)", "StdDev (ms)", "Runs"},
		lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right)
	for _, row := range rows {
		table.row(false, row.Experiment, row.Kernel, row.Label, humanize.Comma(int64(row.N)),
			fmt.Sprintf("%.3f", row.MeanMS), fmt.Sprintf("%.3f", row.StdDevMS), fmt.Sprint(row.Runs))
	}
	return table.render()
}

// Host describes the machine the measurements were taken on.
type Host struct {
	GOOS        string    `json:"goos"`
	GOARCH      string    `json:"goarch"`
	NumCPU      int       `json:"num_cpu"`
	CPUFeatures []string  `json:"cpu_features"`
	SIMDKernel  string    `json:"simd_kernel"`
	Caches      CacheInfo `json:"caches"`
}

// CurrentHost returns the description of this machine, with the given cache sizes.
func CurrentHost(caches CacheInfo) Host {
	return Host{
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
		CPUFeatures: cpuFeatures(),
		SIMDKernel:  simd.Best().Name(),
		Caches:      caches,
	}
}

// cpuFeatures lists the CPU features relevant to the SIMD kernels.
func cpuFeatures() []string {
	var features []string
	add := func(has bool, name string) {
		if has {
			features = append(features, name)
		}
	}
	add(cpu.X86.HasSSE2, "sse2")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasFPHP, "fphp")
	add(cpu.ARM64.HasSVE, "sve")
	return features
}

// Report is the machine-readable result of a benchmark session.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Host      Host      `json:"host"`
	Suite     Suite     `json:"suite"`
	BlockSize int       `json:"block_size"`
	Rows      []Row     `json:"rows"`
}

// NewReport creates a report with a new random run id, for the environment of a runner.
func NewReport(env *Env, startedAt time.Time, rows []Row) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: startedAt,
		Host:      CurrentHost(env.Caches),
		Suite:     env.Suite,
		BlockSize: env.BlockSize,
		Rows:      rows,
	}
}

// WriteJSON writes the report, indented, to the given path.
func (r *Report) WriteJSON(path string) error {
	contents, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling report to JSON")
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return errors.Wrapf(err, "writing report to %q", path)
	}
	return nil
}

// ReadReport reads a report written with Report.WriteJSON.
func ReadReport(path string) (*Report, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading report from %q", path)
	}
	r := &Report{}
	if err := json.Unmarshal(contents, r); err != nil {
		return nil, errors.Wrapf(err, "parsing report from %q", path)
	}
	return r, nil
}

// seriesName identifies the line a row belongs to in a plot.
func seriesName(row Row) string {
	if row.Label == "" {
		return row.Kernel
	}
	return row.Kernel + " " + row.Label
}

// WritePlot plots the mean time against N of each kernel (and label) of one experiment, and saves it to path.
// The image format is taken from the path extension (".png", ".svg", ".pdf", ...).
func WritePlot(path string, rows []Row, experiment string) error {
	series := make(map[string]plotter.XYs)
	var names []string
	for _, row := range rows {
		if row.Experiment != experiment {
			continue
		}
		name := seriesName(row)
		if _, found := series[name]; !found {
			names = append(names, name)
		}
		series[name] = append(series[name], plotter.XY{X: float64(row.N), Y: row.MeanMS})
	}
	if len(names) == 0 {
		return errors.Errorf("no rows for experiment %q to plot", experiment)
	}

	p := plot.New()
	p.Title.Text = experiment
	p.X.Label.Text = "N"
	p.Y.Label.Text = "mean time (ms)"
	p.Legend.Top = true
	var lines []any
	for _, name := range names {
		xys := series[name]
		slices.SortFunc(xys, func(a, b plotter.XY) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			}
			return 0
		})
		lines = append(lines, name, xys)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrapf(err, "plotting experiment %q", experiment)
	}
	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving plot of experiment %q to %q", experiment, path)
	}
	return nil
}

// PlotPath returns the path of the plot of an experiment, given the base path passed by the user:
// the experiment name is inserted before the extension, "out.png" becomes "out-linalg.png".
func PlotPath(base, experiment string) string {
	ext := ".png"
	if idx := strings.LastIndex(base, "."); idx > strings.LastIndex(base, string(os.PathSeparator)) {
		base, ext = base[:idx], base[idx:]
	}
	return base + "-" + experiment + ext
}
