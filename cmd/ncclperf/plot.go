// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ncclperf/ncclperf/ncclchart"
	"github.com/ncclperf/ncclperf/ncclfmt"
	"github.com/ncclperf/ncclperf/ncclstat"
	"github.com/ncclperf/ncclperf/nccltab"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

func newPlotCmd(e *env) *cobra.Command {
	var cfgFile string
	flags := defaultPlotConfig()
	cmd := &cobra.Command{
		Use:   "plot dir",
		Short: "Chart bandwidth against message size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet(cmd)
			cfg, err := loadPlotConfig(cfgFile)
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if fs.Changed("nodes") {
				cfg.Nodes = flags.Nodes
			}
			if fs.Changed("metric") {
				cfg.Metric = flags.Metric
			}
			if fs.Changed("out") {
				cfg.OutDir = flags.OutDir
			}
			if fs.Changed("format") {
				cfg.Formats = flags.Formats
			}
			if fs.Changed("matrix") {
				cfg.Matrix = flags.Matrix
			}
			if fs.Changed("html") {
				cfg.HTML = flags.HTML
			}
			if err := cfg.check(); err != nil {
				return err
			}

			recs, err := e.loadDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return e.plot(recs, cfg)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&flags.Nodes, "nodes", 0, "chart the jobs that ran on `n` nodes (default the most common node count)")
	fs.StringVar(&flags.Metric, "metric", nccltab.ColOOPBusBW, metricFlagUsage())
	fs.StringVarP(&flags.OutDir, "out", "o", flags.OutDir, "write charts to `dir`")
	fs.StringSliceVar(&flags.Formats, "format", flags.Formats, "chart `formats`: png, svg or pdf")
	fs.BoolVar(&flags.Matrix, "matrix", false, "also chart every node count side by side")
	fs.BoolVar(&flags.HTML, "html", false, "also write report.html")
	fs.StringVar(&cfgFile, "config", "", "read plot settings from YAML `file`")
	return cmd
}

// inches converts a configured size to a length, with def for zero.
func inches(v float64, def vg.Length) vg.Length {
	if v == 0 {
		return def
	}
	return vg.Length(v) * vg.Inch
}

// plot writes the charts and report described by cfg and prints the
// path of each file it writes.
func (e *env) plot(recs []*ncclfmt.Record, cfg *plotConfig) error {
	if err := os.MkdirAll(cfg.OutDir, 0777); err != nil {
		return err
	}
	tab := nccltab.Project(recs)

	// Chart names relative to cfg.OutDir.
	var charts []string
	saved := func(name string) {
		charts = append(charts, name)
		fmt.Fprintln(e.stdout, filepath.Join(cfg.OutDir, name))
	}

	p, err := ncclchart.Performance(tab, ncclchart.Options{Nodes: cfg.Nodes, Metric: cfg.Metric})
	switch {
	case err != nil && !cfg.Matrix:
		return err
	case err != nil:
		e.logger.Printf("could not create single plot: %v", err)
	default:
		nodes := cfg.Nodes
		if nodes == 0 {
			nodes, _ = ncclchart.ModeNodes(tab)
		}
		w, h := inches(cfg.Width, ncclchart.Width), inches(cfg.Height, ncclchart.Height)
		for _, format := range cfg.Formats {
			name := fmt.Sprintf("perf_%dnodes.%s", nodes, format)
			if err := ncclchart.Save(p, filepath.Join(cfg.OutDir, name), w, h); err != nil {
				return err
			}
			saved(name)
		}
	}

	if cfg.Matrix {
		g, err := ncclchart.Matrix(tab, cfg.Metric)
		if err != nil {
			return err
		}
		w, h := inches(cfg.MatrixWidth, ncclchart.MatrixWidth), inches(cfg.MatrixHeight, ncclchart.MatrixHeight)
		for _, format := range cfg.Formats {
			name := "matrix." + format
			if err := ncclchart.SaveMatrix(g, filepath.Join(cfg.OutDir, name), w, h); err != nil {
				return err
			}
			saved(name)
		}
	}

	if cfg.HTML {
		return e.report(recs, charts, cfg.OutDir)
	}
	return nil
}

// report writes report.html to dir, embedding the charts browsers can
// show.
func (e *env) report(recs []*ncclfmt.Record, charts []string, dir string) error {
	sums := make([]ncclstat.Summary, len(recs))
	for i, rec := range recs {
		sums[i] = ncclstat.Summarize(rec)
	}
	var images []string
	for _, c := range charts {
		if ext := filepath.Ext(c); ext == ".png" || ext == ".svg" {
			images = append(images, c)
		}
	}

	path := filepath.Join(dir, "report.html")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ncclstat.WriteHTML(f, "NCCL Performance Report", sums, images); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, path)
	return nil
}
