// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ncclperf/ncclperf/ncclchart"
	"github.com/ncclperf/ncclperf/nccltab"
	"gopkg.in/yaml.v3"
)

// plotConfig holds the settings of the plot command. It can be read
// from a YAML file and is then overridden by command line flags.
type plotConfig struct {
	Nodes   int      `yaml:"nodes"`
	Metric  string   `yaml:"metric"`
	OutDir  string   `yaml:"out_dir"`
	Formats []string `yaml:"formats"`
	Matrix  bool     `yaml:"matrix"`
	HTML    bool     `yaml:"html"`

	// Chart sizes in inches. Zero means the ncclchart default.
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	MatrixWidth  float64 `yaml:"matrix_width"`
	MatrixHeight float64 `yaml:"matrix_height"`
}

func defaultPlotConfig() *plotConfig {
	return &plotConfig{
		OutDir:  ".",
		Formats: []string{"png"},
	}
}

// loadPlotConfig reads the YAML file at path over the defaults. Unknown
// keys are an error. An empty path yields the defaults.
func loadPlotConfig(path string) (*plotConfig, error) {
	cfg := defaultPlotConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// check reports the first setting that cannot be used.
func (c *plotConfig) check() error {
	if c.Nodes < 0 {
		return fmt.Errorf("invalid node count %d", c.Nodes)
	}
	if c.Metric != "" && !nccltab.IsMetric(c.Metric) {
		return fmt.Errorf("unknown metric %q", c.Metric)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("no chart formats")
	}
formats:
	for _, f := range c.Formats {
		for _, known := range ncclchart.Formats {
			if f == known {
				continue formats
			}
		}
		return fmt.Errorf("unsupported chart format %q", f)
	}
	for _, v := range []float64{c.Width, c.Height, c.MatrixWidth, c.MatrixHeight} {
		if v < 0 {
			return fmt.Errorf("negative chart size %g", v)
		}
	}
	return nil
}
