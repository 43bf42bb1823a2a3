// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/ncclperf/ncclperf/nccltab"
	"github.com/spf13/cobra"
)

func newTableCmd(e *env) *cobra.Command {
	var asCSV, asJSON bool
	cmd := &cobra.Command{
		Use:   "table dir",
		Short: "Print every measurement in a directory of logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet(cmd)
			recs, err := e.loadDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case asJSON:
				enc := json.NewEncoder(e.stdout)
				enc.SetIndent("", "\t")
				return enc.Encode(recs)
			case asCSV:
				return nccltab.WriteCSV(e.stdout, nccltab.Project(recs))
			}
			return table.Fprint(e.stdout, nccltab.Project(recs))
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the extracted records as JSON")
	cmd.MarkFlagsMutuallyExclusive("csv", "json")
	return cmd
}

func metricFlagUsage() string {
	return fmt.Sprintf("metric `column`: one of %s", strings.Join(nccltab.Metrics, ", "))
}

func newStatsCmd(e *env) *cobra.Command {
	var metric string
	cmd := &cobra.Command{
		Use:   "stats dir",
		Short: "Print the minimum, maximum and mean of a metric per job",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !nccltab.IsMetric(metric) {
				return fmt.Errorf("unknown metric %q", metric)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet(cmd)
			recs, err := e.loadDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, err := nccltab.JobStats(nccltab.Project(recs), metric)
			if err != nil {
				return err
			}
			return table.Fprint(e.stdout, t, "%s", "%d", "%d", "%d", "%.2f", "%.2f", "%.2f")
		},
	}
	cmd.Flags().StringVar(&metric, "metric", nccltab.ColOOPBusBW, metricFlagUsage())
	return cmd
}
