// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nccltab

import (
	"fmt"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

// ColRows is the JobStats column holding the number of measurements
// of a job.
const ColRows = "rows"

// StatCols returns the names of the JobStats columns holding the
// minimum, maximum and mean of metric.
func StatCols(metric string) (minCol, maxCol, meanCol string) {
	return "min " + metric, "max " + metric, "mean " + metric
}

// JobStats aggregates metric over every job in g. The result has one
// row per distinct (jobid, num_nodes, num_gpus) in order of first
// appearance, with the columns jobid, num_nodes, num_gpus, rows and
// the three StatCols of metric.
//
// Rows without a job ID are left out. metric must be one of Metrics.
func JobStats(g table.Grouping, metric string) (*table.Table, error) {
	if !IsMetric(metric) {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	minCol, maxCol, meanCol := StatCols(metric)

	t := table.Flatten(g)
	if t.Len() > 0 {
		t = table.Flatten(table.Filter(t, func(id string) bool { return id != "" }, ColJobID))
	}
	if t.Len() == 0 {
		// ggstat cannot aggregate zero groups.
		var b table.Builder
		b.Add(ColJobID, []string{}).Add(ColNodes, []int{}).Add(ColGPUs, []int{}).Add(ColRows, []int{})
		b.Add(minCol, []float64{}).Add(maxCol, []float64{}).Add(meanCol, []float64{})
		return b.Done(), nil
	}

	agg := ggstat.Agg(ColJobID, ColNodes, ColGPUs)(
		ggstat.AggCount(ColRows),
		ggstat.AggMin(metric),
		ggstat.AggMax(metric),
		ggstat.AggMean(metric),
	)
	out := table.Flatten(agg.F(t))

	// Agg keeps every effectively constant input column; drop them.
	var b table.Builder
	for _, col := range []string{ColJobID, ColNodes, ColGPUs, ColRows, minCol, maxCol, meanCol} {
		b.Add(col, out.MustColumn(col))
	}
	return b.Done(), nil
}
