// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nccltab flattens nccl-tests records into a wide table with
// one row per measurement.
//
// The table is a github.com/aclements/go-gg/table.Table, so it can be
// grouped, filtered and sorted with the usual table operations before
// it is printed, written as CSV or charted.
package nccltab

import (
	"math"

	"github.com/aclements/go-gg/table"
	"github.com/ncclperf/ncclperf/ncclfmt"
)

// Column names of a projected table.
const (
	ColFile     = "file"
	ColJobID    = "jobid"
	ColVersion  = "nccl_version"
	ColAlgo     = "nccl_algo"
	ColAltRead  = "uses_alt_read"
	ColNodes    = "num_nodes"
	ColGPUs     = "num_gpus"
	ColAvgBusBW = "avg_bus_bandwidth"

	ColSize  = "size_bytes"
	ColCount = "count_elements"
	ColType  = "type"
	ColRedOp = "redop"
	ColRoot  = "root"

	ColOOPTime  = "oop_time_us"
	ColOOPAlgBW = "oop_algbw_gbps"
	ColOOPBusBW = "oop_busbw_gbps"
	ColOOPWrong = "oop_wrong"
	ColIPTime   = "ip_time_us"
	ColIPAlgBW  = "ip_algbw_gbps"
	ColIPBusBW  = "ip_busbw_gbps"
	ColIPWrong  = "ip_wrong"
)

// Columns lists the columns of a projected table in order.
var Columns = []string{
	ColFile, ColJobID, ColVersion, ColAlgo, ColAltRead, ColNodes, ColGPUs, ColAvgBusBW,
	ColSize, ColCount, ColType, ColRedOp, ColRoot,
	ColOOPTime, ColOOPAlgBW, ColOOPBusBW, ColOOPWrong,
	ColIPTime, ColIPAlgBW, ColIPBusBW, ColIPWrong,
}

// Metrics lists the float64 measurement columns that can be
// aggregated or charted.
var Metrics = []string{
	ColOOPBusBW, ColOOPAlgBW, ColOOPTime,
	ColIPBusBW, ColIPAlgBW, ColIPTime,
}

// IsMetric reports whether col is one of Metrics.
func IsMetric(col string) bool {
	for _, m := range Metrics {
		if m == col {
			return true
		}
	}
	return false
}

// A Row is one measurement together with the fields of the record it
// came from.
type Row struct {
	File     string
	JobID    string
	Version  string
	Algo     string
	AltRead  bool
	Nodes    int
	GPUs     int
	AvgBusBW float64 // NaN if the log reported no average

	ncclfmt.Measurement
}

// Flatten returns one Row per measurement of recs, in record order and
// then measurement order. Records without a table, or with an empty
// one, contribute no rows.
func Flatten(recs []*ncclfmt.Record) []Row {
	var rows []Row
	for _, rec := range recs {
		avg := math.NaN()
		if rec.AvgBusBW != nil {
			avg = *rec.AvgBusBW
		}
		for _, m := range rec.Measurements {
			rows = append(rows, Row{
				File:        rec.Path,
				JobID:       rec.JobID,
				Version:     rec.Version,
				Algo:        rec.Algo,
				AltRead:     rec.AltRead,
				Nodes:       rec.Nodes,
				GPUs:        rec.GPUs,
				AvgBusBW:    avg,
				Measurement: m,
			})
		}
	}
	return rows
}

// Project returns the wide table of recs. The table always has every
// column in Columns, even when it has no rows.
func Project(recs []*ncclfmt.Record) *table.Table {
	return FromRows(Flatten(recs))
}

// FromRows builds the wide table from already flattened rows.
func FromRows(rows []Row) *table.Table {
	n := len(rows)
	var (
		file, jobid, version, algo = make([]string, n), make([]string, n), make([]string, n), make([]string, n)
		altRead                    = make([]bool, n)
		nodes, gpus, root          = make([]int, n), make([]int, n), make([]int, n)
		avg                        = make([]float64, n)
		size, count                = make([]int64, n), make([]int64, n)
		typ, redop                 = make([]string, n), make([]string, n)
		oop, ip                    = newResultCols(n), newResultCols(n)
	)
	for i, r := range rows {
		file[i], jobid[i], version[i], algo[i] = r.File, r.JobID, r.Version, r.Algo
		altRead[i] = r.AltRead
		nodes[i], gpus[i] = r.Nodes, r.GPUs
		avg[i] = r.AvgBusBW
		size[i], count[i] = r.Size, r.Count
		typ[i], redop[i], root[i] = r.Type, r.RedOp, r.Root
		oop.set(i, r.OutOfPlace)
		ip.set(i, r.InPlace)
	}

	var b table.Builder
	b.Add(ColFile, file).Add(ColJobID, jobid).Add(ColVersion, version).Add(ColAlgo, algo)
	b.Add(ColAltRead, altRead).Add(ColNodes, nodes).Add(ColGPUs, gpus).Add(ColAvgBusBW, avg)
	b.Add(ColSize, size).Add(ColCount, count).Add(ColType, typ).Add(ColRedOp, redop).Add(ColRoot, root)
	b.Add(ColOOPTime, oop.time).Add(ColOOPAlgBW, oop.algBW).Add(ColOOPBusBW, oop.busBW).Add(ColOOPWrong, oop.wrong)
	b.Add(ColIPTime, ip.time).Add(ColIPAlgBW, ip.algBW).Add(ColIPBusBW, ip.busBW).Add(ColIPWrong, ip.wrong)
	return b.Done()
}

// resultCols holds the four columns of one half of a table row.
type resultCols struct {
	time, algBW, busBW []float64
	wrong              []int64
}

func newResultCols(n int) resultCols {
	return resultCols{make([]float64, n), make([]float64, n), make([]float64, n), make([]int64, n)}
}

func (c resultCols) set(i int, r ncclfmt.Result) {
	c.time[i], c.algBW[i], c.busBW[i], c.wrong[i] = r.Time, r.AlgBW, r.BusBW, r.Wrong
}
