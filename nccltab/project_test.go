// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nccltab

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ncclperf/ncclperf/ncclfmt"
)

func floatp(v float64) *float64 {
	return &v
}

func meas(size int64, oopBusBW, ipBusBW float64) ncclfmt.Measurement {
	return ncclfmt.Measurement{
		Size: size, Count: size / 4, Type: "float", RedOp: "sum", Root: -1,
		OutOfPlace: ncclfmt.Result{Time: float64(size) / 1e4, AlgBW: oopBusBW / 2, BusBW: oopBusBW},
		InPlace:    ncclfmt.Result{Time: float64(size) / 1e4, AlgBW: ipBusBW / 2, BusBW: ipBusBW, Wrong: 1},
	}
}

// testRecords returns two jobs with tables, one log without a table
// and one with an empty table.
func testRecords() []*ncclfmt.Record {
	return []*ncclfmt.Record{
		{
			Path: "a.out", JobID: "100", Version: "2.18.3", Algo: "Ring", AltRead: true,
			Nodes: 2, GPUs: 8, AvgBusBW: floatp(20),
			Measurements: []ncclfmt.Measurement{meas(1<<20, 10, 11), meas(2<<20, 30, 29)},
		},
		{Path: "b.out", JobID: "101"},
		{Path: "c.out", JobID: "102", Measurements: []ncclfmt.Measurement{}},
		{
			Path: "d.out", JobID: "103", Nodes: 1, GPUs: 4,
			Measurements: []ncclfmt.Measurement{meas(1<<20, 5, 6)},
		},
	}
}

func TestFlatten(t *testing.T) {
	recs := testRecords()
	rows := Flatten(recs)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := Row{
		File: "a.out", JobID: "100", Version: "2.18.3", Algo: "Ring", AltRead: true,
		Nodes: 2, GPUs: 8, AvgBusBW: 20, Measurement: meas(2<<20, 30, 29),
	}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
	}
	if rows[2].JobID != "103" || !math.IsNaN(rows[2].AvgBusBW) {
		t.Errorf("row 2: got job %q avg %v, want 103 NaN", rows[2].JobID, rows[2].AvgBusBW)
	}

	// Flattening copies; the records are untouched.
	if diff := cmp.Diff(testRecords(), recs); diff != "" {
		t.Errorf("records modified (-want +got):\n%s", diff)
	}

	if rows := Flatten(nil); len(rows) != 0 {
		t.Errorf("Flatten(nil) = %v", rows)
	}
}

func TestProject(t *testing.T) {
	tab := Project(testRecords())
	if diff := cmp.Diff(Columns, tab.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if tab.Len() != 3 {
		t.Fatalf("got %d rows, want 3", tab.Len())
	}

	check := func(col string, want interface{}) {
		t.Helper()
		if diff := cmp.Diff(want, tab.MustColumn(col)); diff != "" {
			t.Errorf("column %s mismatch (-want +got):\n%s", col, diff)
		}
	}
	check(ColFile, []string{"a.out", "a.out", "d.out"})
	check(ColJobID, []string{"100", "100", "103"})
	check(ColAltRead, []bool{true, true, false})
	check(ColNodes, []int{2, 2, 1})
	check(ColSize, []int64{1 << 20, 2 << 20, 1 << 20})
	check(ColRoot, []int{-1, -1, -1})
	check(ColOOPBusBW, []float64{10, 30, 5})
	check(ColIPBusBW, []float64{11, 29, 6})
	check(ColIPWrong, []int64{1, 1, 1})

	avg := tab.MustColumn(ColAvgBusBW).([]float64)
	if avg[0] != 20 || !math.IsNaN(avg[2]) {
		t.Errorf("got avg_bus_bandwidth %v, want [20 20 NaN]", avg)
	}
}

func TestProjectEmpty(t *testing.T) {
	for _, recs := range [][]*ncclfmt.Record{nil, {{JobID: "1"}}} {
		tab := Project(recs)
		if tab.Len() != 0 {
			t.Errorf("got %d rows, want 0", tab.Len())
		}
		if diff := cmp.Diff(Columns, tab.Columns()); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestIsMetric(t *testing.T) {
	for _, m := range Metrics {
		if !IsMetric(m) {
			t.Errorf("IsMetric(%q) = false", m)
		}
	}
	for _, col := range []string{ColJobID, ColSize, ColAvgBusBW, "busbw"} {
		if IsMetric(col) {
			t.Errorf("IsMetric(%q) = true", col)
		}
	}
}
