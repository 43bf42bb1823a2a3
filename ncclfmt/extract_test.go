// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ncclfmt

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// lines joins its arguments into newline-terminated text.
func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func floatp(v float64) *float64 {
	return &v
}

const exampleRow = "1048576  262144  float  sum  -1  120.5  8.70  16.31  0  121.0  8.67  16.25  0"

var exampleMeasurement = Measurement{
	Size: 1048576, Count: 262144, Type: "float", RedOp: "sum", Root: -1,
	OutOfPlace: Result{Time: 120.5, AlgBW: 8.70, BusBW: 16.31, Wrong: 0},
	InPlace:    Result{Time: 121.0, AlgBW: 8.67, BusBW: 16.25, Wrong: 0},
}

func TestExtractScalars(t *testing.T) {
	for _, test := range []struct {
		name string
		text string
		want Record
	}{
		{
			name: "empty",
			text: "",
			want: Record{},
		},
		{
			name: "job and version",
			text: lines("JobID: 4821", "NCCL_VERSION=2.18.3"),
			want: Record{JobID: "4821", Version: "2.18.3"},
		},
		{
			name: "all scalars",
			text: lines(
				"JobID:   77",
				"env: NCCL_ALGO=Tree NCCL_VERSION=2.21.5+cuda12.4 FI_CXI_RDZV_PROTO=alt_read",
				"# Avg bus bandwidth    : 42.5 ",
			),
			want: Record{JobID: "77", Version: "2.21.5+cuda12.4", Algo: "Tree", AltRead: true, AvgBusBW: floatp(42.5)},
		},
		{
			name: "first occurrence wins",
			text: lines("NCCL_VERSION=2.18.3", "NCCL_VERSION=2.19.4", "JobID: 1", "JobID: 2"),
			want: Record{JobID: "1", Version: "2.18.3"},
		},
		{
			name: "job id needs digits",
			text: lines("JobID: pending", "NCCL_VERSION="),
			want: Record{},
		},
		{
			name: "other rendezvous protocol",
			text: lines("FI_CXI_RDZV_PROTO=default"),
			want: Record{},
		},
		{
			name: "unparsable average",
			text: lines("# Avg bus bandwidth : 1.2.3"),
			want: Record{},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := Extract(test.text)
			if diff := cmp.Diff(&test.want, got); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTopology(t *testing.T) {
	var ls []string
	for rank := 0; rank < 8; rank++ {
		node := "nid001208"
		if rank >= 4 {
			node = "nid001209"
		}
		ls = append(ls, "#  Rank  "+string(rune('0'+rank))+" Group  0 Pid 1000 on  "+node+" device  "+string(rune('0'+rank%4))+" [0x03] NVIDIA A100")
	}
	r := Extract(lines(ls...))
	if r.Nodes != 2 || r.GPUs != 8 {
		t.Errorf("got %d nodes, %d GPUs; want 2 nodes, 8 GPUs", r.Nodes, r.GPUs)
	}

	// A node that lists only some of its devices still counts.
	r = Extract(lines(ls[0], ls[4], ls[5]))
	if r.Nodes != 2 || r.GPUs != 3 {
		t.Errorf("got %d nodes, %d GPUs; want 2 nodes, 3 GPUs", r.Nodes, r.GPUs)
	}

	// Lines without the "on <node> device" shape are not devices.
	r = Extract(lines("# Rank 0 is starting", "#  Rank  1 Group  0 Pid 1 on nid1"))
	if r.Nodes != 0 || r.GPUs != 0 {
		t.Errorf("got %d nodes, %d GPUs; want none", r.Nodes, r.GPUs)
	}
}

func TestExtractTable(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		r := Extract(lines(TableHeader, exampleRow, TableFooter))
		want := []Measurement{exampleMeasurement}
		if diff := cmp.Diff(want, r.Measurements); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no header", func(t *testing.T) {
		r := Extract(lines("JobID: 1", exampleRow, TableFooter))
		if r.Measurements != nil || r.HasTable() {
			t.Errorf("got %v, want nil measurements", r.Measurements)
		}
	})

	t.Run("header without rows", func(t *testing.T) {
		r := Extract(lines(TableHeader, "#        (B)    (elements)", TableFooter))
		if r.Measurements == nil || !r.HasTable() {
			t.Fatalf("got nil measurements, want empty")
		}
		if len(r.Measurements) != 0 {
			t.Errorf("got %d measurements, want 0", len(r.Measurements))
		}
	})

	t.Run("header at end of text", func(t *testing.T) {
		r := Extract(TableHeader)
		if r.Measurements == nil || len(r.Measurements) != 0 {
			t.Errorf("got %#v, want empty non-nil measurements", r.Measurements)
		}
	})

	t.Run("bounds", func(t *testing.T) {
		// Rows before the header and after the footer look valid
		// but are outside the table.
		text := lines(
			exampleRow,
			TableHeader,
			exampleRow,
			"",
			"# a comment between rows",
			"     2097152        524288     float     sum      -1    180.2   11.64   21.82      0    179.9   11.66   21.86      0",
			TableFooter+" : 0 OK",
			exampleRow,
		)
		r := Extract(text)
		if len(r.Measurements) != 2 {
			t.Fatalf("got %d measurements, want 2", len(r.Measurements))
		}
		if got := r.Measurements[1].Size; got != 2097152 {
			t.Errorf("second row size %d, want 2097152", got)
		}
	})

	t.Run("no footer", func(t *testing.T) {
		r := Extract(lines(TableHeader, exampleRow, exampleRow))
		if len(r.Measurements) != 2 {
			t.Errorf("got %d measurements, want 2", len(r.Measurements))
		}
	})

	t.Run("malformed rows", func(t *testing.T) {
		text := lines(
			TableHeader,
			// Truncated mid-row.
			"1048576  262144  float  sum  -1  120.5  8.70  16.31  0  121.0  8.67",
			// Non-numeric time.
			"1048576  262144  float  sum  -1  n/a  8.70  16.31  0  121.0  8.67  16.25  0",
			// Matches the layout but a float does not convert.
			"1048576  262144  float  sum  -1  1.2.3  8.70  16.31  0  121.0  8.67  16.25  0",
			// Size does not fit in int64.
			"99999999999999999999  262144  float  sum  -1  1.0  8.70  16.31  0  121.0  8.67  16.25  0",
			exampleRow,
		)
		r := Extract(text)
		want := []Measurement{exampleMeasurement}
		if diff := cmp.Diff(want, r.Measurements); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("root and errors", func(t *testing.T) {
		r := Extract(lines(TableHeader, "  8  2  int32  max  3  9.1  0.00  0.00  2  9.0  0.00  0.00  5"))
		want := []Measurement{{
			Size: 8, Count: 2, Type: "int32", RedOp: "max", Root: 3,
			OutOfPlace: Result{Time: 9.1, Wrong: 2},
			InPlace:    Result{Time: 9.0, Wrong: 5},
		}}
		if diff := cmp.Diff(want, r.Measurements); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestExtractFile(t *testing.T) {
	data, err := os.ReadFile("testdata/allreduce_2n.out")
	if err != nil {
		t.Fatal(err)
	}
	r := Extract(string(data))

	if r.JobID != "4821" || r.Version != "2.18.3" || r.Algo != "Ring" || !r.AltRead {
		t.Errorf("got job %q version %q algo %q alt_read %v", r.JobID, r.Version, r.Algo, r.AltRead)
	}
	if r.Nodes != 2 || r.GPUs != 8 {
		t.Errorf("got %d nodes, %d GPUs; want 2, 8", r.Nodes, r.GPUs)
	}
	if r.AvgBusBW == nil || *r.AvgBusBW != 33.0035 {
		t.Errorf("got avg bus bandwidth %v, want 33.0035", r.AvgBusBW)
	}

	var sizes []int64
	for _, m := range r.Measurements {
		sizes = append(sizes, m.Size)
	}
	wantSizes := []int64{1 << 20, 2 << 20, 4 << 20, 8 << 20, 16 << 20, 32 << 20}
	if diff := cmp.Diff(wantSizes, sizes); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(exampleMeasurement, r.Measurements[0]); diff != "" {
		t.Errorf("first row mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIdempotent(t *testing.T) {
	data, err := os.ReadFile("testdata/allreduce_2n.out")
	if err != nil {
		t.Fatal(err)
	}
	a, b := Extract(string(data)), Extract(string(data))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("second extraction differs (-first +second):\n%s", diff)
	}
	if a == b || a.AvgBusBW == b.AvgBusBW {
		t.Errorf("extractions share memory")
	}
}
