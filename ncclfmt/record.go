// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ncclfmt extracts performance records from the text logs
// written by the NCCL collective-communication tests (nccl-tests).
//
// A log is free-form text: a job preamble, environment dumps, a
// device listing with one "# Rank N ... on <node> device" line per
// GPU, and a performance table between a fixed header line and an
// "# Out of bounds values" footer. Extract turns such text into a
// Record without ever failing: anything it cannot find is left at its
// zero value. The table rows must match the full 13-column layout;
// truncated or garbled rows, which are common when a job is killed
// mid-run, are skipped.
//
// Loader applies Extract to every ".out" file in a directory and
// tolerates per-file failures.
package ncclfmt

import "fmt"

// A Record is the structured form of one nccl-tests log.
//
// String fields are empty when the corresponding marker does not
// appear in the log. The patterns that fill them require at least one
// character, so an empty string always means "absent".
type Record struct {
	// Path is the file the record was read from. Extract leaves it
	// empty; ReadFile and Loader set it.
	Path string `json:"log_file,omitempty"`

	JobID   string `json:"jobid"`        // digits following "JobID:"
	Version string `json:"nccl_version"` // token following "NCCL_VERSION="
	Algo    string `json:"nccl_algo"`    // token following "NCCL_ALGO="

	// AltRead reports whether FI_CXI_RDZV_PROTO=alt_read appears
	// anywhere in the log.
	AltRead bool `json:"uses_alt_read"`

	// Nodes is the number of distinct node names in the device
	// listing and GPUs is the number of device lines. Nodes never
	// exceeds GPUs.
	Nodes int `json:"num_nodes"`
	GPUs  int `json:"num_gpus"`

	// AvgBusBW is the "# Avg bus bandwidth" value in GB/s, or nil.
	AvgBusBW *float64 `json:"avg_bus_bandwidth"`

	// Measurements holds the table rows in input order. It is nil
	// if the log has no table header and non-nil (possibly empty)
	// if the header was found. Callers must keep the two cases
	// apart; see HasTable.
	Measurements []Measurement `json:"performance_data"`
}

// HasTable reports whether the log contained a performance table
// header, regardless of how many rows followed it.
func (r *Record) HasTable() bool {
	return r.Measurements != nil
}

// A Measurement is one row of the performance table.
type Measurement struct {
	Size  int64  `json:"size_bytes"`     // message size in bytes
	Count int64  `json:"count_elements"` // number of elements
	Type  string `json:"type"`           // data type, e.g. "float"
	RedOp string `json:"redop"`          // reduction op, e.g. "sum"
	Root  int    `json:"root"`           // root rank, -1 for rootless collectives

	OutOfPlace Result `json:"out_of_place"`
	InPlace    Result `json:"in_place"`
}

// A Result is one half of a table row: the out-of-place or the
// in-place timing of a collective.
type Result struct {
	Time  float64 `json:"time_us"`    // microseconds
	AlgBW float64 `json:"algbw_gbps"` // algorithm bandwidth, GB/s
	BusBW float64 `json:"busbw_gbps"` // bus bandwidth, GB/s
	Wrong int64   `json:"wrong"`      // number of wrong elements
}

// A DecodeError reports that a file does not hold text and so cannot
// be an nccl-tests log.
type DecodeError struct {
	Path   string
	Offset int // byte offset of the first offending byte
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: offset %d: %s", e.Path, e.Offset, e.Msg)
}
