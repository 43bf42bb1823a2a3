// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ncclstat summarizes single nccl-tests records for people to
// read, as plain text or as an HTML report.
package ncclstat

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/ncclperf/ncclperf/ncclfmt"
)

// A Peak is the largest bus bandwidth seen on one side of a table and
// the message size it was seen at.
type Peak struct {
	BusBW float64 // GB/s
	Size  int64   // bytes
}

// A Summary condenses one Record.
type Summary struct {
	Name   string // base name of the log file
	Record *ncclfmt.Record

	// The fields below are zero if Cases is zero.
	Cases            int // number of measurements
	MaxOOP, MaxIP    Peak
	MinSize, MaxSize int64
	MeanOOP, MeanIP  float64 // mean bus bandwidth, GB/s
}

// Summarize computes the Summary of rec. If several measurements share
// the peak bandwidth, the first one wins.
func Summarize(rec *ncclfmt.Record) Summary {
	s := Summary{Name: filepath.Base(rec.Path), Record: rec}
	if rec.Path == "" {
		s.Name = ""
	}
	ms := rec.Measurements
	s.Cases = len(ms)
	if s.Cases == 0 {
		return s
	}

	oop := make([]float64, len(ms))
	ip := make([]float64, len(ms))
	s.MinSize, s.MaxSize = ms[0].Size, ms[0].Size
	s.MaxOOP = Peak{ms[0].OutOfPlace.BusBW, ms[0].Size}
	s.MaxIP = Peak{ms[0].InPlace.BusBW, ms[0].Size}
	for i, m := range ms {
		oop[i], ip[i] = m.OutOfPlace.BusBW, m.InPlace.BusBW
		if m.OutOfPlace.BusBW > s.MaxOOP.BusBW {
			s.MaxOOP = Peak{m.OutOfPlace.BusBW, m.Size}
		}
		if m.InPlace.BusBW > s.MaxIP.BusBW {
			s.MaxIP = Peak{m.InPlace.BusBW, m.Size}
		}
		if m.Size < s.MinSize {
			s.MinSize = m.Size
		}
		if m.Size > s.MaxSize {
			s.MaxSize = m.Size
		}
	}
	s.MeanOOP, s.MeanIP = stats.Mean(oop), stats.Mean(ip)
	return s
}

const na = "N/A"

// orNA returns s, or "N/A" if s is empty.
func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}

// avgString formats the log's own average bus bandwidth.
func (s *Summary) avgString() string {
	if s.Record.AvgBusBW == nil {
		return na
	}
	return strconv.FormatFloat(*s.Record.AvgBusBW, 'g', -1, 64)
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteText writes s to w in the layout of the original summary
// script, with "N/A" for fields the log did not have.
func (s *Summary) WriteText(w io.Writer) error {
	var buf strings.Builder
	r := s.Record
	fmt.Fprintf(&buf, "NCCL Test Log Summary: %s\n", s.Name)
	fmt.Fprintf(&buf, "%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(&buf, "Job ID: %s\n", orNA(r.JobID))
	fmt.Fprintf(&buf, "NCCL Version: %s\n", orNA(r.Version))
	fmt.Fprintf(&buf, "NCCL Algorithm: %s\n", orNA(r.Algo))
	fmt.Fprintf(&buf, "Number of Nodes: %d\n", r.Nodes)
	fmt.Fprintf(&buf, "Number of GPUs: %d\n", r.GPUs)
	fmt.Fprintf(&buf, "Uses Alt Read: %s\n", pyBool(r.AltRead))
	fmt.Fprintf(&buf, "Average Bus Bandwidth: %s GB/s\n", s.avgString())

	if s.Cases == 0 {
		fmt.Fprintf(&buf, "\nNo performance data found\n")
	} else {
		fmt.Fprintf(&buf, "\nPerformance Data: %d test cases\n", s.Cases)
		fmt.Fprintf(&buf, "%s\n", strings.Repeat("-", 30))
		fmt.Fprintf(&buf, "Max Out-of-Place Bus BW: %.2f GB/s (size: %d bytes)\n", s.MaxOOP.BusBW, s.MaxOOP.Size)
		fmt.Fprintf(&buf, "Max In-Place Bus BW: %.2f GB/s (size: %d bytes)\n", s.MaxIP.BusBW, s.MaxIP.Size)
		fmt.Fprintf(&buf, "Mean Out-of-Place Bus BW: %.2f GB/s\n", s.MeanOOP)
		fmt.Fprintf(&buf, "Mean In-Place Bus BW: %.2f GB/s\n", s.MeanIP)
		fmt.Fprintf(&buf, "Test size range: %d - %d bytes\n", s.MinSize, s.MaxSize)
	}
	_, err := io.WriteString(w, buf.String())
	return err
}
