// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ncclfmt

import (
	"regexp"
	"strconv"
	"strings"
)

// Markers that delimit parts of an nccl-tests log.
const (
	// TableHeader is the exact column header line that starts the
	// performance table.
	TableHeader = "#       size         count      type   redop    root     time   algbw   busbw #wrong     time   algbw   busbw #wrong"

	// TableFooter ends the performance table. If it is missing, the
	// table runs to the end of the log.
	TableFooter = "# Out of bounds values"

	// AltReadMarker is the environment setting reported by
	// Record.AltRead.
	AltReadMarker = "FI_CXI_RDZV_PROTO=alt_read"
)

var (
	deviceRE = regexp.MustCompile(`#\s+Rank\s+\d+.*?on\s+(\w+)\s+device`)

	// rowRE matches a table row from the start of a line. It has
	// exactly one group per column.
	rowRE = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(\w+)\s+(\w+)\s+(-?\d+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+(\d+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+(\d+)`)
)

// A scalarRule fills one Record field from the first match of re
// anywhere in the log. Rules are independent of each other and may run
// in any order.
type scalarRule struct {
	re  *regexp.Regexp
	set func(r *Record, val string)
}

var scalarRules = []scalarRule{
	{regexp.MustCompile(`JobID:\s*(\d+)`), func(r *Record, val string) { r.JobID = val }},
	{regexp.MustCompile(`NCCL_VERSION=(\S+)`), func(r *Record, val string) { r.Version = val }},
	{regexp.MustCompile(`NCCL_ALGO=(\S+)`), func(r *Record, val string) { r.Algo = val }},
	{regexp.MustCompile(`# Avg bus bandwidth\s*:\s*([0-9.]+)`), func(r *Record, val string) {
		// [0-9.]+ admits things like "1.2.3"; treat those as absent.
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			r.AvgBusBW = &v
		}
	}},
}

// Extract parses the text of an nccl-tests log.
//
// Extract never fails. Fields whose markers are missing keep their
// zero values, and table lines that do not match the 13-column row
// layout are skipped. Extract is deterministic: the same text always
// yields an identical Record.
func Extract(text string) *Record {
	r := new(Record)
	for _, rule := range scalarRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			rule.set(r, m[1])
		}
	}
	r.AltRead = strings.Contains(text, AltReadMarker)
	r.Nodes, r.GPUs = topology(text)
	r.Measurements = table(text)
	return r
}

// topology counts the device lines in text and the distinct node
// names they mention.
//
// A node that lists only some of its devices still counts once, and
// the same node name reused by a second job in one file is not told
// apart from the first. Both are accepted.
func topology(text string) (nodes, gpus int) {
	seen := make(map[string]bool)
	for _, m := range deviceRE.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
		gpus++
	}
	return len(seen), gpus
}

// table returns the rows of the performance table in text, or nil if
// text has no table header.
func table(text string) []Measurement {
	start := strings.Index(text, TableHeader)
	if start < 0 {
		return nil
	}
	region := text[start:]
	if end := strings.Index(region, TableFooter); end >= 0 {
		region = region[:end]
	}

	rows := []Measurement{}
	for _, line := range strings.Split(region, "\n") {
		if m, ok := parseRow(line); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// parseRow parses a single table line. It reports false if the line
// does not have the full row layout or if a numeric column does not
// convert.
func parseRow(line string) (m Measurement, ok bool) {
	f := rowRE.FindStringSubmatch(line)
	if f == nil {
		return m, false
	}
	p := fieldParser{fields: f[1:]}
	m.Size = p.atoi(0)
	m.Count = p.atoi(1)
	m.Type = f[3]
	m.RedOp = f[4]
	m.Root = int(p.atoi(4))
	m.OutOfPlace = p.result(5)
	m.InPlace = p.result(9)
	if p.err != nil {
		return Measurement{}, false
	}
	return m, true
}

// fieldParser converts regexp captures, remembering the first
// conversion error.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) atoi(i int) int64 {
	v, err := strconv.ParseInt(p.fields[i], 10, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *fieldParser) atof(i int) float64 {
	v, err := strconv.ParseFloat(p.fields[i], 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

// result parses the time, algbw, busbw and #wrong columns starting at
// column i.
func (p *fieldParser) result(i int) Result {
	return Result{
		Time:  p.atof(i),
		AlgBW: p.atof(i + 1),
		BusBW: p.atof(i + 2),
		Wrong: p.atoi(i + 3),
	}
}
