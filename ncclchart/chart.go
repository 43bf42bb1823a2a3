// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ncclchart draws bandwidth-versus-message-size charts from a
// projected nccl-tests table.
//
// Performance compares every job run on one node count in a single
// chart. Matrix draws one such chart per node count. Both plot message
// size on a base-2 logarithmic axis.
package ncclchart

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/ncclperf/ncclperf/nccltab"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Options selects what Performance draws.
type Options struct {
	// Nodes is the node count to chart. If zero, the most common
	// node count in the table is used.
	Nodes int

	// Metric is the column on the Y axis. If empty,
	// nccltab.ColOOPBusBW is used.
	Metric string
}

func (o Options) metric() (string, error) {
	if o.Metric == "" {
		return nccltab.ColOOPBusBW, nil
	}
	if !nccltab.IsMetric(o.Metric) {
		return "", fmt.Errorf("unknown metric %q", o.Metric)
	}
	return o.Metric, nil
}

// Performance charts metric against message size for every job in g
// that ran on opt.Nodes nodes, one line per job.
func Performance(g table.Grouping, opt Options) (*plot.Plot, error) {
	metric, err := opt.metric()
	if err != nil {
		return nil, err
	}
	t := table.Flatten(g)
	nodes := opt.Nodes
	if nodes == 0 {
		var ok bool
		if nodes, ok = ModeNodes(t); !ok {
			return nil, fmt.Errorf("no data to plot")
		}
	}

	sub := onNodes(t, nodes)
	ss := jobSeries(sub, metric)
	if len(ss) == 0 {
		return nil, fmt.Errorf("no data found for %d nodes", nodes)
	}
	gpus := sub.MustColumn(nccltab.ColGPUs).([]int)[0]

	p := newPlot(maxSize(ss))
	p.Title.Text = fmt.Sprintf("NCCL Performance Comparison (%d nodes, %d GPUs)", nodes, gpus)
	p.Y.Label.Text = metricLabel(metric)
	p.Legend.Top = true
	p.Legend.Left = true

	colors := newPalette(len(ss))
	for i, s := range ss {
		version := s.version
		if version == "" {
			version = "Unknown"
		}
		label := fmt.Sprintf("Job %s (NCCL %s, %s)", s.jobID, version, altReadString(s.altRead))
		if err := addLine(p, s.pts, colors(i), label); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// A series is the measurements of one job, sorted by message size.
type series struct {
	jobID   string
	version string
	altRead bool
	pts     plotter.XYs
}

// jobSeries splits t into one series per job ID, ordered by job ID.
// Rows without a job ID are left out, as are rows whose message size
// cannot be placed on a log axis. Jobs left without points are
// dropped.
func jobSeries(t *table.Table, metric string) []series {
	var out []series
	g := table.GroupBy(t, nccltab.ColJobID)
	for _, gid := range g.Tables() {
		jobID := gid.Label().(string)
		if jobID == "" {
			continue
		}
		gt := g.Table(gid)
		// The job's first row in input order describes it.
		s := series{
			jobID:   jobID,
			version: gt.MustColumn(nccltab.ColVersion).([]string)[0],
			altRead: gt.MustColumn(nccltab.ColAltRead).([]bool)[0],
		}
		gt = table.Flatten(table.SortBy(gt, nccltab.ColSize))
		sizes := gt.MustColumn(nccltab.ColSize).([]int64)
		ys := gt.MustColumn(metric).([]float64)
		for i, size := range sizes {
			if size <= 0 || math.IsNaN(ys[i]) {
				continue
			}
			s.pts = append(s.pts, plotter.XY{X: float64(size), Y: ys[i]})
		}
		if len(s.pts) > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return jobLess(out[i].jobID, out[j].jobID) })
	return out
}

// jobLess orders job IDs numerically. Job IDs are decimal digits, so
// a shorter ID is a smaller number.
func jobLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func maxSize(ss []series) float64 {
	m := 0.0
	for _, s := range ss {
		for _, pt := range s.pts {
			m = math.Max(m, pt.X)
		}
	}
	return m
}

// onNodes returns the rows of t that ran on n nodes.
func onNodes(t *table.Table, n int) *table.Table {
	if t.Len() == 0 {
		return t
	}
	return table.Flatten(table.FilterEq(t, nccltab.ColNodes, n))
}

// ModeNodes returns the most common node count among the rows of t,
// preferring the smallest count on a tie. It reports false if t has
// no rows.
func ModeNodes(t *table.Table) (int, bool) {
	if t.Len() == 0 {
		return 0, false
	}
	counts := make(map[int]int)
	for _, n := range t.MustColumn(nccltab.ColNodes).([]int) {
		counts[n]++
	}
	best, bestCount := 0, 0
	for n, c := range counts {
		if c > bestCount || c == bestCount && n < best {
			best, bestCount = n, c
		}
	}
	return best, true
}

// NodeCounts returns the distinct node counts in t in increasing
// order.
func NodeCounts(t *table.Table) []int {
	if t.Len() == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, n := range t.MustColumn(nccltab.ColNodes).([]int) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// SizeTicks returns a tick at every power of two from 16K to 8G that
// is no larger than limit.
func SizeTicks(limit float64) []plot.Tick {
	var ticks []plot.Tick
	for i := 14; i < 34; i++ {
		s := int64(1) << i
		if float64(s) > limit {
			break
		}
		ticks = append(ticks, plot.Tick{Value: float64(s), Label: FormatSize(s)})
	}
	return ticks
}

// FormatSize formats a byte count in whole units of the largest
// binary prefix it reaches, rounding down: 1536 is "1K".
func FormatSize(s int64) string {
	switch {
	case s >= 1<<30:
		return fmt.Sprintf("%dG", s>>30)
	case s >= 1<<20:
		return fmt.Sprintf("%dM", s>>20)
	case s >= 1<<10:
		return fmt.Sprintf("%dK", s>>10)
	}
	return fmt.Sprintf("%dB", s)
}

var metricLabels = map[string]string{
	nccltab.ColOOPBusBW: "Out-of-Place Bus Bandwidth (GB/s)",
	nccltab.ColOOPAlgBW: "Out-of-Place Algorithm Bandwidth (GB/s)",
	nccltab.ColOOPTime:  "Out-of-Place Time (us)",
	nccltab.ColIPBusBW:  "In-Place Bus Bandwidth (GB/s)",
	nccltab.ColIPAlgBW:  "In-Place Algorithm Bandwidth (GB/s)",
	nccltab.ColIPTime:   "In-Place Time (us)",
}

func metricLabel(metric string) string {
	if l, ok := metricLabels[metric]; ok {
		return l
	}
	return metricTitle(metric)
}

// metricTitle turns a column name like "ip_busbw_gbps" into
// "Ip Busbw Gbps".
func metricTitle(metric string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(metric, "_", " "))
}

func altReadString(altRead bool) string {
	if altRead {
		return "alt_read"
	}
	return "no_alt_read"
}

// newPlot returns a plot with a log-scale message size axis reaching
// at least limit. A plot that will hold no data (limit <= 0) keeps a
// linear axis, since a log axis cannot be drawn over an empty range.
func newPlot(limit float64) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = "Message Size (bytes)"
	if limit > 0 {
		p.X.Scale = plot.LogScale{}
		if ticks := SizeTicks(limit); len(ticks) > 0 {
			p.X.Tick.Marker = plot.ConstantTicks(ticks)
		} else {
			p.X.Tick.Marker = plot.LogTicks{}
		}
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YTop

	grid := plotter.NewGrid()
	grid.Horizontal.Color = color.Gray{200}
	grid.Vertical.Color = color.Gray{200}
	p.Add(grid)
	return p
}

// newPalette returns a function mapping series indexes to colors. The
// colors repeat if there are more series than the palette holds.
func newPalette(n int) func(i int) color.Color {
	// Paired is defined for 3 to 12 colors.
	if n < 3 {
		n = 3
	} else if n > 12 {
		n = 12
	}
	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", n)
	if err != nil {
		panic(err)
	}
	colors := pal.Colors()
	return func(i int) color.Color {
		return colors[i%len(colors)]
	}
}

// addLine adds pts to p as a line with point markers.
func addLine(p *plot.Plot, pts plotter.XYs, c color.Color, label string) error {
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = vg.Points(2)
	s.Color = c
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(2)
	p.Add(l, s)
	if label != "" {
		p.Legend.Add(label, l, s)
	}
	return nil
}
