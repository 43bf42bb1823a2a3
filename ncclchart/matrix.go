// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ncclchart

import (
	"fmt"
	"image/color"

	"github.com/aclements/go-gg/table"
	"github.com/ncclperf/ncclperf/nccltab"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// maxCols is the widest a Grid gets.
const maxCols = 3

// A Grid is a set of charts laid out in rows and columns under a
// common title.
type Grid struct {
	Title string

	// Plots is indexed by row and then column. Cells after the
	// last chart are nil.
	Plots [][]*plot.Plot
}

// Matrix draws one chart of metric per node count in g, in increasing
// node count order. A job has the same color in every chart, and only
// the first chart has a legend. If metric is empty,
// nccltab.ColOOPBusBW is used.
func Matrix(g table.Grouping, metric string) (*Grid, error) {
	metric, err := Options{Metric: metric}.metric()
	if err != nil {
		return nil, err
	}
	t := table.Flatten(g)
	counts := NodeCounts(t)
	if len(counts) == 0 {
		return nil, fmt.Errorf("no data to plot")
	}

	jobs := jobIDs(t)
	palette := newPalette(len(jobs))
	colors := make(map[string]color.Color)
	for i, id := range jobs {
		colors[id] = palette(i)
	}

	cols := len(counts)
	if cols > maxCols {
		cols = maxCols
	}
	rows := (len(counts) + cols - 1) / cols
	grid := &Grid{
		Title: "NCCL Performance Comparison - " + metricTitle(metric),
		Plots: make([][]*plot.Plot, rows),
	}
	for r := range grid.Plots {
		grid.Plots[r] = make([]*plot.Plot, cols)
	}

	for i, nodes := range counts {
		sub := onNodes(t, nodes)
		ss := jobSeries(sub, metric)
		p := newPlot(maxSize(ss))
		p.Title.Text = fmt.Sprintf("%d nodes (%d GPUs)", nodes, sub.MustColumn(nccltab.ColGPUs).([]int)[0])
		p.Y.Label.Text = metricTitle(metric)
		p.Legend.Top = true
		p.Legend.Left = true
		for _, s := range ss {
			label := ""
			if i == 0 {
				label = fmt.Sprintf("Job %s (%s)", s.jobID, altReadString(s.altRead))
			}
			if err := addLine(p, s.pts, colors[s.jobID], label); err != nil {
				return nil, err
			}
		}
		grid.Plots[i/cols][i%cols] = p
	}
	return grid, nil
}

// jobIDs returns the non-empty job IDs of t in order of first
// appearance.
func jobIDs(t *table.Table) []string {
	if t.Len() == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, id := range t.MustColumn(nccltab.ColJobID).([]string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Draw draws the title across the top of c and the charts, aligned,
// below it.
func (g *Grid) Draw(c draw.Canvas) {
	if len(g.Plots) == 0 {
		return
	}
	if g.Title != "" {
		sty := plot.New().Title.TextStyle
		sty.Font.Size = vg.Points(16)
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		c.FillText(sty, vg.Point{X: c.Center().X, Y: c.Max.Y}, g.Title)
		c = draw.Crop(c, 0, 0, 0, -sty.Height(g.Title)-vg.Points(6))
	}

	tiles := draw.Tiles{
		Rows: len(g.Plots),
		Cols: len(g.Plots[0]),
		PadX: vg.Millimeter * 6,
		PadY: vg.Millimeter * 6,
	}
	canvases := plot.Align(g.Plots, tiles, c)
	for j, row := range g.Plots {
		for i, p := range row {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
}
