// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ncclstat

import (
	"fmt"
	"io"

	"github.com/google/safehtml/template"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Charts -}}
<h2>Charts</h2>
{{range .Charts}}<p><img src="{{.}}" alt="{{.}}"></p>
{{end}}
{{- end}}
<h2>Logs</h2>
<table class="summary">
<tr><th>log<th>job<th>NCCL<th>algo<th>nodes<th>GPUs<th>alt_read<th>avg busbw<th>cases<th>max oop busbw<th>max ip busbw<th>sizes
{{range .Rows -}}
<tr><td>{{.Name}}<td>{{.JobID}}<td>{{.Version}}<td>{{.Algo}}<td>{{.Nodes}}<td>{{.GPUs}}<td>{{.AltRead}}<td>{{.Avg}}<td>{{.Cases}}<td>{{.MaxOOP}}<td>{{.MaxIP}}<td>{{.Sizes}}
{{end -}}
</table>
</body>
</html>
`))

type reportRow struct {
	Name, JobID, Version, Algo string
	Nodes, GPUs, Cases         int
	AltRead                    bool
	Avg, MaxOOP, MaxIP, Sizes  string
}

// WriteHTML writes a report page listing sums and embedding the
// images at the chart URLs, which are usually paths relative to the
// page.
func WriteHTML(w io.Writer, title string, sums []Summary, charts []string) error {
	rows := make([]reportRow, len(sums))
	for i := range sums {
		s := &sums[i]
		r := s.Record
		rows[i] = reportRow{orNA(s.Name), orNA(r.JobID), orNA(r.Version), orNA(r.Algo),
			r.Nodes, r.GPUs, s.Cases, r.AltRead, s.avgString(), na, na, na}
		if s.Cases > 0 {
			rows[i].MaxOOP = fmt.Sprintf("%.2f GB/s @ %d B", s.MaxOOP.BusBW, s.MaxOOP.Size)
			rows[i].MaxIP = fmt.Sprintf("%.2f GB/s @ %d B", s.MaxIP.BusBW, s.MaxIP.Size)
			rows[i].Sizes = fmt.Sprintf("%d - %d B", s.MinSize, s.MaxSize)
		}
	}
	return reportTemplate.Execute(w, struct {
		Title  string
		Charts []string
		Rows   []reportRow
	}{title, charts, rows})
}
