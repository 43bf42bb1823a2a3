// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nccltab

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/aclements/go-gg/table"
)

// WriteCSV writes every table of g to w as CSV, with one header line
// naming the columns. Groups are written one after another with no
// separator. NaN values are written as empty fields.
func WriteCSV(w io.Writer, g table.Grouping) error {
	cols := g.Columns()
	if cols == nil {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		vals := make([]reflect.Value, len(cols))
		for i, col := range cols {
			vals[i] = reflect.ValueOf(t.MustColumn(col))
		}
		for row := 0; row < t.Len(); row++ {
			for i, v := range vals {
				record[i] = strof(v.Index(row))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func strof(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		x := v.Float()
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v.Interface())
}
