// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ncclperf/ncclperf/ncclfmt"
	"github.com/ncclperf/ncclperf/ncclstat"
	"github.com/spf13/cobra"
)

func newSummaryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "summary log",
		Short: "Print a summary of one nccl-tests log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet(cmd)
			path := args[0]
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("Log file '%s' not found", path)
			}
			rec, err := ncclfmt.ReadFile(path)
			if err != nil {
				return &parseError{err}
			}
			s := ncclstat.Summarize(rec)
			return s.WriteText(e.stdout)
		},
	}
}
