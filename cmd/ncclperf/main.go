// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ncclperf extracts results from nccl-tests logs and summarizes,
// tabulates and charts them.
//
// Usage:
//
//	ncclperf summary log.out
//	ncclperf table [--csv | --json] dir
//	ncclperf stats [--metric col] dir
//	ncclperf plot [--nodes n] [--metric col] [--out dir] [--format png,svg]
//	              [--matrix] [--html] [--config file] dir
//
// The summary command prints the job, NCCL version, topology and peak
// bandwidths found in a single log.
//
// The other commands read every file ending in ".out" in dir. A file
// that cannot be read is reported on standard error and skipped.
//
// The table command prints one row per measurement with the fields of
// the log it came from. With --csv it writes CSV, and with --json it
// writes the extracted records, in which a log without a results table
// has "performance_data": null and a log with an empty one has [].
//
// The stats command prints the minimum, maximum and mean of a metric
// column for every job. Metric columns are oop_busbw_gbps (the
// default), oop_algbw_gbps, oop_time_us and their in-place ip_
// counterparts.
//
// The plot command charts a metric against message size for every job
// that ran on the given number of nodes (by default, the most common
// node count) and writes perf_<n>nodes.<format> to the output
// directory. With --matrix it also writes matrix.<format>, which has
// one chart per node count, and with --html it writes report.html
// linking the charts to a summary of every log. Defaults for the plot
// flags can be given in a YAML file with --config; flags given on the
// command line take precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ncclperf/ncclperf/ncclfmt"
	"github.com/spf13/cobra"
)

func main() {
	log.SetPrefix("ncclperf: ")
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line args and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var pe *parseError
		if errors.As(err, &pe) {
			fmt.Fprintf(stderr, "Error parsing log file: %v\n", pe.err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// A parseError reports a log that exists but could not be parsed.
type parseError struct {
	err error
}

func (e *parseError) Error() string { return "parsing log file: " + e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

// env is the state shared by all commands.
type env struct {
	stdout, stderr io.Writer
	logger         *log.Logger
	parallel       int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	e := &env{
		stdout: stdout,
		stderr: stderr,
		logger: log.New(stderr, "ncclperf: ", 0),
	}
	root := &cobra.Command{
		Use:   "ncclperf",
		Short: "Extract, tabulate and chart nccl-tests results",
		Long: `Ncclperf extracts results from nccl-tests logs and summarizes,
tabulates and charts them. See the help of each command for details.`,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().IntVarP(&e.parallel, "parallel", "j", 0, "parse up to `n` logs at once (default GOMAXPROCS)")

	root.AddCommand(
		newSummaryCmd(e),
		newTableCmd(e),
		newStatsCmd(e),
		newPlotCmd(e),
	)
	return root
}

// loadDir reads the logs in dir, reporting unreadable ones on stderr.
func (e *env) loadDir(ctx context.Context, dir string) ([]*ncclfmt.Record, error) {
	l := ncclfmt.Loader{
		Parallelism: e.parallel,
		Warn:        e.logger.Printf,
	}
	recs, err := l.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		e.logger.Printf("no logs found in %s", dir)
	}
	return recs, nil
}

// quiet stops cobra from printing usage for errors that are not about
// the command line itself. Call it once the arguments have been
// checked.
func quiet(cmd *cobra.Command) {
	cmd.SilenceUsage = true
}
