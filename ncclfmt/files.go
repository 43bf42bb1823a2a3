// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ncclfmt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Parse reads all of r and extracts a Record from it. path is stored
// in Record.Path and used in error messages; it is purely diagnostic.
//
// The only errors are I/O errors from r and a *DecodeError if the
// content is not text.
func Parse(r io.Reader, path string) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := checkText(data, path); err != nil {
		return nil, err
	}
	rec := Extract(string(data))
	rec.Path = path
	return rec, nil
}

// ReadFile reads the nccl-tests log at path.
func ReadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// checkText returns a *DecodeError if data is not valid UTF-8 or
// contains NUL bytes.
func checkText(data []byte, path string) error {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return &DecodeError{path, i, "NUL byte in text"}
	}
	for i := 0; i < len(data); {
		r, n := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && n == 1 {
			return &DecodeError{path, i, "invalid UTF-8"}
		}
		i += n
	}
	return nil
}

// A Loader reads every nccl-tests log in a directory.
//
// The zero Loader reads files ending in ".out", parses up to
// GOMAXPROCS files at a time, and reports unreadable files with
// log.Printf.
type Loader struct {
	// Suffix selects the files to read. If empty, ".out" is used.
	Suffix string

	// Parallelism bounds the number of files parsed at once. If
	// zero or negative, GOMAXPROCS is used.
	Parallelism int

	// Warn is called for every file that could not be read or is
	// not text. The file is left out of the result. Calls are
	// serialized. If nil, log.Printf is used.
	Warn func(format string, args ...interface{})
}

// LoadDir reads the ".out" files in dir with the default Loader.
func LoadDir(dir string) ([]*Record, error) {
	var l Loader
	return l.Load(context.Background(), dir)
}

// Load reads every file in dir (not its subdirectories) whose name
// ends in l.Suffix and returns one Record per file that could be read.
//
// A file that fails to read or decode is reported through l.Warn and
// skipped, so partial success is the normal outcome. Load returns an
// error only if dir itself cannot be listed or ctx is done.
//
// Records are returned in the order the directory listing yields the
// files. Callers should not rely on that order being sorted.
func (l *Loader) Load(ctx context.Context, dir string) ([]*Record, error) {
	paths, err := l.candidates(dir)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	warn := func(format string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if l.Warn != nil {
			l.Warn(format, args...)
		} else {
			log.Printf(format, args...)
		}
	}

	// Each worker owns one slot of recs, so results come out in
	// listing order however the workers are scheduled.
	recs := make([]*Record, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	limit := l.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := ReadFile(path)
			if err != nil {
				warn("%v\n", err)
				return nil
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := recs[:0]
	for _, rec := range recs {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

// candidates lists the paths in dir that end in the loader's suffix.
// Directories that happen to match are kept; reading them fails and
// is reported like any other unreadable file.
func (l *Loader) candidates(dir string) ([]string, error) {
	suffix := l.Suffix
	if suffix == "" {
		suffix = ".out"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
