/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"
	"naive.systems/ccdb/compilecommand"
	"naive.systems/ccdb/cruleslib/basic"
	"naive.systems/ccdb/cruleslib/stats"
)

const (
	statusOK        = "OK"
	statusFail      = "FAIL"
	statusException = "EXCEPTION"
)

type checkResult struct {
	File    string `json:"file"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// swapCompilerToClang replaces the compiler of entry with clang, or with
// clang++ for C++ compilers.
func swapCompilerToClang(entry compilecommand.CompileCommand, clang string) (compilecommand.CompileCommand, error) {
	tokens, err := entry.Tokens()
	if err != nil {
		return entry, err
	}
	args := append([]string{}, tokens...)
	if strings.Contains(filepath.Base(args[0]), "++") {
		args[0] = clang + "++"
	} else {
		args[0] = clang
	}
	return compilecommand.CompileCommand{
		Directory: entry.Directory,
		File:      entry.File,
		Arguments: args,
	}, nil
}

func checkEntry(ctx context.Context, executor basic.Executor, entry compilecommand.CompileCommand) checkResult {
	result := checkResult{File: entry.File}
	inv := basic.Invocation{Args: entry.Arguments, Dir: entry.Directory}
	stdout, stderr, err := executor.Execute(ctx, inv)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Status = statusOK
		result.Message = string(stdout)
	case errors.As(err, &exitErr):
		result.Status = statusFail
		result.Message = string(stderr)
	default:
		result.Status = statusException
		result.Message = err.Error()
	}
	return result
}

// checkAll compiles every entry with clang and reports which of them clang
// accepts. progress and tracker may be nil.
func checkAll(ctx context.Context, executor basic.Executor, entries []compilecommand.CompileCommand, clang string, numWorkers int, progress *basic.ProgressPrinter, tracker *stats.Tracker, printer *message.Printer) ([]checkResult, error) {
	results := make([]checkResult, len(entries))
	startedAt := time.Now()
	var mu sync.Mutex
	finished := 0
	g, gctx := errgroup.WithContext(ctx)
	if numWorkers > 0 {
		g.SetLimit(numWorkers)
	}
	for i := range entries {
		i := i
		g.Go(func() error {
			name := fmt.Sprintf("%s (%d)", entries[i].File, i)
			if progress != nil {
				progress.Start(name)
			}
			swapped, err := swapCompilerToClang(entries[i], clang)
			if err != nil {
				return err
			}
			results[i] = checkEntry(gctx, executor, swapped)
			if progress != nil {
				progress.Finish(name, printer.Sprintf(results[i].Status))
			}
			mu.Lock()
			finished++
			tracker.WriteProgressSince(stats.Check, basic.GetPercentString(finished, len(entries)), startedAt)
			mu.Unlock()
			if results[i].Status != statusOK {
				glog.Warningf("%s: %s", results[i].File, results[i].Message)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
