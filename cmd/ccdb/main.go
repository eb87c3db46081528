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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"naive.systems/ccdb/atomic"
	"naive.systems/ccdb/buildaction"
	"naive.systems/ccdb/compilecommand"
	"naive.systems/ccdb/cruleslib/basic"
	"naive.systems/ccdb/cruleslib/i18n"
	"naive.systems/ccdb/cruleslib/options"
	"naive.systems/ccdb/cruleslib/stats"
	"naive.systems/ccdb/logparser"
)

var subcommands = map[string]bool{"print": true, "clangify": true, "check": true}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [print|clangify|check] [compile_commands.json...]\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "Without databases, one is read from stdin.\n")
	flag.PrintDefaults()
}

// readDatabases flattens the given databases, or reads one from stdin.
func readDatabases(paths []string) ([]compilecommand.CompileCommand, error) {
	if len(paths) > 0 {
		return compilecommand.ReadAll(paths)
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %v", err)
	}
	return compilecommand.ParseCompileCommands(content, "<stdin>")
}

func writeOutput(output string, v any) error {
	if output != "" {
		return atomic.WriteJSON(output, v)
	}
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %v", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(content))
	return err
}

func clangify(ctx context.Context, config options.Config, entries []compilecommand.CompileCommand, clang string) ([]buildaction.BuildAction, []compilecommand.CompileCommand, error) {
	opts := config.LogParserOptions()
	executor := basic.CommandExecutor{Timeout: config.GetProbeTimeout()}
	parser := logparser.NewParser(executor, opts)
	result, err := parser.ParseUniqueLog(ctx, entries)
	if err != nil {
		return nil, nil, err
	}
	glog.Infof("compilers: %v", parser.Profiles.Compilers())
	analyzerEntries := make([]compilecommand.CompileCommand, 0, len(result.Actions))
	for _, action := range result.Actions {
		analyzerEntries = append(analyzerEntries, action.AnalyzerEntry(clang))
	}
	return result.Actions, analyzerEntries, nil
}

func main() {
	flag.Usage = usage
	sharedOptions := options.NewSharedOptions(flag.CommandLine)
	output := flag.String("output", "", "Output file, stdout if empty")
	clang := flag.String("clang", "", "Compiler of the clangify output, the original compiler if empty. Defaults to clang for check")
	invocationList := flag.String("invocation_list", "", "Also write the YAML invocation list of clangify to this file")
	flag.Parse()
	defer glog.Flush()

	config, err := options.ParseConfig(flag.CommandLine, sharedOptions)
	if err != nil {
		glog.Exitf("invalid configuration: %v", err)
	}
	printer := i18n.GetPrinter(config.Lang)

	args := flag.Args()
	command := "print"
	if len(args) > 0 && subcommands[args[0]] {
		command, args = args[0], args[1:]
	}
	paths := append(sharedOptions.GetInputs(), args...)
	entries, err := readDatabases(paths)
	if err != nil {
		glog.Exitf("failed to read compilation database: %v", err)
	}
	glog.Info(printer.Sprintf("Read %d entries from %d compilation databases", len(entries), len(paths)))

	ctx := context.Background()
	switch command {
	case "print":
		err = writeOutput(*output, entries)
	case "clangify":
		var actions []buildaction.BuildAction
		var analyzerEntries []compilecommand.CompileCommand
		actions, analyzerEntries, err = clangify(ctx, config, entries, *clang)
		if err != nil {
			glog.Exitf("clangify: %v", err)
		}
		if *invocationList != "" {
			list := buildaction.NewInvocationList(actions, *clang)
			if err := buildaction.WriteInvocationList(*invocationList, list); err != nil {
				glog.Exitf("failed to write invocation list: %v", err)
			}
			glog.Info(printer.Sprintf("Wrote %s", *invocationList))
		}
		err = writeOutput(*output, analyzerEntries)
	case "check":
		clangBin := *clang
		if clangBin == "" {
			clangBin = "clang"
		}
		executor := basic.CommandExecutor{Timeout: config.GetProbeTimeout()}
		// progress lines would mix with the results on stdout
		var progress *basic.ProgressPrinter
		if *output != "" {
			progress = basic.NewProgressPrinter(len(entries), printer)
		}
		var tracker *stats.Tracker
		if config.CheckProgress && config.ReportDir != "" {
			tracker = stats.NewTracker(config.ReportDir)
		}
		var results []checkResult
		results, err = checkAll(ctx, executor, entries, clangBin, config.NumWorkers, progress, tracker, printer)
		if err != nil {
			glog.Exitf("check: %v", err)
		}
		err = writeOutput(*output, results)
	}
	if err != nil {
		glog.Exitf("failed to write output: %v", err)
	}
}
