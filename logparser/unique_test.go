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

package logparser

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/exp/slices"
	"naive.systems/ccdb/buildaction"
	"naive.systems/ccdb/compilecommand"
	"naive.systems/ccdb/cruleslib/stats"
	"naive.systems/ccdb/skiplist"
)

func entry(file, command string) compilecommand.CompileCommand {
	return compilecommand.CompileCommand{Directory: "/proj", File: file, Command: command}
}

func outputs(actions []buildaction.BuildAction) []string {
	result := []string{}
	for _, action := range actions {
		result = append(result, action.Output())
	}
	return result
}

func TestParseUniqueing(t *testing.T) {
	for _, testCase := range []struct {
		mode     string
		expected UniqueingPolicy
	}{
		{"", UniqueFullText},
		{"none", UniqueFullText},
		{"full-text", UniqueFullText},
		{"strict", UniqueStrict},
		{"alpha", UniqueAlpha},
		{"alphabetical", UniqueAlpha},
		{".*clang.*", UniquePattern},
	} {
		parsed, err := ParseUniqueing(testCase.mode)
		if err != nil || parsed.Policy != testCase.expected {
			t.Errorf("unexpected result for %v. parsed: %v (%v). expected: %v.", testCase.mode, parsed.Policy, err, testCase.expected)
		}
	}
	if _, err := ParseUniqueing("(unclosed"); err == nil {
		t.Errorf("expected an error for an invalid pattern")
	}
}

func TestUniqueAlphabetical(t *testing.T) {
	parser, _ := newFakeParser(Options{Uniqueing: "alpha"})
	result, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{
		entry("b.cpp", "g++ -c b.cpp -o z.o"),
		entry("c.cpp", "g++ -c c.cpp -o c.o"),
		entry("b.cpp", "g++ -DX -c b.cpp -o a.o"),
	})
	if err != nil {
		t.Fatalf("ParseUniqueLog: %v", err)
	}
	expected := []string{"a.o", "c.o"}
	if parsed := outputs(result.Actions); !reflect.DeepEqual(parsed, expected) {
		t.Errorf("unexpected result. parsed: %v. expected: %v.", parsed, expected)
	}
}

func TestUniqueFullText(t *testing.T) {
	parser, _ := newFakeParser(Options{})
	result, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{
		entry("a.c", "gcc -c a.c -o 1.o"),
		entry("b.c", "gcc -c b.c -o 2.o"),
		entry("a.c", "gcc -c a.c -o 3.o"),
		entry("a.c", "gcc -DX -c a.c -o 4.o"),
	})
	if err != nil {
		t.Fatalf("ParseUniqueLog: %v", err)
	}
	// the output is not part of the hash
	expected := []string{"1.o", "2.o", "4.o"}
	if parsed := outputs(result.Actions); !reflect.DeepEqual(parsed, expected) {
		t.Errorf("unexpected result. parsed: %v. expected: %v.", parsed, expected)
	}
}

func TestUniqueStrict(t *testing.T) {
	parser, _ := newFakeParser(Options{Uniqueing: "strict"})
	_, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{
		entry("a.c", "gcc -c a.c -o 1.o"),
		entry("a.c", "gcc -c a.c -o 2.o"),
	})
	var uerr *UniqueingError
	if !errors.As(err, &uerr) {
		t.Fatalf("unexpected error %v", err)
	}
	if uerr.Kept != "gcc -c a.c -o 1.o" || uerr.Conflicting != "gcc -c a.c -o 2.o" || uerr.Source != "/proj/a.c" {
		t.Errorf("unexpected error %+v", uerr)
	}
}

func TestUniquePattern(t *testing.T) {
	for _, testCase := range []struct {
		name     string
		first    string
		second   string
		expected string
		conflict bool
	}{
		{"second matches", "gcc -c a.c -o 1.o", "clang -c a.c -o 2.o", "2.o", false},
		{"first matches", "clang -c a.c -o 1.o", "gcc -c a.c -o 2.o", "1.o", false},
		{"neither matches", "gcc -c a.c -o 1.o", "gcc -O2 -c a.c -o 2.o", "1.o", false},
		{"both match", "clang -c a.c -o 1.o", "clang -O2 -c a.c -o 2.o", "", true},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			parser, _ := newFakeParser(Options{Uniqueing: "clang"})
			result, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{
				entry("a.c", testCase.first),
				entry("a.c", testCase.second),
			})
			var uerr *UniqueingError
			if testCase.conflict {
				if !errors.As(err, &uerr) || uerr.Pattern == "" {
					t.Errorf("expected a uniqueing error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUniqueLog: %v", err)
			}
			if parsed := outputs(result.Actions); !reflect.DeepEqual(parsed, []string{testCase.expected}) {
				t.Errorf("unexpected result for %v. parsed: %v. expected: %v.", testCase.name, parsed, testCase.expected)
			}
		})
	}
}

func TestNonCompileActionsDropped(t *testing.T) {
	parser, _ := newFakeParser(Options{})
	result, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{
		entry("a.o", "gcc a.o -o app"),
		entry("a.c", "gcc -E a.c -o a.i"),
		entry("b.c", "gcc -c b.c -o b.o"),
		entry(".", "gcc -print-prog-name=ld"),
	})
	if err != nil {
		t.Fatalf("ParseUniqueLog: %v", err)
	}
	if parsed := outputs(result.Actions); !reflect.DeepEqual(parsed, []string{"b.o"}) {
		t.Errorf("unexpected result. parsed: %v. expected: [b.o].", parsed)
	}
}

func TestSkipHandlers(t *testing.T) {
	skip := skiplist.New("-/proj/vendor/*\n+/proj/vendor/keep.c")
	db := []compilecommand.CompileCommand{
		entry("vendor/keep.c", "gcc -c vendor/keep.c"),
		entry("src/a.c", "gcc -c src/a.c"),
		entry("/proj/vendor/lib/x.c", "gcc -c /proj/vendor/lib/x.c"),
	}
	for _, testCase := range []struct {
		name     string
		opts     Options
		expected int
	}{
		{"no handler", Options{}, 0},
		{"analysis skip", Options{AnalysisSkip: skip}, 2},
		{"ctu keeps pre-analysis files", Options{AnalysisSkip: skip, CtuOrStatsEnabled: true}, 0},
		{"ctu skips both", Options{AnalysisSkip: skip, PreAnalysisSkip: skip, CtuOrStatsEnabled: true}, 2},
		{"ctu pre-analysis keeps", Options{AnalysisSkip: skip, PreAnalysisSkip: skiplist.New("-/other/*"), CtuOrStatsEnabled: true}, 0},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			parser, _ := newFakeParser(testCase.opts)
			result, err := parser.ParseUniqueLog(context.Background(), db)
			if err != nil {
				t.Fatalf("ParseUniqueLog: %v", err)
			}
			if result.Skipped != testCase.expected || len(result.Actions)+result.Skipped != len(db) {
				t.Errorf("unexpected result for %v. parsed: %v skipped, %v actions. expected: %v skipped.", testCase.name, result.Skipped, len(result.Actions), testCase.expected)
			}
		})
	}
}

func TestMissingCommandFails(t *testing.T) {
	parser, executor := newFakeParser(Options{})
	_, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{
		entry("a.c", "gcc -c a.c"),
		{Directory: "/proj", File: "b.c"},
	})
	if !errors.Is(err, compilecommand.ErrNoCommand) {
		t.Errorf("unexpected error %v", err)
	}
	if executor.Count() != 0 {
		t.Errorf("compilers were run for a malformed database: %v", executor.Invocations())
	}
}

func TestProbeOncePerCompiler(t *testing.T) {
	parser, executor := newFakeParser(Options{NumWorkers: 8})
	db := []compilecommand.CompileCommand{}
	for _, file := range []string{"a.c", "b.c", "c.c", "d.c", "e.c", "f.c", "g.c", "h.c"} {
		db = append(db, entry(file, "gcc -c "+file))
	}
	result, err := parser.ParseUniqueLog(context.Background(), db)
	if err != nil {
		t.Fatalf("ParseUniqueLog: %v", err)
	}
	if len(result.Actions) != len(db) {
		t.Errorf("unexpected number of actions %d", len(result.Actions))
	}
	for i, action := range result.Actions {
		if action.Source() != filepath.Join("/proj", db[i].File) {
			t.Errorf("actions out of order: %v at %d", action.Source(), i)
		}
	}
	if executor.Count() != 6 {
		t.Errorf("unexpected invocations: %v", executor.Invocations())
	}
}

func TestProbeFlagsFromFirstEntry(t *testing.T) {
	for round := 0; round < 20; round++ {
		parser, executor := newFakeParser(Options{NumWorkers: 8})
		db := []compilecommand.CompileCommand{entry("a.c", "gcc -c a.c")}
		for _, file := range []string{"b.c", "c.c", "d.c", "e.c", "f.c", "g.c", "h.c"} {
			db = append(db, entry(file, "gcc -m32 -c "+file))
		}
		if _, err := parser.ParseUniqueLog(context.Background(), db); err != nil {
			t.Fatalf("ParseUniqueLog: %v", err)
		}
		includeProbes := 0
		for _, inv := range executor.Invocations() {
			if !slices.Contains(inv.Args, "-E") {
				continue
			}
			includeProbes++
			if slices.Contains(inv.Args, "-m32") {
				t.Fatalf("include probe took the flags of a later entry: %v", inv)
			}
		}
		if includeProbes != 2 {
			t.Errorf("unexpected invocations: %v", executor.Invocations())
		}
	}
}

func TestProgressWritten(t *testing.T) {
	dir := t.TempDir()
	parser, _ := newFakeParser(Options{ReportDir: dir, CheckProgress: true})
	if _, err := parser.ParseUniqueLog(context.Background(), []compilecommand.CompileCommand{entry("a.c", "gcc -c a.c")}); err != nil {
		t.Fatalf("ParseUniqueLog: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(dir, "progress.json"))
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var progress stats.Progress
	if err := json.Unmarshal(content, &progress); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if progress.StageID != stats.END || progress.DoneRatio != "100%" {
		t.Errorf("unexpected progress %+v", progress)
	}
	content, err = os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var summary stats.Summary
	if err := json.Unmarshal(content, &summary); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if summary.Entries != 1 || summary.Actions != 1 || summary.RunID != progress.RunID {
		t.Errorf("unexpected summary %+v", summary)
	}
}
