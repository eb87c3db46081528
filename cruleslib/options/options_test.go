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

package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ccdb.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfig(t *testing.T) {
	path := writeConfig(t, "compile_uniqueing: alpha\nnum_workers: 3\nkeep_gcc_intrin: true\nreport_dir: /tmp/reports\n")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	shared := NewSharedOptions(fs)
	if err := fs.Parse([]string{"-config", path, "-num_workers", "5", "-lang", "zh"}); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}
	config, err := ParseConfig(fs, shared)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	expected := Defaults
	expected.CompileUniqueing = "alpha"
	expected.NumWorkers = 5
	expected.KeepGccIntrin = true
	expected.ReportDir = "/tmp/reports"
	expected.Lang = "zh"
	if config != expected {
		t.Errorf("unexpected result. parsed: %+v. expected: %+v.", config, expected)
	}
	if config.GetProbeTimeout() != time.Minute {
		t.Errorf("unexpected probe timeout %v", config.GetProbeTimeout())
	}
}

func TestLoadConfigFileStrict(t *testing.T) {
	path := writeConfig(t, "compile_uniquing: alpha\n")
	config := Defaults
	if err := LoadConfigFile(path, &config); err == nil {
		t.Errorf("expected an error for an unknown key")
	}
}

func TestValidate(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		modify func(c *Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"regex uniqueing", func(c *Config) { c.CompileUniqueing = ".*clang.*" }, true},
		{"bad regex", func(c *Config) { c.CompileUniqueing = "(" }, false},
		{"no workers", func(c *Config) { c.NumWorkers = 0 }, false},
		{"bad timeout", func(c *Config) { c.ProbeTimeout = "soon" }, false},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			config := Defaults
			testCase.modify(&config)
			if err := config.Validate(); (err == nil) != testCase.valid {
				t.Errorf("unexpected result for %v. parsed: %v. expected valid: %v.", testCase.name, err, testCase.valid)
			}
		})
	}
}

func TestLogParserOptions(t *testing.T) {
	skipFile := writeConfig(t, "-/vendor/*\n")
	config := Defaults
	config.SkipFile = skipFile
	opts := config.LogParserOptions()
	if opts.AnalysisSkip == nil || !opts.AnalysisSkip.ShouldSkip("/vendor/a.c") || opts.PreAnalysisSkip != nil {
		t.Errorf("unexpected skip handlers %+v", opts)
	}
}

func TestLogParserOptionsMissingSkipFile(t *testing.T) {
	config := Defaults
	config.SkipFile = filepath.Join(t.TempDir(), "missing")
	config.PreSkipFile = writeConfig(t, "-/other/*\n")
	opts := config.LogParserOptions()
	if opts.AnalysisSkip != nil {
		t.Errorf("unexpected skip handler for a missing skip file: %+v", opts.AnalysisSkip)
	}
	if opts.PreAnalysisSkip == nil || !opts.PreAnalysisSkip.ShouldSkip("/other/a.c") {
		t.Errorf("unexpected pre-analysis skip handler %+v", opts.PreAnalysisSkip)
	}
}

func TestInputFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	shared := NewSharedOptions(fs)
	if err := fs.Parse([]string{"-input", "a.json", "-num_workers", "2", "-input", "b.json"}); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}
	inputs := shared.GetInputs()
	if len(inputs) != 2 || inputs[0] != "a.json" || inputs[1] != "b.json" {
		t.Errorf("unexpected inputs %v", inputs)
	}
	if shared.Inputs.String() != "a.json,b.json" {
		t.Errorf("unexpected flag value %q", shared.Inputs.String())
	}
	if _, err := ParseConfig(fs, shared); err != nil {
		t.Errorf("ParseConfig: %v", err)
	}
}
