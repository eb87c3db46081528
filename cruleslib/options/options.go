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
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
	"naive.systems/ccdb/logparser"
	"naive.systems/ccdb/skiplist"
)

// Config is the configuration of one run. It can be read from a YAML file
// and every field can be overridden on the command line.
type Config struct {
	CompileUniqueing    string `yaml:"compile_uniqueing"`
	CompilerInfoFile    string `yaml:"compiler_info_file"`
	KeepGccIncludeFixed bool   `yaml:"keep_gcc_include_fixed"`
	KeepGccIntrin       bool   `yaml:"keep_gcc_intrin"`
	SkipFile            string `yaml:"skip_file"`
	PreSkipFile         string `yaml:"pre_skip_file"`
	CtuOrStatsEnabled   bool   `yaml:"ctu_or_stats_enabled"`
	ReportDir           string `yaml:"report_dir"`
	NumWorkers          int    `yaml:"num_workers"`
	ProbeTimeout        string `yaml:"probe_timeout"`
	Lang                string `yaml:"lang"`
	CheckProgress       bool   `yaml:"check_progress"`
}

var Defaults = Config{
	CompileUniqueing: "none",
	NumWorkers:       runtime.NumCPU(),
	ProbeTimeout:     "1m",
	Lang:             "en",
}

// LoadConfigFile reads path over config. Unknown keys are errors.
func LoadConfigFile(path string, config *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("os.ReadFile: %v", err)
	}
	if err := yaml.UnmarshalStrict(content, config); err != nil {
		return fmt.Errorf("invalid config file %s: %v", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.NumWorkers <= 0 {
		return fmt.Errorf("num_workers must be positive, got %d", c.NumWorkers)
	}
	if _, err := logparser.ParseUniqueing(c.CompileUniqueing); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.ProbeTimeout); err != nil {
		return fmt.Errorf("invalid probe_timeout %q: %v", c.ProbeTimeout, err)
	}
	return nil
}

func (c Config) GetProbeTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil {
		return 0
	}
	return timeout
}

// LogParserOptions reads the skip files and returns the options of the
// build action parser. An unreadable skip file is logged and skips nothing.
func (c Config) LogParserOptions() logparser.Options {
	opts := logparser.Options{
		CompilerInfoFile:    c.CompilerInfoFile,
		KeepGccIncludeFixed: c.KeepGccIncludeFixed,
		KeepGccIntrin:       c.KeepGccIntrin,
		Uniqueing:           c.CompileUniqueing,
		ReportDir:           c.ReportDir,
		CtuOrStatsEnabled:   c.CtuOrStatsEnabled,
		NumWorkers:          c.NumWorkers,
		CheckProgress:       c.CheckProgress,
		Lang:                c.Lang,
	}
	if handler := readSkipFile(c.SkipFile); handler != nil {
		opts.AnalysisSkip = handler
	}
	if handler := readSkipFile(c.PreSkipFile); handler != nil {
		opts.PreAnalysisSkip = handler
	}
	return opts
}

// readSkipFile returns nil when path is empty or cannot be read.
func readSkipFile(path string) *skiplist.Handler {
	if path == "" {
		return nil
	}
	handler, err := skiplist.NewFromFile(path)
	if err != nil {
		glog.Errorf("ignoring skip file: %v", err)
		return nil
	}
	return handler
}
