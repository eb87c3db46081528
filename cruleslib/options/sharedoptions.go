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
	"strings"
)

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// SharedOptions are the flags every subcommand accepts.
type SharedOptions struct {
	CheckProgress       *bool
	CompileUniqueing    *string
	CompilerInfoFile    *string
	ConfigFile          *string
	CtuOrStatsEnabled   *bool
	Inputs              ArrayFlags
	KeepGccIncludeFixed *bool
	KeepGccIntrin       *bool
	Lang                *string
	NumWorkers          *int
	PreSkipFile         *string
	ProbeTimeout        *string
	ReportDir           *string
	SkipFile            *string
}

func (s SharedOptions) GetCheckProgress() bool {
	return *s.CheckProgress
}

func (s SharedOptions) GetCompileUniqueing() string {
	return *s.CompileUniqueing
}

func (s SharedOptions) GetCompilerInfoFile() string {
	return *s.CompilerInfoFile
}

func (s SharedOptions) GetConfigFile() string {
	return *s.ConfigFile
}

func (s SharedOptions) GetCtuOrStatsEnabled() bool {
	return *s.CtuOrStatsEnabled
}

// GetInputs returns the databases given with -input, in order.
func (s SharedOptions) GetInputs() []string {
	return append([]string{}, s.Inputs...)
}

func (s SharedOptions) GetKeepGccIncludeFixed() bool {
	return *s.KeepGccIncludeFixed
}

func (s SharedOptions) GetKeepGccIntrin() bool {
	return *s.KeepGccIntrin
}

func (s SharedOptions) GetLang() string {
	return *s.Lang
}

func (s SharedOptions) GetNumWorkers() int {
	return *s.NumWorkers
}

func (s SharedOptions) GetPreSkipFile() string {
	return *s.PreSkipFile
}

func (s SharedOptions) GetProbeTimeout() string {
	return *s.ProbeTimeout
}

func (s SharedOptions) GetReportDir() string {
	return *s.ReportDir
}

func (s SharedOptions) GetSkipFile() string {
	return *s.SkipFile
}

func NewSharedOptions(fs *flag.FlagSet) *SharedOptions {
	option := &SharedOptions{}

	option.CheckProgress = fs.Bool("check_progress", Defaults.CheckProgress, "Write the progress into the report dir")
	option.CompileUniqueing = fs.String("compile_uniqueing", Defaults.CompileUniqueing,
		"How to handle several commands of the same source: none, strict, alpha or a regex matched against the commands")
	option.CompilerInfoFile = fs.String("compiler_info_file", Defaults.CompilerInfoFile, "Read the compiler info from this file instead of running the compilers")
	option.ConfigFile = fs.String("config", "", "YAML configuration file, flags given on the command line override it")
	option.CtuOrStatsEnabled = fs.Bool("ctu_or_stats_enabled", Defaults.CtuOrStatsEnabled, "Keep the files needed by the pre-analysis")
	fs.Var(&option.Inputs, "input", "Compilation database to read, can be repeated. Databases may also follow the subcommand")
	option.KeepGccIncludeFixed = fs.Bool("keep_gcc_include_fixed", Defaults.KeepGccIncludeFixed, "Keep the include-fixed directories of GCC")
	option.KeepGccIntrin = fs.Bool("keep_gcc_intrin", Defaults.KeepGccIntrin, "Keep the directories of GCC intrinsic headers")
	option.Lang = fs.String("lang", Defaults.Lang, "Language of the messages: en or zh")
	option.NumWorkers = fs.Int("num_workers", Defaults.NumWorkers, "Number of entries processed in parallel")
	option.PreSkipFile = fs.String("pre_skip_file", Defaults.PreSkipFile, "Skip list of the pre-analysis")
	option.ProbeTimeout = fs.String("probe_timeout", Defaults.ProbeTimeout, "Timeout of every compiler invocation")
	option.ReportDir = fs.String("report_dir", Defaults.ReportDir, "Directory of compiler_info.json and the progress files")
	option.SkipFile = fs.String("skip_file", Defaults.SkipFile, "Skip list of the analysis")

	return option
}
