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
)

// ParseConfig starts from Defaults, applies the config file and then the
// flags set on the command line. fs must have been parsed.
func ParseConfig(fs *flag.FlagSet, s *SharedOptions) (Config, error) {
	config := Defaults
	if s.GetConfigFile() != "" {
		if err := LoadConfigFile(s.GetConfigFile(), &config); err != nil {
			return config, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "check_progress":
			config.CheckProgress = s.GetCheckProgress()
		case "compile_uniqueing":
			config.CompileUniqueing = s.GetCompileUniqueing()
		case "compiler_info_file":
			config.CompilerInfoFile = s.GetCompilerInfoFile()
		case "ctu_or_stats_enabled":
			config.CtuOrStatsEnabled = s.GetCtuOrStatsEnabled()
		case "keep_gcc_include_fixed":
			config.KeepGccIncludeFixed = s.GetKeepGccIncludeFixed()
		case "keep_gcc_intrin":
			config.KeepGccIntrin = s.GetKeepGccIntrin()
		case "lang":
			config.Lang = s.GetLang()
		case "num_workers":
			config.NumWorkers = s.GetNumWorkers()
		case "pre_skip_file":
			config.PreSkipFile = s.GetPreSkipFile()
		case "probe_timeout":
			config.ProbeTimeout = s.GetProbeTimeout()
		case "report_dir":
			config.ReportDir = s.GetReportDir()
		case "skip_file":
			config.SkipFile = s.GetSkipFile()
		}
	})
	return config, config.Validate()
}
