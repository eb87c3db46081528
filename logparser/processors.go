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
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"naive.systems/ccdb/buildaction"
)

// details is the build action under construction.
type details struct {
	directory       string
	analyzerOptions []string
	lang            string
	actionType      buildaction.ActionType
	arch            string
	output          string
}

// A processor returns true if it consumed the current argument.
type processor struct {
	name string
	fn   func(c *OptionCursor, d *details) bool
}

// Sources are skipped first on clang, so that they are not collected with
// the other flags. The source is taken from the database entry.
var clangChain = []processor{
	{"skip_sources", skipSources},
	{"skip_clang", skipClang},
	{"collect_transform_xclang_opts", collectTransformXclangOpts},
	{"get_output", getOutput},
	{"determine_action_type", determineActionType},
	{"get_arch", getArch},
	{"get_language", getLanguage},
	{"collect_transform_include_opts", collectTransformIncludeOpts},
	{"collect_clang_compile_opts", collectClangCompileOpts},
}

var gccChain = []processor{
	{"skip_gcc", skipGcc},
	{"replace", replace},
	{"collect_compile_opts", collectCompileOpts},
	{"collect_transform_include_opts", collectTransformIncludeOpts},
	{"determine_action_type", determineActionType},
	{"skip_sources", skipSources},
	{"get_arch", getArch},
	{"get_language", getLanguage},
	{"get_output", getOutput},
}

func runChain(chain []processor, args []string, d *details) {
	c := NewOptionCursor(args)
	for ; !c.Done(); c.Advance() {
		handled := false
		for _, p := range chain {
			if p.fn(c, d) {
				handled = true
				break
			}
		}
		if !handled {
			glog.V(2).Infof("unhandled argument: %s", c.Current())
		}
	}
}

// absPath resolves path against directory.
func absPath(directory, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(directory, path))
}

func skipSources(c *OptionCursor, d *details) bool {
	return !strings.HasPrefix(c.Current(), "-")
}

func skipClang(c *OptionCursor, d *details) bool {
	return ignoredOptionsClang.MatchString(c.Current())
}

// skipGcc drops the current flag and, for flags taking separate
// parameters, the parameters as well.
func skipGcc(c *OptionCursor, d *details) bool {
	item := c.Current()
	if ignoredOptionsGcc.MatchString(item) {
		return true
	}
	for _, option := range ignoredParamOptions {
		if option.pattern.MatchString(item) {
			for i := 0; i < option.args; i++ {
				c.ConsumeNext()
			}
			return true
		}
	}
	return false
}

func replace(c *OptionCursor, d *details) bool {
	value, ok := replaceOptionsMap[c.Current()]
	if ok {
		d.analyzerOptions = append(d.analyzerOptions, value...)
	}
	return ok
}

// collectCompileOpts collects the compilation (i.e. not linker or
// preprocessor) flags.
func collectCompileOpts(c *OptionCursor, d *details) bool {
	if compileOptions.MatchString(c.Current()) {
		d.analyzerOptions = append(d.analyzerOptions, c.Current())
		return true
	}
	return false
}

func collectClangCompileOpts(c *OptionCursor, d *details) bool {
	d.analyzerOptions = append(d.analyzerOptions, c.Current())
	return true
}

// collectTransformXclangOpts drops "-Xclang <flag>" pairs which would make
// clang emit LLVM IR or text instead of reports.
func collectTransformXclangOpts(c *OptionCursor, d *details) bool {
	if c.Current() != "-Xclang" {
		return false
	}
	next, ok := c.ConsumeNext()
	if !ok {
		return true
	}
	if slices.Contains(xclangFlagsToSkip, next) {
		return true
	}
	d.analyzerOptions = append(d.analyzerOptions, "-Xclang", next)
	return true
}

// collectTransformIncludeOpts collects flags with an argument. Path
// arguments are made absolute, so that reports name files the same way
// whatever directory the analyzer runs in.
func collectTransformIncludeOpts(c *OptionCursor, d *details) bool {
	item := c.Current()
	flag := compileOptionsMerged.FindString(item)
	if flag == "" {
		return false
	}
	together := len(flag) != len(item)
	var param string
	if together {
		param = item[len(flag):]
	} else {
		next, ok := c.ConsumeNext()
		if !ok {
			d.analyzerOptions = append(d.analyzerOptions, flag)
			return true
		}
		param = next
	}
	if slices.Contains(flagsWithPath, flag) {
		// --sysroot=/path is stored as --sysroot /path
		if strings.HasPrefix(param, "=") {
			param = param[1:]
			together = false
		} else if flag == "-I" {
			together = true
		}
		param = absPath(d.directory, param)
	}
	if together {
		d.analyzerOptions = append(d.analyzerOptions, flag+param)
	} else {
		d.analyzerOptions = append(d.analyzerOptions, flag, param)
	}
	return true
}

// determineActionType tells compilation, preprocessing and info queries
// apart. Once COMPILE is set it is never changed.
func determineActionType(c *OptionCursor, d *details) bool {
	item := c.Current()
	switch {
	case item == "-c":
		d.actionType = buildaction.Compile
		return true
	case strings.HasPrefix(item, "-print-prog-name"):
		if d.actionType != buildaction.Compile {
			d.actionType = buildaction.Info
		}
		return true
	case precompilationOption.MatchString(item):
		if d.actionType != buildaction.Compile {
			d.actionType = buildaction.Preprocess
		}
		return true
	}
	return false
}

func getArch(c *OptionCursor, d *details) bool {
	if c.Current() != "-arch" {
		return false
	}
	if next, ok := c.ConsumeNext(); ok {
		d.arch = next
	}
	return true
}

func getLanguage(c *OptionCursor, d *details) bool {
	item := c.Current()
	if !strings.HasPrefix(item, "-x") {
		return false
	}
	if item == "-x" {
		if next, ok := c.ConsumeNext(); ok {
			d.lang = next
		}
		return true
	}
	d.lang = item[len("-x"):]
	return true
}

func getOutput(c *OptionCursor, d *details) bool {
	if c.Current() != "-o" {
		return false
	}
	if next, ok := c.ConsumeNext(); ok {
		d.output = next
	}
	return true
}

// gccToolchainInArgs returns the path given by --gcc-toolchain=, if any.
func gccToolchainInArgs(options []string) string {
	for _, option := range options {
		if m := gccToolchainPattern.FindStringSubmatch(option); m != nil {
			return m[1]
		}
	}
	return ""
}
