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

package compilerinfo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/golang/glog"
	"naive.systems/ccdb/cruleslib/basic"
)

const (
	includeStartMark = "#include <...> search starts here:"
	includeEndMark   = "End of search list."
	frameworkMark    = "(framework directory)"
	targetLabel      = "Target:"
)

const versionC = `#ifdef __STDC_VERSION__
#  if __STDC_VERSION__ >= 201710L
#    error CC_FOUND_STANDARD_VER#17
#  elif __STDC_VERSION__ >= 201112L
#    error CC_FOUND_STANDARD_VER#11
#  elif __STDC_VERSION__ >= 199901L
#    error CC_FOUND_STANDARD_VER#99
#  elif __STDC_VERSION__ >= 199409L
#    error CC_FOUND_STANDARD_VER#94
#  else
#    error CC_FOUND_STANDARD_VER#90
#  endif
#else
#  error CC_FOUND_STANDARD_VER#90
#endif
`

const versionCPP = `#ifdef __cplusplus
#  if __cplusplus >= 201703L
#    error CC_FOUND_STANDARD_VER#17
#  elif __cplusplus >= 201402L
#    error CC_FOUND_STANDARD_VER#14
#  elif __cplusplus >= 201103L
#    error CC_FOUND_STANDARD_VER#11
#  else
#    error CC_FOUND_STANDARD_VER#98
#  endif
#else
#  error CC_FOUND_STANDARD_VER#98
#endif
`

var (
	includeExtraArgsPattern = regexp.MustCompile(`^(-m(32|64)|-std=|-stdlib=|-nostdinc)`)
	standardMarkerPattern   = regexp.MustCompile(`CC_FOUND_STANDARD_VER#([0-9]+)`)
)

// FilterIncludesExtraArgs returns the flags which change the implicit include
// directories of a compiler: -m32, -m64, -std=, -stdlib=, -nostdinc and the
// first --sysroot.
func FilterIncludesExtraArgs(compilerFlags []string) []string {
	extraOpts := []string{}
	for _, flag := range compilerFlags {
		if includeExtraArgsPattern.MatchString(flag) {
			extraOpts = append(extraOpts, flag)
		}
	}
	for idx, flag := range compilerFlags {
		if !strings.HasPrefix(flag, "--sysroot") {
			continue
		}
		if flag == "--sysroot" {
			if idx+1 < len(compilerFlags) {
				extraOpts = append(extraOpts, "--sysroot="+compilerFlags[idx+1])
			}
		} else {
			extraOpts = append(extraOpts, flag)
		}
		break
	}
	return extraOpts
}

// stderrOf runs inv and returns its diagnostics. Compilers exit with a non
// zero status in most probes, so only a failure to produce any output counts.
func stderrOf(ctx context.Context, executor basic.Executor, inv basic.Invocation) (string, error) {
	_, stderr, err := executor.Execute(ctx, inv)
	if len(stderr) == 0 && err != nil {
		return "", fmt.Errorf("%v: %v", inv, err)
	}
	if err != nil {
		glog.V(2).Infof("%v exited with %v", inv, err)
	}
	return string(stderr), nil
}

func parseCompilerIncludes(lines string) []string {
	includePaths := []string{}
	doAppend := false
	for _, line := range strings.Split(lines, "\n") {
		if strings.HasPrefix(line, includeEndMark) {
			break
		}
		if doAppend {
			line = strings.TrimSpace(line)
			// /System/Library/Frameworks (framework directory)
			if pos := strings.Index(line, frameworkMark); pos != -1 {
				line = strings.TrimSpace(line[:pos])
			}
			if line != "" {
				includePaths = append(includePaths, filepath.Clean(line))
			}
		}
		if strings.HasPrefix(line, includeStartMark) {
			doAppend = true
		}
	}
	return includePaths
}

func getCompilerIncludes(ctx context.Context, executor basic.Executor, compiler, language string, compilerFlags []string) []string {
	args := []string{compiler}
	args = append(args, FilterIncludesExtraArgs(compilerFlags)...)
	args = append(args, "-E", "-x", language, "-", "-v")
	inv := basic.Invocation{Args: args}
	glog.V(1).Infof("Retrieving default includes via %v", inv)
	stderr, err := stderrOf(ctx, executor, inv)
	if err != nil {
		glog.Errorf("failed to retrieve default includes: %v", err)
		return []string{}
	}
	if !strings.Contains(stderr, includeStartMark) {
		glog.Errorf("unexpected output of %v: %s", inv, stderr)
	}
	return parseCompilerIncludes(stderr)
}

func parseCompilerTarget(lines string) string {
	for _, line := range strings.Split(lines, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 1 && fields[0] == targetLabel {
			return fields[1]
		}
	}
	return ""
}

func getCompilerTarget(ctx context.Context, executor basic.Executor, compiler string) string {
	inv := basic.Invocation{Args: []string{compiler, "-v"}}
	stderr, err := stderrOf(ctx, executor, inv)
	if err != nil {
		glog.Errorf("failed to retrieve target: %v", err)
		return ""
	}
	target := parseCompilerTarget(stderr)
	if target == "" {
		glog.Errorf("no target in the output of %v", inv)
	}
	return target
}

// standardFlag maps the marker found in the diagnostics to a GNU standard
// flag. C94 has no gnu flag of its own.
func standardFlag(version, language string) string {
	if version == "" {
		return ""
	}
	if version == "94" {
		return "-std=iso9899:199409"
	}
	if language == LangC {
		return "-std=gnu" + version
	}
	return "-std=gnu++" + version
}

func parseCompilerStandard(lines, language string) string {
	match := standardMarkerPattern.FindStringSubmatch(lines)
	if match == nil {
		return ""
	}
	return standardFlag(match[1], language)
}

// getCompilerStandard compiles a probe source whose #error message carries
// the value of __STDC_VERSION__ or __cplusplus.
func getCompilerStandard(ctx context.Context, executor basic.Executor, compiler, language string) string {
	suffix, content := ".cpp", versionCPP
	if language == LangC {
		suffix, content = ".c", versionC
	}
	source, err := os.CreateTemp("", "ccdb-std-*"+suffix)
	if err != nil {
		glog.Errorf("os.CreateTemp: %v", err)
		return ""
	}
	defer os.Remove(source.Name())
	_, err = source.WriteString(content)
	if closeErr := source.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		glog.Errorf("failed to write %s: %v", source.Name(), err)
		return ""
	}
	inv := basic.Invocation{Args: []string{compiler, source.Name()}, Dir: filepath.Dir(source.Name())}
	stderr, err := stderrOf(ctx, executor, inv)
	if err != nil {
		glog.Errorf("failed to retrieve default standard: %v", err)
		return ""
	}
	standard := parseCompilerStandard(stderr, language)
	if standard == "" {
		glog.Errorf("no standard marker in the output of %v: %s", inv, stderr)
	}
	return standard
}
