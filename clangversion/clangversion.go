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

// Package clangversion reads the output of `clang --version`.
package clangversion

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"naive.systems/ccdb/cruleslib/basic"
)

var (
	clangVersionPattern = regexp.MustCompile(`(?P<vendor>clang|Apple LLVM) version (?P<major>[0-9]+)\.(?P<minor>[0-9]+)\.(?P<patch>[0-9]+)`)
	installedDirPattern = regexp.MustCompile(`InstalledDir: (?P<installed_dir>\S*)`)
)

type VersionInfo struct {
	Vendor       string
	Major        int
	Minor        int
	Patch        int
	InstalledDir string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s %d.%d.%d (%s)", v.Vendor, v.Major, v.Minor, v.Patch, v.InstalledDir)
}

// Parse returns nil when banner is not the banner of a Clang compatible
// compiler. Both the version line and the InstalledDir line are required.
func Parse(banner string) *VersionInfo {
	versionMatch := clangVersionPattern.FindStringSubmatch(banner)
	installedDirMatch := installedDirPattern.FindStringSubmatch(banner)
	if versionMatch == nil || installedDirMatch == nil {
		return nil
	}
	info := &VersionInfo{
		Vendor:       versionMatch[clangVersionPattern.SubexpIndex("vendor")],
		InstalledDir: installedDirMatch[1],
	}
	// the pattern only admits digits, Atoi can only fail on overflow
	var err error
	if info.Major, err = strconv.Atoi(versionMatch[clangVersionPattern.SubexpIndex("major")]); err != nil {
		return nil
	}
	if info.Minor, err = strconv.Atoi(versionMatch[clangVersionPattern.SubexpIndex("minor")]); err != nil {
		return nil
	}
	if info.Patch, err = strconv.Atoi(versionMatch[clangVersionPattern.SubexpIndex("patch")]); err != nil {
		return nil
	}
	return info
}

// Get runs `compiler --version`. A compiler that cannot be run is reported
// with an error, one that runs but is not Clang with (nil, nil).
func Get(ctx context.Context, executor basic.Executor, compiler string, env []string) (*VersionInfo, error) {
	stdout, _, err := executor.Execute(ctx, basic.Invocation{
		Args: []string{compiler, "--version"},
		Env:  env,
	})
	if err != nil {
		return nil, fmt.Errorf("%s --version: %v", compiler, err)
	}
	return Parse(string(stdout)), nil
}
