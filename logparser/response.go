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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"
	"golang.org/x/exp/slices"
	"naive.systems/ccdb/compilecommand"
)

// processResponseFile returns the options in a response file, and the
// source, object and archive files among them.
func processResponseFile(path string) (options []string, sources []string, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	options, err = shlex.Split(string(content))
	if err != nil {
		return nil, nil, fmt.Errorf("shlex.Split %s: %v", path, err)
	}
	for _, option := range options {
		if strings.HasPrefix(option, "-") {
			continue
		}
		if slices.Contains(sourceExtensions, strings.ToLower(filepath.Ext(option))) {
			sources = append(sources, option)
		}
	}
	return options, sources, nil
}

// ExtendCompilationDatabaseEntries splices the content of @response files
// into the arguments of the entries referencing them. An entry whose file
// is itself a response file becomes one entry per source named in it.
// Missing response files are left out with a warning.
func ExtendCompilationDatabaseEntries(entries []compilecommand.CompileCommand) ([]compilecommand.CompileCommand, error) {
	result := make([]compilecommand.CompileCommand, 0, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry.Command, "@") && !hasResponseFile(entry.Arguments) {
			result = append(result, entry)
			continue
		}
		tokens, err := entry.Tokens()
		if err != nil {
			return nil, err
		}
		args := []string{}
		sources := []string{}
		for _, token := range tokens {
			if !strings.HasPrefix(token, "@") {
				args = append(args, token)
				continue
			}
			responseFile := filepath.Join(entry.Directory, token[1:])
			if !fileExists(responseFile) {
				glog.Warningf("Response file '%s' does not exist.", responseFile)
				continue
			}
			options, found, err := processResponseFile(responseFile)
			if err != nil {
				glog.Warningf("failed to read response file %s: %v", responseFile, err)
				continue
			}
			args = append(args, options...)
			sources = append(sources, found...)
		}
		expanded := entry
		expanded.Arguments = args
		if expanded.Command == "" {
			expanded.Command = strings.Join(entry.Arguments, " ")
		}
		if strings.Contains(entry.File, "@") {
			for _, source := range sources {
				e := expanded
				e.Arguments = slices.Clone(args)
				e.File = source
				result = append(result, e)
			}
			continue
		}
		result = append(result, expanded)
	}
	return result, nil
}

func hasResponseFile(args []string) bool {
	return slices.IndexFunc(args, func(arg string) bool {
		return strings.HasPrefix(arg, "@")
	}) != -1
}
