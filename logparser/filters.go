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
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
)

func filter(list []string, keep func(string) bool) []string {
	result := []string{}
	for _, s := range list {
		if keep(s) {
			result = append(result, s)
		}
	}
	return result
}

// isNotIncludeFixed returns true if dirname is NOT the GCC specific
// include-fixed directory of standard headers.
func isNotIncludeFixed(dirname string) bool {
	return filepath.Base(filepath.Clean(dirname)) != "include-fixed"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// containsNoIntrinsicHeaders returns true if dirname has no *intrin.h
// header. A missing directory has none.
func containsNoIntrinsicHeaders(dirname string) bool {
	if _, err := os.Stat(dirname); err != nil {
		return true
	}
	matches, err := doublestar.Glob(os.DirFS(dirname), "*intrin.h")
	if err != nil {
		glog.Warningf("failed to list %s: %v", dirname, err)
		return true
	}
	return len(matches) == 0
}

// filterOutIntrinOptions drops include flags naming a directory of
// intrinsic headers, with their argument.
func filterOutIntrinOptions(options []string) []string {
	result := []string{}
	for i := 0; i < len(options); i++ {
		option := options[i]
		flag := includeOptionsMerged.FindString(option)
		if flag == "" {
			result = append(result, option)
			continue
		}
		together := len(flag) != len(option)
		var value string
		if together {
			value = option[len(flag):]
		} else {
			if i+1 >= len(options) {
				result = append(result, option)
				continue
			}
			i++
			value = options[i]
		}
		if isDir(value) && !containsNoIntrinsicHeaders(value) {
			glog.V(1).Infof("dropping %s %s: contains intrinsic headers", flag, value)
			continue
		}
		if together {
			result = append(result, option)
		} else {
			result = append(result, option, value)
		}
	}
	return result
}
