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

package buildaction

import (
	"fmt"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
	"naive.systems/ccdb/atomic"
)

// InvocationList maps absolute source paths to the command that parses them
// for cross translation unit analysis.
type InvocationList map[string][]string

func NewInvocationList(actions []BuildAction, compiler string) InvocationList {
	list := InvocationList{}
	for _, action := range actions {
		if action.Source() == "" {
			continue
		}
		if _, exist := list[action.Source()]; exist {
			glog.Warningf("more than one invocation for %s, keeping the first", action.Source())
			continue
		}
		cmd := action.AnalyzerCommand(compiler)
		list[action.Source()] = append(cmd, "-D__clang_analyzer__", "-w")
	}
	return list
}

func WriteInvocationList(path string, list InvocationList) error {
	content, err := yaml.Marshal(map[string][]string(list))
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %v", err)
	}
	if err := atomic.Write(path, content); err != nil {
		return fmt.Errorf("atomic.Write: %v", err)
	}
	return nil
}

func ReadInvocationList(content []byte) (InvocationList, error) {
	list := InvocationList{}
	if err := yaml.Unmarshal(content, &list); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %v", err)
	}
	return list, nil
}
