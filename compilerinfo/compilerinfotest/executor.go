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

// Package compilerinfotest provides an in-memory compiler for tests.
package compilerinfotest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
	"naive.systems/ccdb/cruleslib/basic"
)

// Compiler describes how a fake compiler answers the probes.
type Compiler struct {
	Clang     bool
	Target    string
	Includes  map[string][]string // keyed by "c" and "c++"
	Standards map[string]string   // marker value, e.g. "17"
}

// Executor answers version, target, include and standard probes for the
// registered compilers and records every invocation.
type Executor struct {
	mu          sync.Mutex
	compilers   map[string]Compiler
	invocations []basic.Invocation
}

func NewExecutor() *Executor {
	return &Executor{compilers: make(map[string]Compiler)}
}

func (e *Executor) Add(path string, compiler Compiler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compilers[path] = compiler
}

func (e *Executor) Invocations() []basic.Invocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]basic.Invocation{}, e.invocations...)
}

func (e *Executor) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.invocations)
}

func (e *Executor) Execute(ctx context.Context, inv basic.Invocation) ([]byte, []byte, error) {
	e.mu.Lock()
	e.invocations = append(e.invocations, inv)
	compiler, ok := e.compilers[inv.Args[0]]
	e.mu.Unlock()
	if !ok {
		return nil, nil, errors.New("executable file not found in $PATH")
	}
	args := inv.Args[1:]
	switch {
	case len(args) == 1 && args[0] == "--version":
		if compiler.Clang {
			banner := fmt.Sprintf("clang version 14.0.6\nTarget: %s\nThread model: posix\nInstalledDir: /usr/bin\n", compiler.Target)
			return []byte(banner), nil, nil
		}
		return []byte("gcc (GCC) 11.4.0\nCopyright (C) 2021 Free Software Foundation, Inc.\n"), nil, nil
	case len(args) == 1 && args[0] == "-v":
		return nil, []byte(fmt.Sprintf("Using built-in specs.\nTarget: %s\nThread model: posix\n", compiler.Target)), nil
	case slices.Contains(args, "-E"):
		lang := "c"
		for i, arg := range args {
			if arg == "-x" && i+1 < len(args) {
				lang = args[i+1]
			}
		}
		var stderr strings.Builder
		stderr.WriteString("#include \"...\" search starts here:\n")
		stderr.WriteString("#include <...> search starts here:\n")
		for _, include := range compiler.Includes[lang] {
			stderr.WriteString(" " + include + "\n")
		}
		stderr.WriteString("End of search list.\n")
		return nil, []byte(stderr.String()), nil
	default:
		lang := "c++"
		if strings.HasSuffix(args[len(args)-1], ".c") {
			lang = "c"
		}
		stderr := fmt.Sprintf("probe: error: #error CC_FOUND_STANDARD_VER#%s\n", compiler.Standards[lang])
		return nil, []byte(stderr), errors.New("exit status 1")
	}
}
