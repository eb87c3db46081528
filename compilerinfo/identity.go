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
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"
	"naive.systems/ccdb/clangversion"
	"naive.systems/ccdb/cruleslib/basic"
)

// VersionFunc reports the Clang version of compiler, or nil if compiler is
// not Clang compatible.
type VersionFunc func(ctx context.Context, compiler string, env []string) (*clangversion.VersionInfo, error)

// Resolver finds the real compiler of a command and tells whether it is
// Clang. Every answer is cached for the lifetime of the Resolver, negative
// answers included.
type Resolver struct {
	// LookPath and GetVersion may be replaced before first use.
	LookPath   func(file string) (string, error)
	GetVersion VersionFunc
	Env        []string

	mu          sync.Mutex
	executables map[string]bool
	versions    map[string]*clangversion.VersionInfo
	group       singleflight.Group
}

func NewResolver(executor basic.Executor) *Resolver {
	return &Resolver{
		LookPath: exec.LookPath,
		GetVersion: func(ctx context.Context, compiler string, env []string) (*clangversion.VersionInfo, error) {
			return clangversion.Get(ctx, executor, compiler, env)
		},
		executables: make(map[string]bool),
		versions:    make(map[string]*clangversion.VersionInfo),
	}
}

func (r *Resolver) IsExecutable(compiler string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if executable, ok := r.executables[compiler]; ok {
		return executable
	}
	_, err := r.LookPath(compiler)
	r.executables[compiler] = err == nil
	return err == nil
}

// DetermineCompiler returns the compiler of command and the arguments that
// follow it. For `ccache g++ ...` the compiler is g++ when g++ can be found,
// otherwise ccache itself is reported.
func (r *Resolver) DetermineCompiler(command []string) (string, []string) {
	if len(command) == 0 {
		return "", nil
	}
	if strings.HasSuffix(filepath.Base(command[0]), "ccache") && len(command) > 1 {
		if r.IsExecutable(command[1]) {
			return command[1], command[2:]
		}
		glog.Warningf("compiler wrapped by %s is not executable: %s", command[0], command[1])
	}
	return command[0], command[1:]
}

// ClangVersion runs the version query at most once per compiler, even when
// called concurrently. A failed query is remembered as "not Clang".
func (r *Resolver) ClangVersion(ctx context.Context, compiler string) *clangversion.VersionInfo {
	if info, ok := r.cachedVersion(compiler); ok {
		return info
	}
	v, _, _ := r.group.Do(compiler, func() (any, error) {
		if info, ok := r.cachedVersion(compiler); ok {
			return info, nil
		}
		info, err := r.GetVersion(ctx, compiler, r.Env)
		if err != nil {
			glog.V(1).Infof("%s is not considered clang: %v", compiler, err)
			info = nil
		}
		r.mu.Lock()
		r.versions[compiler] = info
		r.mu.Unlock()
		return info, nil
	})
	return v.(*clangversion.VersionInfo)
}

func (r *Resolver) cachedVersion(compiler string) (*clangversion.VersionInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.versions[compiler]
	return info, ok
}
