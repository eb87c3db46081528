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
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/google/shlex"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
	"naive.systems/ccdb/atomic"
	"naive.systems/ccdb/cruleslib/basic"
)

const (
	LangC   = "c"
	LangCXX = "c++"
)

// Languages are the languages a compiler is profiled for, whatever the
// language of the command that triggered the probe.
var Languages = []string{LangC, LangCXX}

// LanguageInfo is what a compiler does implicitly for one language.
type LanguageInfo struct {
	Includes []string
	Standard string
	Target   string
}

// Profile maps LangC and LangCXX to their LanguageInfo.
type Profile map[string]LanguageInfo

// languageRecord is the on-disk form of LanguageInfo. Includes are stored as
// "-isystem <path>" strings.
type languageRecord struct {
	CompilerIncludes []string `json:"compiler_includes"`
	CompilerStandard string   `json:"compiler_standard"`
	Target           string   `json:"target"`
}

type fileContents map[string]map[string]languageRecord

// Cache holds the profiles of every compiler seen during a run. A compiler
// is probed at most once, concurrent requests wait for the running probe.
type Cache struct {
	executor basic.Executor

	mu       sync.Mutex
	profiles map[string]Profile
	files    map[string]fileContents
	missing  map[string]bool
	group    singleflight.Group
}

func NewCache(executor basic.Executor) *Cache {
	return &Cache{
		executor: executor,
		profiles: make(map[string]Profile),
		files:    make(map[string]fileContents),
		missing:  make(map[string]bool),
	}
}

func (c *Cache) Get(compiler string) (Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	profile, ok := c.profiles[compiler]
	return profile, ok
}

// Compilers returns the cached compilers in sorted order.
func (c *Cache) Compilers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	compilers := make([]string, 0, len(c.profiles))
	for compiler := range c.profiles {
		compilers = append(compilers, compiler)
	}
	slices.Sort(compilers)
	return compilers
}

// Probe returns the profile of compiler, asking the compiler itself on the
// first call. flags are the options of the command that caused the probe,
// only those affecting the include search are passed on.
func (c *Cache) Probe(ctx context.Context, compiler string, flags []string) Profile {
	if profile, ok := c.Get(compiler); ok {
		return profile
	}
	v, _, _ := c.group.Do(compiler, func() (any, error) {
		if profile, ok := c.Get(compiler); ok {
			return profile, nil
		}
		target := getCompilerTarget(ctx, c.executor, compiler)
		profile := Profile{}
		for _, lang := range Languages {
			profile[lang] = LanguageInfo{
				Includes: getCompilerIncludes(ctx, c.executor, compiler, lang, flags),
				Standard: getCompilerStandard(ctx, c.executor, compiler, lang),
				Target:   target,
			}
		}
		c.mu.Lock()
		c.profiles[compiler] = profile
		c.mu.Unlock()
		glog.Infof("probed compiler %s", compiler)
		return profile, nil
	})
	return v.(Profile)
}

// Load takes the profile of compiler from a file written by Save. The file
// is read once per Cache. A compiler absent from the file yields false.
func (c *Cache) Load(filename, compiler string) (Profile, bool) {
	contents := c.readFile(filename)
	record, ok := contents[compiler]
	if !ok {
		c.mu.Lock()
		if !c.missing[compiler] {
			glog.Errorf("could not find compiler %s in file %s", compiler, filename)
			c.missing[compiler] = true
		}
		c.mu.Unlock()
		return nil, false
	}
	profile := Profile{}
	for _, lang := range Languages {
		info := LanguageInfo{Includes: []string{}}
		if langRecord, ok := record[lang]; ok {
			info.Includes = includesFromRecord(langRecord.CompilerIncludes)
			info.Standard = langRecord.CompilerStandard
			info.Target = langRecord.Target
		}
		profile[lang] = info
	}
	c.mu.Lock()
	c.profiles[compiler] = profile
	c.mu.Unlock()
	return profile, true
}

func (c *Cache) readFile(filename string) fileContents {
	c.mu.Lock()
	defer c.mu.Unlock()
	if contents, ok := c.files[filename]; ok {
		return contents
	}
	contents := fileContents{}
	data, err := os.ReadFile(filename)
	if err != nil {
		glog.Errorf("failed to read compiler info file %s: %v", filename, err)
	} else if err := json.Unmarshal(data, &contents); err != nil {
		glog.Errorf("failed to parse compiler info file %s: %v", filename, err)
		contents = fileContents{}
	}
	c.files[filename] = contents
	return contents
}

// Save writes every cached profile to filename.
func (c *Cache) Save(filename string) error {
	c.mu.Lock()
	contents := fileContents{}
	for compiler, profile := range c.profiles {
		record := map[string]languageRecord{}
		for lang, info := range profile {
			includes := make([]string, 0, len(info.Includes))
			for _, include := range info.Includes {
				includes = append(includes, "-isystem "+quoteArg(include))
			}
			record[lang] = languageRecord{
				CompilerIncludes: includes,
				CompilerStandard: info.Standard,
				Target:           info.Target,
			}
		}
		contents[compiler] = record
	}
	c.mu.Unlock()
	if err := atomic.WriteJSON(filename, contents); err != nil {
		return fmt.Errorf("failed to write compiler info file %s: %v", filename, err)
	}
	return nil
}

// includesFromRecord drops the include flags from entries like
// "-isystem /usr/include" and keeps the paths.
func includesFromRecord(entries []string) []string {
	includes := []string{}
	for _, entry := range entries {
		tokens, err := shlex.Split(entry)
		if err != nil {
			glog.Warningf("malformed include entry %q: %v", entry, err)
			continue
		}
		for _, token := range tokens {
			if strings.HasPrefix(token, "-") {
				continue
			}
			includes = append(includes, token)
		}
	}
	return includes
}

func quoteArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\#") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}
