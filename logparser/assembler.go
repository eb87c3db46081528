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
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"naive.systems/ccdb/buildaction"
	"naive.systems/ccdb/compilecommand"
	"naive.systems/ccdb/compilerinfo"
	"naive.systems/ccdb/cruleslib/basic"
)

// SkipHandler decides whether a source file is left out of the analysis.
type SkipHandler interface {
	ShouldSkip(path string) bool
}

type Options struct {
	// CompilerInfoFile, when it exists, is used instead of probing compilers.
	CompilerInfoFile    string
	KeepGccIncludeFixed bool
	KeepGccIntrin       bool
	// Uniqueing is "none", "strict", "alpha" or a regular expression.
	Uniqueing         string
	ReportDir         string
	AnalysisSkip      SkipHandler
	PreAnalysisSkip   SkipHandler
	CtuOrStatsEnabled bool
	NumWorkers        int
	CheckProgress     bool
	Lang              string
}

// Parser turns compilation database entries into build actions. The
// compiler caches it holds are shared by every entry it parses.
type Parser struct {
	Resolver *compilerinfo.Resolver
	Profiles *compilerinfo.Cache
	Options  Options
}

func NewParser(executor basic.Executor, opts Options) *Parser {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = runtime.NumCPU()
	}
	return &Parser{
		Resolver: compilerinfo.NewResolver(executor),
		Profiles: compilerinfo.NewCache(executor),
		Options:  opts,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ParseOptions builds the action of one compilation database entry. GCC
// specific flags are dropped or rewritten for Clang, and the implicit
// include paths, standard and target of the compiler are added.
func (p *Parser) ParseOptions(ctx context.Context, entry compilecommand.CompileCommand) (buildaction.BuildAction, error) {
	pa, err := p.parseFlags(ctx, entry)
	if err != nil {
		return buildaction.BuildAction{}, err
	}
	return p.complete(ctx, pa, pa.fields.AnalyzerOptions), nil
}

// partialAction is an entry whose flags are parsed but whose compiler
// profile is not merged yet.
type partialAction struct {
	fields buildaction.Fields
	// needsProfile is set when the compiler profile is merged in.
	needsProfile bool
	fromFile     bool
}

// probes tells whether completing pa may run the compiler probes.
func (pa partialAction) probes() bool {
	return pa.needsProfile && !pa.fromFile
}

func (p *Parser) parseFlags(ctx context.Context, entry compilecommand.CompileCommand) (partialAction, error) {
	command, err := entry.Tokens()
	if err != nil {
		return partialAction{}, err
	}
	d := &details{
		directory:       entry.Directory,
		analyzerOptions: []string{},
	}
	compiler, args := p.Resolver.DetermineCompiler(command)
	if strings.Contains(filepath.Base(compiler), "++") {
		d.lang = compilerinfo.LangCXX
	}

	chain := gccChain
	clang := p.Resolver.ClangVersion(ctx, compiler) != nil
	if clang {
		chain = clangChain
	}
	runChain(chain, args, d)

	if d.actionType == buildaction.Unassigned {
		d.actionType = buildaction.Compile
	}

	source := entry.File
	if source == "." {
		source = ""
	}
	if source != "" {
		source = absPath(entry.Directory, source)
	}
	extLang := extMappingLang[filepath.Ext(source)]
	if extLang != "" {
		if d.lang == "" {
			d.lang = extLang
		}
	} else {
		d.actionType = buildaction.Link
	}

	f := buildaction.Fields{
		Source:           source,
		Compiler:         compiler,
		Lang:             d.lang,
		ActionType:       d.actionType,
		AnalyzerOptions:  d.analyzerOptions,
		Arch:             d.arch,
		Target:           map[string]string{},
		CompilerIncludes: map[string][]string{},
		CompilerStandard: map[string]string{},
		Directory:        entry.Directory,
		OriginalCommand:  entry.OriginalCommand(),
		Output:           d.output,
	}
	if extLang != "" {
		f.Target[extLang] = d.arch
	}

	// Clang given a GCC toolchain finds its own implicit paths, and those of
	// the host compiler could conflict with them.
	toolchain := gccToolchainInArgs(f.AnalyzerOptions)
	infoFile := p.Options.CompilerInfoFile
	infoFileExists := infoFile != "" && fileExists(infoFile)
	needsProfile := (toolchain == "" && !clang) || infoFileExists
	if !needsProfile && toolchain != "" {
		glog.V(1).Infof("%s: not probing %s, toolchain %s given", source, compiler, toolchain)
	}
	return partialAction{fields: f, needsProfile: needsProfile, fromFile: infoFileExists}, nil
}

// complete merges the compiler profile into pa and filters the GCC
// specific include paths. probeFlags are the options passed to the include
// probe if the compiler was not probed yet.
func (p *Parser) complete(ctx context.Context, pa partialAction, probeFlags []string) buildaction.BuildAction {
	f := pa.fields
	if pa.needsProfile {
		p.mergeProfile(ctx, &f, pa.fromFile, probeFlags)
	}

	if !p.Options.KeepGccIncludeFixed {
		for lang, includes := range f.CompilerIncludes {
			f.CompilerIncludes[lang] = filter(includes, isNotIncludeFixed)
		}
	}
	if !p.Options.KeepGccIntrin {
		for lang, includes := range f.CompilerIncludes {
			f.CompilerIncludes[lang] = filter(includes, containsNoIntrinsicHeaders)
		}
		f.AnalyzerOptions = filterOutIntrinOptions(f.AnalyzerOptions)
	}
	return buildaction.New(f)
}

// mergeProfile fills in what flag parsing left empty from the profile of
// the compiler.
func (p *Parser) mergeProfile(ctx context.Context, f *buildaction.Fields, fromFile bool, probeFlags []string) {
	var profile compilerinfo.Profile
	ok := false
	if fromFile {
		profile, ok = p.Profiles.Load(p.Options.CompilerInfoFile, f.Compiler)
		if !ok {
			// Profiles probed earlier in this run are still usable.
			profile, ok = p.Profiles.Get(f.Compiler)
		}
	} else {
		profile, ok = p.Profiles.Probe(ctx, f.Compiler, probeFlags), true
	}
	if !ok {
		return
	}
	for _, lang := range compilerinfo.Languages {
		info, found := profile[lang]
		if !found {
			continue
		}
		if len(f.CompilerIncludes[lang]) == 0 && len(info.Includes) > 0 {
			f.CompilerIncludes[lang] = append([]string{}, info.Includes...)
		}
		if f.CompilerStandard[lang] == "" && info.Standard != "" {
			f.CompilerStandard[lang] = info.Standard
		}
		if f.Target[lang] == "" && info.Target != "" {
			f.Target[lang] = info.Target
		}
	}
}
