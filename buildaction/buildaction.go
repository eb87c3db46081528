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

// Package buildaction defines the normalized form of one compiler
// invocation, as handed to the analyzers.
package buildaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"naive.systems/ccdb/compilecommand"
)

type ActionType int

const (
	Unassigned ActionType = iota
	Link
	Compile
	Preprocess
	Info
)

func (t ActionType) String() string {
	switch t {
	case Link:
		return "LINK"
	case Compile:
		return "COMPILE"
	case Preprocess:
		return "PREPROCESS"
	case Info:
		return "INFO"
	}
	return "UNASSIGNED"
}

// Fields carries the values a BuildAction is created from.
// Target, CompilerIncludes and CompilerStandard are keyed by language.
type Fields struct {
	Source           string
	Compiler         string
	Lang             string
	ActionType       ActionType
	AnalyzerOptions  []string
	Arch             string
	Target           map[string]string
	CompilerIncludes map[string][]string
	CompilerStandard map[string]string
	Directory        string
	OriginalCommand  string
	Output           string
}

// BuildAction is immutable. Accessors return copies.
type BuildAction struct {
	f Fields
}

func New(f Fields) BuildAction {
	return BuildAction{f: copyFields(f)}
}

func copyFields(f Fields) Fields {
	c := f
	c.AnalyzerOptions = append([]string{}, f.AnalyzerOptions...)
	c.Target = make(map[string]string, len(f.Target))
	for lang, target := range f.Target {
		c.Target[lang] = target
	}
	c.CompilerIncludes = make(map[string][]string, len(f.CompilerIncludes))
	for lang, includes := range f.CompilerIncludes {
		c.CompilerIncludes[lang] = append([]string{}, includes...)
	}
	c.CompilerStandard = make(map[string]string, len(f.CompilerStandard))
	for lang, standard := range f.CompilerStandard {
		c.CompilerStandard[lang] = standard
	}
	return c
}

func (a BuildAction) Fields() Fields              { return copyFields(a.f) }
func (a BuildAction) Source() string              { return a.f.Source }
func (a BuildAction) Compiler() string            { return a.f.Compiler }
func (a BuildAction) Lang() string                { return a.f.Lang }
func (a BuildAction) ActionType() ActionType      { return a.f.ActionType }
func (a BuildAction) Arch() string                { return a.f.Arch }
func (a BuildAction) Directory() string           { return a.f.Directory }
func (a BuildAction) OriginalCommand() string     { return a.f.OriginalCommand }
func (a BuildAction) Output() string              { return a.f.Output }
func (a BuildAction) Target(lang string) string   { return a.f.Target[lang] }
func (a BuildAction) Standard(lang string) string { return a.f.CompilerStandard[lang] }

func (a BuildAction) AnalyzerOptions() []string {
	return append([]string{}, a.f.AnalyzerOptions...)
}

func (a BuildAction) CompilerIncludes(lang string) []string {
	return append([]string{}, a.f.CompilerIncludes[lang]...)
}

func (a BuildAction) String() string {
	return fmt.Sprintf("Original command: %s, Action type: %v, Analyzer options: %v, Directory: %s, Output: %s, Lang: %s, Target: %v, Source: %s",
		a.f.OriginalCommand, a.f.ActionType, a.f.AnalyzerOptions, a.f.Directory, a.f.Output, a.f.Lang, a.f.Target, a.f.Source)
}

// Hash identifies actions that analyze the same thing: the same options for
// the same source and target.
func (a BuildAction) Hash() string {
	content := append([]string{}, a.f.AnalyzerOptions...)
	content = append(content, a.f.ActionType.String(), a.f.Target[a.f.Lang], a.f.Source)
	sum := sha256.Sum256([]byte(strings.Join(content, "\x00")))
	return hex.EncodeToString(sum[:])
}

func hasFlag(flag string, options []string) bool {
	return slices.IndexFunc(options, func(option string) bool {
		return strings.HasPrefix(option, flag)
	}) != -1
}

// AnalyzerCommand renders the action as a compile-only command line of
// compiler, or of the original compiler if compiler is empty. Implicit
// language, target, standard and includes are made explicit unless the
// options already choose them.
func (a BuildAction) AnalyzerCommand(compiler string) []string {
	if compiler == "" {
		compiler = a.f.Compiler
	}
	lang := a.f.Lang
	cmd := []string{compiler, "-c"}
	if !hasFlag("-x", a.f.AnalyzerOptions) && lang != "" {
		cmd = append(cmd, "-x", lang)
	}
	if target := a.f.Target[lang]; target != "" && !hasFlag("--target", a.f.AnalyzerOptions) {
		cmd = append(cmd, "--target="+target)
	}
	if standard := a.f.CompilerStandard[lang]; standard != "" && !hasFlag("-std", a.f.AnalyzerOptions) && !hasFlag("--std", a.f.AnalyzerOptions) {
		cmd = append(cmd, standard)
	}
	cmd = append(cmd, a.f.AnalyzerOptions...)
	for _, include := range a.f.CompilerIncludes[lang] {
		cmd = append(cmd, "-isystem", include)
	}
	if a.f.Source != "" {
		cmd = append(cmd, a.f.Source)
	}
	if a.f.Output != "" {
		cmd = append(cmd, "-o", a.f.Output)
	}
	return cmd
}

// AnalyzerEntry is the compilation database record of AnalyzerCommand.
func (a BuildAction) AnalyzerEntry(compiler string) compilecommand.CompileCommand {
	return compilecommand.CompileCommand{
		Directory: a.f.Directory,
		File:      a.f.Source,
		Arguments: a.AnalyzerCommand(compiler),
		Output:    a.f.Output,
	}
}
