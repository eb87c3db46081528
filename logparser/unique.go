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
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"naive.systems/ccdb/buildaction"
	"naive.systems/ccdb/compilecommand"
	"naive.systems/ccdb/cruleslib/i18n"
	"naive.systems/ccdb/cruleslib/stats"
)

type UniqueingPolicy int

const (
	// UniqueFullText keeps the first of the actions with the same hash.
	UniqueFullText UniqueingPolicy = iota
	// UniqueStrict fails on two actions for the same source.
	UniqueStrict
	// UniqueAlpha keeps the action whose output sorts first.
	UniqueAlpha
	// UniquePattern keeps the action whose command matches a pattern.
	UniquePattern
)

type Uniqueing struct {
	Policy  UniqueingPolicy
	Pattern *regexp.Regexp
}

// ParseUniqueing reads the uniqueing mode of a run. Anything but the
// known mode names is a regular expression matched at the start of the
// original commands.
func ParseUniqueing(mode string) (Uniqueing, error) {
	switch mode {
	case "", "none", "full-text":
		return Uniqueing{Policy: UniqueFullText}, nil
	case "strict":
		return Uniqueing{Policy: UniqueStrict}, nil
	case "alpha", "alphabetical":
		return Uniqueing{Policy: UniqueAlpha}, nil
	}
	re, err := regexp.Compile("^(?:" + mode + ")")
	if err != nil {
		return Uniqueing{}, fmt.Errorf("invalid uniqueing pattern %q: %v", mode, err)
	}
	return Uniqueing{Policy: UniquePattern, Pattern: re}, nil
}

// UniqueingError reports two commands of the same source that could not be
// told apart.
type UniqueingError struct {
	Source      string
	Kept        string
	Conflicting string
	Pattern     string
}

func (e *UniqueingError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("build action uniqueing failed as both \n %s\n and \n %s \n match regex pattern: %s", e.Kept, e.Conflicting, e.Pattern)
	}
	return fmt.Sprintf("build action uniqueing failed as both '%s' and '%s' compile %s", e.Kept, e.Conflicting, e.Source)
}

// uniquer keeps one action per key, in the order the keys were first seen.
type uniquer struct {
	uniqueing Uniqueing
	keys      []string
	actions   map[string]buildaction.BuildAction
}

func newUniquer(u Uniqueing) *uniquer {
	return &uniquer{uniqueing: u, actions: make(map[string]buildaction.BuildAction)}
}

func (u *uniquer) add(action buildaction.BuildAction) error {
	key := action.Source()
	if u.uniqueing.Policy == UniqueFullText {
		key = action.Hash()
	}
	kept, exists := u.actions[key]
	if !exists {
		u.keys = append(u.keys, key)
		u.actions[key] = action
		return nil
	}
	switch u.uniqueing.Policy {
	case UniqueStrict:
		return &UniqueingError{Source: key, Kept: kept.OriginalCommand(), Conflicting: action.OriginalCommand()}
	case UniqueAlpha:
		if action.Output() < kept.Output() {
			u.actions[key] = action
		}
	case UniquePattern:
		re := u.uniqueing.Pattern
		newMatches := re.MatchString(action.OriginalCommand())
		keptMatches := re.MatchString(kept.OriginalCommand())
		switch {
		case newMatches && !keptMatches:
			u.actions[key] = action
		case newMatches && keptMatches:
			return &UniqueingError{Source: key, Kept: kept.OriginalCommand(), Conflicting: action.OriginalCommand(), Pattern: re.String()}
		case !newMatches && !keptMatches:
			glog.Warningf("neither %q nor %q matches the uniqueing pattern %s, keeping the first", kept.OriginalCommand(), action.OriginalCommand(), re)
		}
	}
	return nil
}

func (u *uniquer) result() []buildaction.BuildAction {
	result := make([]buildaction.BuildAction, 0, len(u.keys))
	for _, key := range u.keys {
		result = append(result, u.actions[key])
	}
	return result
}

type Result struct {
	Actions []buildaction.BuildAction
	// Skipped is the number of entries left out by the skip handlers.
	Skipped int
}

func (p *Parser) shouldSkip(file string) bool {
	opts := p.Options
	if opts.AnalysisSkip == nil || !opts.AnalysisSkip.ShouldSkip(file) {
		return false
	}
	// Files needed by the pre-analysis are kept for CTU and statistics.
	return !opts.CtuOrStatsEnabled || (opts.PreAnalysisSkip != nil && opts.PreAnalysisSkip.ShouldSkip(file))
}

// ParseUniqueLog turns a compilation database into the build actions to
// analyze: GCC specific flags are adapted for Clang, skipped files are left
// out, and duplicate actions are resolved by the uniqueing mode. The
// compiler info is saved to <ReportDir>/compiler_info.json.
func (p *Parser) ParseUniqueLog(ctx context.Context, db []compilecommand.CompileCommand) (Result, error) {
	uniqueing, err := ParseUniqueing(p.Options.Uniqueing)
	if err != nil {
		return Result{}, err
	}
	var tracker *stats.Tracker
	if p.Options.CheckProgress && p.Options.ReportDir != "" {
		tracker = stats.NewTracker(p.Options.ReportDir)
	}
	printer := i18n.GetPrinter(p.Options.Lang)

	tracker.WriteProgress(stats.Parse, "0%")
	entries, err := ExtendCompilationDatabaseEntries(db)
	if err != nil {
		return Result{}, err
	}
	glog.Info(printer.Sprintf("Expanded response files: %d entries", len(entries)))
	for _, entry := range entries {
		if _, err := entry.Tokens(); err != nil {
			return Result{}, err
		}
	}

	result := Result{}
	todo := []compilecommand.CompileCommand{}
	for _, entry := range entries {
		// The skip handlers need the same normalized path for every entry.
		entry.File = absPath(entry.Directory, entry.File)
		if p.shouldSkip(entry.File) {
			result.Skipped++
			continue
		}
		todo = append(todo, entry)
	}
	if result.Skipped > 0 {
		glog.Info(printer.Sprintf("Skipped %d compile commands", result.Skipped))
	}

	tracker.WriteProgress(stats.Assemble, "0%")
	workers := p.Options.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	partials := make([]partialAction, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range todo {
		i := i
		g.Go(func() error {
			pa, err := p.parseFlags(gctx, todo[i])
			if err != nil {
				return fmt.Errorf("%s: %v", todo[i].File, err)
			}
			partials[i] = pa
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// A compiler is probed with the flags of its first entry in the
	// database, whichever worker gets to it first.
	probeFlags := map[string][]string{}
	for _, pa := range partials {
		if _, ok := probeFlags[pa.fields.Compiler]; pa.probes() && !ok {
			probeFlags[pa.fields.Compiler] = pa.fields.AnalyzerOptions
		}
	}

	actions := make([]buildaction.BuildAction, len(partials))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range partials {
		i := i
		g.Go(func() error {
			actions[i] = p.complete(gctx, partials[i], probeFlags[partials[i].fields.Compiler])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	tracker.WriteProgress(stats.Unique, "0%")
	u := newUniquer(uniqueing)
	for _, action := range actions {
		if action.Lang() == "" || action.ActionType() != buildaction.Compile {
			continue
		}
		if err := u.add(action); err != nil {
			glog.Error(err)
			return Result{}, err
		}
	}
	result.Actions = u.result()
	glog.Info(printer.Sprintf("Kept %d build actions", len(result.Actions)))

	if p.Options.ReportDir != "" {
		path := filepath.Join(p.Options.ReportDir, "compiler_info.json")
		if err := p.Profiles.Save(path); err != nil {
			glog.Errorf("failed to write compiler info to %s: %v", path, err)
		}
	}
	tracker.WriteProgress(stats.END, "100%")
	tracker.WriteSummary(len(entries), result.Skipped, len(result.Actions))
	return result, nil
}
