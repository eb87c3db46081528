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

package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteProgress(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir)
	tracker.WriteProgress(Assemble, "50%")
	content, err := os.ReadFile(filepath.Join(dir, "progress.json"))
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var progress Progress
	if err := json.Unmarshal(content, &progress); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if progress.StageID != Assemble || progress.DoneRatio != "50%" || progress.RunID != tracker.RunID() {
		t.Errorf("unexpected progress %+v", progress)
	}
}

func TestWriteProgressMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	NewTracker(dir).WriteProgress(Parse, "0%")
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected %s not to be created", dir)
	}
}

func TestNilTracker(t *testing.T) {
	var tracker *Tracker
	tracker.WriteProgress(END, "100%")
	tracker.WriteSummary(1, 0, 1)
	if tracker.RunID() != "" {
		t.Errorf("nil tracker has a run id")
	}
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir)
	tracker.WriteSummary(3, 1, 2)
	content, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var summary Summary
	if err := json.Unmarshal(content, &summary); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	expected := Summary{RunID: tracker.RunID(), Entries: 3, Skipped: 1, Actions: 2}
	if summary != expected {
		t.Errorf("unexpected result. parsed: %+v. expected: %+v.", summary, expected)
	}
}
