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
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"naive.systems/ccdb/atomic"
)

// pipeline stages
const (
	Parse    int = iota // Reading and expanding compilation databases
	Assemble            // Building actions from entries
	Unique              // Uniqueing and filtering actions
	Check               // Compiling entries with clang
	END
)

type Progress struct {
	RunID     string    `json:"run_id"`
	StageID   int       `json:"stage_id"`
	DoneRatio string    `json:"done_ratio"`
	StartedAt time.Time `json:"started_at"`
}

// Summary counts what happened to the entries of one run.
type Summary struct {
	RunID   string `json:"run_id"`
	Entries int    `json:"entries"`
	Skipped int    `json:"skipped"`
	Actions int    `json:"actions"`
}

// Tracker writes the progress of one run into resultDir. A nil Tracker
// writes nothing.
type Tracker struct {
	resultDir string
	runID     string
	startedAt time.Time
}

func NewTracker(resultDir string) *Tracker {
	return &Tracker{
		resultDir: resultDir,
		runID:     uuid.NewString(),
		startedAt: time.Now(),
	}
}

func (t *Tracker) RunID() string {
	if t == nil {
		return ""
	}
	return t.runID
}

func (t *Tracker) WriteProgress(stageID int, doneRatio string) {
	if t == nil {
		return
	}
	WriteProgress(t.resultDir, t.runID, stageID, doneRatio, t.startedAt)
}

// WriteProgressSince is WriteProgress for a stage timed by its caller.
func (t *Tracker) WriteProgressSince(stageID int, doneRatio string, startedAt time.Time) {
	if t == nil {
		return
	}
	WriteProgress(t.resultDir, t.runID, stageID, doneRatio, startedAt)
}

func (t *Tracker) WriteSummary(entries, skipped, actions int) {
	if t == nil {
		return
	}
	path := filepath.Join(t.resultDir, "summary.json")
	err := atomic.WriteJSON(path, Summary{RunID: t.runID, Entries: entries, Skipped: skipped, Actions: actions})
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}

func WriteProgress(resultDir, runID string, stageID int, doneRatio string, startedAt time.Time) {
	// skip writing it if resultDir does not exist
	_, err := os.Stat(resultDir)
	if os.IsNotExist(err) {
		glog.Warningf("result dir %s does not exist", resultDir)
		return
	}
	path := filepath.Join(resultDir, "progress.json")
	progress, err := json.Marshal(Progress{RunID: runID, StageID: stageID, DoneRatio: doneRatio, StartedAt: startedAt})
	if err != nil {
		glog.Errorf("failed to marshal json stageID %d and doneRatio %s: %v", stageID, doneRatio, err)
		return
	}
	err = atomic.Write(path, progress)
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}
