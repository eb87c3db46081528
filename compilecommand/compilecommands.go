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

package compilecommand

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"
	"naive.systems/ccdb/atomic"
)

// CompileCommand is one record of a compilation database.
// If both Arguments and Command are given, Arguments wins.
type CompileCommand struct {
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Output    string   `json:"output,omitempty"`
}

var (
	ErrEmptyDatabase     = errors.New("the compile database is empty")
	ErrMalformedDatabase = errors.New("the compile database is not valid")
	ErrNoCommand         = errors.New("entry has neither command nor arguments")
)

// Tokens returns the argument vector of the entry, splitting Command with
// shell quoting rules when Arguments is absent.
func (cc CompileCommand) Tokens() ([]string, error) {
	if len(cc.Arguments) > 0 {
		return cc.Arguments, nil
	}
	if strings.TrimSpace(cc.Command) == "" {
		return nil, fmt.Errorf("%w: file %q in %q", ErrNoCommand, cc.File, cc.Directory)
	}
	tokens, err := shlex.Split(cc.Command)
	if err != nil {
		return nil, fmt.Errorf("shlex.Split %q: %v", cc.Command, err)
	}
	return tokens, nil
}

// OriginalCommand is the command as it was written in the database.
func (cc CompileCommand) OriginalCommand() string {
	if cc.Command != "" {
		return cc.Command
	}
	return strings.Join(cc.Arguments, " ")
}

func ReadCompileCommandsFromFile(compileCommandsPath string) ([]CompileCommand, error) {
	byteContent, err := os.ReadFile(compileCommandsPath)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	return ParseCompileCommands(byteContent, compileCommandsPath)
}

// ParseCompileCommands decodes a database read from name.
func ParseCompileCommands(byteContent []byte, name string) ([]CompileCommand, error) {
	if len(bytes.TrimSpace(byteContent)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDatabase, name)
	}
	commands := []CompileCommand{}
	err := json.Unmarshal(byteContent, &commands)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDatabase, name, err)
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDatabase, name)
	}
	glog.V(1).Infof("read %d entries from %s", len(commands), name)
	return commands, nil
}

// ReadAll reads every database in order and flattens them into one batch.
func ReadAll(paths []string) ([]CompileCommand, error) {
	all := []CompileCommand{}
	for _, path := range paths {
		commands, err := ReadCompileCommandsFromFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, commands...)
	}
	return all, nil
}

func WriteCompileCommandsToFile(compileCommandsPath string, commands []CompileCommand) error {
	if commands == nil {
		commands = []CompileCommand{}
	}
	err := atomic.WriteJSON(compileCommandsPath, commands)
	if err != nil {
		return fmt.Errorf("atomic.WriteJSON: %v", err)
	}
	return nil
}
