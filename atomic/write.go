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

// Package atomic replaces files so that readers never observe a partially
// written compiler info cache, progress file or database.
package atomic

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write replaces name with data. The content goes to a temporary file in the
// same directory first, which is then renamed over name.
func Write(name string, data []byte) error {
	pattern := "tmp-*-" + filepath.Base(name)
	f, err := os.CreateTemp(filepath.Dir(name), pattern)
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %v", err)
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write to file %s: %v", tmpName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %v", tmpName, err)
	}
	// CreateTemp uses 0600, the outputs are meant to be shared
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("os.Chmod: %v", err)
	}
	if err := os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("failed to rename file %s to %s: %v", tmpName, name, err)
	}
	return nil
}

// WriteJSON marshals v with two-space indentation and writes it with Write.
func WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %v", err)
	}
	return Write(name, append(data, '\n'))
}
