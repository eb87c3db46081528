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

package basic

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFormatTimeDuration(t *testing.T) {
	for _, testCase := range []struct {
		duration time.Duration
		expected string
	}{
		{3 * time.Second, "3s"},
		{1250 * time.Millisecond, "1.25s"},
		{2005 * time.Millisecond, "2.005s"},
		{100 * time.Millisecond, "0.1s"},
		{500 * time.Microsecond, "0s"},
	} {
		if got := FormatTimeDuration(testCase.duration); got != testCase.expected {
			t.Errorf("unexpected result for %v. parsed: %v. expected: %v.", testCase.duration, got, testCase.expected)
		}
	}
}

func TestGetPercentString(t *testing.T) {
	if got := GetPercentString(1, 3); got != "33%" {
		t.Errorf("unexpected percent %s", got)
	}
	if got := GetPercentString(0, 0); got != "100%" {
		t.Errorf("unexpected percent for an empty batch %s", got)
	}
}

func TestCommandExecutor(t *testing.T) {
	e := CommandExecutor{Timeout: 10 * time.Second}
	stdout, stderr, err := e.Execute(context.Background(), Invocation{
		Args:  []string{"sh", "-c", "cat; echo err >&2"},
		Stdin: "in",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(stdout) != "in" || string(stderr) != "err\n" {
		t.Errorf("unexpected output stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestCommandExecutorTimeout(t *testing.T) {
	e := CommandExecutor{Timeout: 50 * time.Millisecond}
	_, _, err := e.Execute(context.Background(), Invocation{Args: []string{"sleep", "5"}})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected a timeout, got %v", err)
	}
}
