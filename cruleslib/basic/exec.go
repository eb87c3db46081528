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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/golang/glog"
)

var ErrTimeout = errors.New("command timed out")

// Invocation describes one external program run.
type Invocation struct {
	Args  []string
	Env   []string // nil inherits the environment of this process
	Dir   string
	Stdin string
}

func (inv Invocation) String() string {
	return strings.Join(inv.Args, " ")
}

// Executor runs external programs. Compilers are only ever started through
// an Executor so that tests can replace them.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (stdout, stderr []byte, err error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, inv Invocation) ([]byte, []byte, error)

func (f ExecutorFunc) Execute(ctx context.Context, inv Invocation) ([]byte, []byte, error) {
	return f(ctx, inv)
}

// CommandExecutor starts real processes. A zero Timeout means no limit.
type CommandExecutor struct {
	Timeout time.Duration
}

func (e CommandExecutor) Execute(ctx context.Context, inv Invocation) ([]byte, []byte, error) {
	if len(inv.Args) == 0 {
		return nil, nil, errors.New("empty command")
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, inv.Args[0], inv.Args[1:]...)
	c.Dir = inv.Dir
	c.Env = inv.Env
	c.Stdin = strings.NewReader(inv.Stdin)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	if ctx.Err() == context.DeadlineExceeded {
		glog.Errorf("%v timed out: over %v", inv, e.Timeout)
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%w: %v: over %v", ErrTimeout, inv, e.Timeout)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}
