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

// OptionCursor walks over the arguments of one command. Processors read the
// current argument and may consume the arguments that follow it.
type OptionCursor struct {
	args []string
	pos  int
}

func NewOptionCursor(args []string) *OptionCursor {
	return &OptionCursor{args: args}
}

func (c *OptionCursor) Done() bool {
	return c.pos >= len(c.args)
}

func (c *OptionCursor) Current() string {
	if c.Done() {
		return ""
	}
	return c.args[c.pos]
}

func (c *OptionCursor) Advance() {
	if !c.Done() {
		c.pos++
	}
}

func (c *OptionCursor) PeekNext() (string, bool) {
	if c.pos+1 >= len(c.args) {
		return "", false
	}
	return c.args[c.pos+1], true
}

// ConsumeNext moves onto the next argument and returns it. At the last
// argument it returns false and stays in place.
func (c *OptionCursor) ConsumeNext() (string, bool) {
	next, ok := c.PeekNext()
	if ok {
		c.pos++
	}
	return next, ok
}
