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

/*
Package skiplist decides which source files are left out of the analysis.

A skip list has one rule per line:

	-/skip/all/source/in/directory*
	-/do/not/check/this.file
	+/dir/check.this.file
	-/dir/*

The first rule matching a path decides, '-' skips it and '+' keeps it.
Patterns are shell wildcards where '*' also matches '/', and a pattern
matches every path it is a prefix of.
*/
package skiplist

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/golang/glog"
)

type Rule struct {
	Line string
	Sign byte
	re   *regexp.Regexp
}

type Handler struct {
	rules []Rule
}

func New(content string) *Handler {
	h := &Handler{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 2 || (line[0] != '-' && line[0] != '+') {
			glog.Warningf("Skipping malformed skipfile pattern: %s", line)
			continue
		}
		pattern := strings.TrimSpace(line[1:])
		if pattern == "" {
			glog.Warningf("Skipping malformed skipfile pattern: %s", line)
			continue
		}
		re, err := compile(pattern)
		if err != nil {
			glog.Warningf("Skipping invalid skipfile pattern: %s: %v", line, err)
			continue
		}
		h.rules = append(h.rules, Rule{Line: line, Sign: line[0], re: re})
	}
	return h
}

func NewFromFile(path string) (*Handler, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skip file %s: %v", path, err)
	}
	return New(string(content)), nil
}

// compile turns a rule pattern followed by '*' into a regular expression
// matching whole paths.
func compile(pattern string) (*regexp.Regexp, error) {
	pattern = filepath.ToSlash(filepath.Clean(pattern)) + "*"
	var b strings.Builder
	b.WriteString("(?s)^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			class, n := bracket(pattern[i:])
			if n == 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(class)
			i += n - 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// bracket translates the character class at the start of pattern. It
// returns the regular expression and the length of the class in pattern,
// or 0 if the '[' is not closed.
func bracket(pattern string) (string, int) {
	j := 1
	if j < len(pattern) && pattern[j] == '!' {
		j++
	}
	// a ']' right after the opening bracket is a member
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	end := strings.IndexByte(pattern[j:], ']')
	if end < 0 {
		return "", 0
	}
	j += end
	members := pattern[1:j]
	negate := strings.HasPrefix(members, "!")
	if negate {
		members = members[1:]
	}
	var b strings.Builder
	b.WriteString("[")
	if negate {
		b.WriteString("^")
	}
	for _, c := range members {
		switch c {
		case '\\', '[', ']', '^':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteString("]")
	return b.String(), j + 1
}

func (r Rule) Match(path string) bool {
	return r.re.MatchString(path)
}

func (h *Handler) Rules() []Rule {
	if h == nil {
		return nil
	}
	return append([]Rule{}, h.rules...)
}

// ShouldSkip tells whether source is excluded. A nil Handler skips nothing.
func (h *Handler) ShouldSkip(source string) bool {
	if h == nil {
		return false
	}
	source = filepath.ToSlash(source)
	for _, rule := range h.rules {
		if rule.Match(source) {
			glog.V(2).Infof("%s matched by skip rule %s", source, rule.Line)
			return rule.Sign == '-'
		}
	}
	return false
}
