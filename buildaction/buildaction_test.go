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

package buildaction

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleFields() Fields {
	return Fields{
		Source:           "/proj/a.c",
		Compiler:         "/usr/bin/gcc",
		Lang:             "c",
		ActionType:       Compile,
		AnalyzerOptions:  []string{"-O2", "-I/proj/inc"},
		Target:           map[string]string{"c": "x86_64-linux-gnu", "c++": "x86_64-linux-gnu"},
		CompilerIncludes: map[string][]string{"c": {"/usr/include"}, "c++": {"/usr/include/c++/11"}},
		CompilerStandard: map[string]string{"c": "-std=gnu17", "c++": "-std=gnu++14"},
		Directory:        "/proj",
		OriginalCommand:  "gcc -O2 -Iinc -c a.c -o a.o",
		Output:           "a.o",
	}
}

func TestImmutable(t *testing.T) {
	fields := sampleFields()
	action := New(fields)
	fields.AnalyzerOptions[0] = "-O0"
	fields.Target["c"] = "arm"
	options := action.AnalyzerOptions()
	options[1] = "-I/elsewhere"
	includes := action.CompilerIncludes("c")
	includes[0] = "/elsewhere"
	if !reflect.DeepEqual(action.AnalyzerOptions(), []string{"-O2", "-I/proj/inc"}) {
		t.Errorf("analyzer options changed: %v", action.AnalyzerOptions())
	}
	if action.Target("c") != "x86_64-linux-gnu" || action.CompilerIncludes("c")[0] != "/usr/include" {
		t.Errorf("action changed after creation: %v", action)
	}
}

func TestAnalyzerCommand(t *testing.T) {
	for _, testCase := range []struct {
		name     string
		modify   func(f *Fields)
		compiler string
		expected []string
	}{
		{
			name:     "implicit values made explicit",
			modify:   func(f *Fields) {},
			expected: []string{"/usr/bin/gcc", "-c", "-x", "c", "--target=x86_64-linux-gnu", "-std=gnu17", "-O2", "-I/proj/inc", "-isystem", "/usr/include", "/proj/a.c", "-o", "a.o"},
		},
		{
			name: "explicit values win",
			modify: func(f *Fields) {
				f.AnalyzerOptions = []string{"-xc", "--target=arm-none-eabi", "-std=c99"}
				f.Output = ""
			},
			compiler: "clang",
			expected: []string{"clang", "-c", "-xc", "--target=arm-none-eabi", "-std=c99", "-isystem", "/usr/include", "/proj/a.c"},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			fields := sampleFields()
			testCase.modify(&fields)
			cmd := New(fields).AnalyzerCommand(testCase.compiler)
			if !reflect.DeepEqual(cmd, testCase.expected) {
				t.Errorf("unexpected result for %s. parsed: %v. expected: %v.", testCase.name, cmd, testCase.expected)
			}
		})
	}
}

func TestHash(t *testing.T) {
	first := New(sampleFields())
	fields := sampleFields()
	fields.OriginalCommand = "gcc -c -O2 -Iinc a.c -o a.o"
	fields.Output = "b.o"
	second := New(fields)
	if first.Hash() != second.Hash() {
		t.Errorf("same options for the same source hash differently")
	}
	fields.AnalyzerOptions = []string{"-O2"}
	if first.Hash() == New(fields).Hash() {
		t.Errorf("different options hash the same")
	}
}

func TestInvocationList(t *testing.T) {
	action := New(sampleFields())
	list := NewInvocationList([]BuildAction{action, action}, "clang")
	path := filepath.Join(t.TempDir(), "invocation-list.yml")
	if err := WriteInvocationList(path, list); err != nil {
		t.Fatalf("WriteInvocationList: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ReadInvocationList(content)
	if err != nil {
		t.Fatalf("ReadInvocationList: %v", err)
	}
	expected := append(action.AnalyzerCommand("clang"), "-D__clang_analyzer__", "-w")
	if len(parsed) != 1 || !reflect.DeepEqual(parsed["/proj/a.c"], expected) {
		t.Errorf("unexpected invocation list. parsed: %v. expected: %v.", parsed, expected)
	}
}
