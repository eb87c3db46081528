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

package i18n

import "testing"

func TestGetPrinter(t *testing.T) {
	for _, testCase := range []struct {
		lang     string
		expected string
	}{
		{"en", "Skipped 2 compile commands"},
		{"zh", "跳过了 2 条编译命令"},
		{"fr", "跳过了 2 条编译命令"},
	} {
		got := GetPrinter(testCase.lang).Sprintf("Skipped %d compile commands", 2)
		if got != testCase.expected {
			t.Errorf("unexpected result for %v. parsed: %v. expected: %v.", testCase.lang, got, testCase.expected)
		}
	}
}

func TestReorderedArguments(t *testing.T) {
	got := GetPrinter("zh").Sprintf("Read %d entries from %d compilation databases", 10, 2)
	expected := "从 2 个编译数据库中读取了 10 条记录"
	if got != expected {
		t.Errorf("unexpected result. parsed: %v. expected: %v.", got, expected)
	}
}
