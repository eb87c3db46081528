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

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var languageMap = map[string]language.Tag{"en": language.English, "zh": language.Chinese}

var chineseMessages = []struct{ key, msg string }{
	{"Start %s (%v/%v)", "开始 %s (%v/%v)"},
	{"%s %s (%s, %v/%v) [%s]", "%s %s (%s, %v/%v) [%s]"},
	{"OK", "成功"},
	{"FAIL", "失败"},
	{"EXCEPTION", "异常"},
	{"Read %d entries from %d compilation databases", "从 %[2]d 个编译数据库中读取了 %[1]d 条记录"},
	{"Expanded response files: %d entries", "展开响应文件后共 %d 条记录"},
	{"Skipped %d compile commands", "跳过了 %d 条编译命令"},
	{"Kept %d build actions", "保留了 %d 个构建动作"},
	{"Wrote %s", "已写入 %s"},
}

func init() {
	for _, m := range chineseMessages {
		if err := message.SetString(language.Chinese, m.key, m.msg); err != nil {
			panic(err)
		}
	}
}

// GetPrinter returns the printer of lang. Unknown languages get Chinese.
func GetPrinter(lang string) *message.Printer {
	var langTag language.Tag
	if _, exist := languageMap[lang]; exist {
		langTag = languageMap[lang]
	} else {
		langTag = languageMap["zh"]
	}
	return message.NewPrinter(langTag)
}
