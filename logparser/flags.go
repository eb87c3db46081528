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

import (
	"regexp"
	"strings"
)

// prefixPattern matches arguments starting with any of the alternatives.
func prefixPattern(alternatives []string) *regexp.Regexp {
	return regexp.MustCompile("^(?:" + strings.Join(alternatives, "|") + ")")
}

var extMappingLang = map[string]string{
	".c":   "c",
	".cp":  "c++",
	".cpp": "c++",
	".cxx": "c++",
	".txx": "c++",
	".cc":  "c++",
	".C":   "c++",
	".ii":  "c++",
	".m":   "objective-c",
	".mm":  "objective-c++",
}

// Extensions of the files a response file may name as inputs.
var sourceExtensions = []string{".c", ".cc", ".cp", ".cpp", ".cxx", ".c++", ".o", ".so", ".a"}

var precompilationOption = regexp.MustCompile(`^-(E|M[GTQFJPVM]*)$`)

// Clang reports different warnings than GCC, these would make the analysis
// fail where the build passed. -w cannot be overridden by -W flags.
var ignoredOptionsClang = prefixPattern([]string{
	"-Werror",
	"-pedantic-errors",
	"-w",
})

// GCC flags unknown to Clang or harmful for the analysis.
var ignoredOptionsGcc = prefixPattern([]string{
	"-fallow-fetchr-insn",
	"-fcall-saved-",
	"-fcond-mismatch",
	"-fconserve-stack",
	"-fcrossjumping",
	"-fcse-follow-jumps",
	"-fcse-skip-blocks",
	"-fcx-limited-range$",
	"-fext-.*-literals",
	"-ffixed-r2",
	"-ffp$",
	"-mfp16-format",
	"-fgcse-lm",
	"-fhoist-adjacent-loads",
	"-findirect-inlining",
	"-finline-limit",
	"-finline-local-initialisers",
	"-fipa-sra",
	"-fmacro-prefix-map",
	"-fno-aggressive-loop-optimizations",
	"-fno-canonical-system-headers",
	"-fno-delete-null-pointer-checks",
	"-fno-defer-pop",
	"-fno-extended-identifiers",
	"-fno-jump-table",
	"-fno-keep-static-consts",
	"-f(no-)?reorder-functions",
	"-fno-strength-reduce",
	"-fno-toplevel-reorder",
	"-fno-unit-at-a-time",
	"-fno-var-tracking-assignments",
	"-fobjc-link-runtime",
	"-fpartial-inlining",
	"-fpeephole2",
	"-fr$",
	"-fregmove",
	"-frename-registers",
	"-frerun-cse-after-loop",
	"-fs$",
	"-fsched-spec",
	"-fstack-usage",
	"-fstack-reuse",
	"-fthread-jumps",
	"-ftree-pre",
	"-ftree-switch-conversion",
	"-ftree-tail-merge",
	"-m(no-)?abm",
	"-m(no-)?sdata",
	"-m(no-)?spe",
	"-m(no-)?string$",
	"-m(no-)?dsbt",
	"-m(no-)?fixed-ssp",
	"-m(no-)?pointers-to-nested-functions",
	"-mno-fp-ret-in-387",
	"-mpreferred-stack-boundary",
	"-mpcrel-func-addr",
	"-mrecord-mcount$",
	"-maccumulate-outgoing-args",
	"-mcall-aixdesc",
	"-mppa3-addr-bug",
	"-mtraceback=",
	"-mtext=",
	"-misa=",
	"-mfunction-return=",
	"-mindirect-branch-register",
	"-mindirect-branch=",
	"-mfix-cortex-m3-ldrd$",
	"-mmultiple$",
	"-msahf$",
	"-mskip-rax-setup$",
	"-mthumb-interwork$",
	"-mupdate$",
	"-mapcs",
	"-fno-merge-const-bfstores$",
	"-fno-ipa-sra$",
	"-mno-thumb-interwork$",
	"-mno-sched-prolog",
	"-DNDEBUG$",
	"-save-temps",
	"-Werror",
	"-pedantic-errors",
	"-w",
	"-g(.+)?$",
	"-flto",
	"-mxl",
	"-mfloat-gprs",
	"-mabi",
})

type paramOption struct {
	pattern *regexp.Regexp
	args    int
}

// Flags dropped together with the given number of following arguments.
var ignoredParamOptions = []paramOption{
	{regexp.MustCompile(`^-install_name`), 1},
	{regexp.MustCompile(`^-exported_symbols_list`), 1},
	{regexp.MustCompile(`^-current_version`), 1},
	{regexp.MustCompile(`^-compatibility_version`), 1},
	{regexp.MustCompile(`^-init$`), 1},
	{regexp.MustCompile(`^-e$`), 1},
	{regexp.MustCompile(`^-seg1addr`), 1},
	{regexp.MustCompile(`^-bundle_loader`), 1},
	{regexp.MustCompile(`^-multiply_defined`), 1},
	{regexp.MustCompile(`^-sectorder`), 3},
	{regexp.MustCompile(`^--param$`), 1},
	{regexp.MustCompile(`^-u$`), 1},
	{regexp.MustCompile(`^--serialize-diagnostics`), 1},
	{regexp.MustCompile(`^-framework`), 1},
	{regexp.MustCompile(`^-filelist`), 1},
}

// -Xclang flags that make clang emit something other than diagnostics.
var xclangFlagsToSkip = []string{
	"-module-file-info",
	"-S",
	"-emit-llvm",
	"-emit-llvm-bc",
	"-emit-llvm-only",
	"-emit-llvm-uselists",
	"-rewrite-objc",
}

// Flags whose argument is either merged into them or given separately.
// Longer alternatives come first, the leftmost alternative wins.
var compileOptionsMerged = prefixPattern([]string{
	"--sysroot",
	"-sdkroot",
	"--include",
	"-include",
	"-iquote",
	"-[DIUF]",
	"-idirafter",
	"-isystem",
	"-imacros",
	"-isysroot",
	"-iprefix",
	"-iwithprefixbefore",
	"-iwithprefix",
})

// Merged flags whose argument is a path, resolved against the directory of
// the command.
var flagsWithPath = []string{
	"-I",
	"-idirafter",
	"-imultilib",
	"-iquote",
	"-isysroot",
	"-isystem",
	"-iwithprefix",
	"-iwithprefixbefore",
	"-sysroot",
	"--sysroot",
}

var replaceOptionsMap = map[string][]string{
	"-mips32":     {"-target", "mips", "-mips32"},
	"-mips64":     {"-target", "mips64", "-mips64"},
	"-mpowerpc":   {"-target", "powerpc"},
	"-mpowerpc64": {"-target", "powerpc64"},
}

var compileOptions = prefixPattern([]string{
	"-nostdinc",
	`-nostdinc\+\+`,
	"-pedantic",
	"-O[1-3]",
	"-Os",
	"-std=",
	"-stdlib=",
	"-f",
	"-m",
	"-Wno-",
	"--sysroot=",
	"-sdkroot",
	"--gcc-toolchain=",
})

// Include flags checked for directories of intrinsic headers.
var includeOptionsMerged = prefixPattern([]string{
	"-iquote",
	"-[IF]",
	"-isystem",
	"-iprefix",
	"-iwithprefixbefore",
	"-iwithprefix",
	"-cxx-isystem",
})

var gccToolchainPattern = regexp.MustCompile(`^--gcc-toolchain=(?P<tcpath>.*)$`)
