/*  Copyright (c) 2012 Yan Ivnitskiy. All rights reserved.
 *
 *  Redistribution and use in source and binary forms, with or without
 *  modification, are permitted provided that the following conditions are
 *  met:
 *
 *     * Redistributions of source code must retain the above copyright
 *  notice, this list of conditions and the following disclaimer.
 *     * Redistributions in binary form must reproduce the above
 *  copyright notice, this list of conditions and the following disclaimer
 *  in the documentation and/or other materials provided with the
 *  distribution.
 *     * Neither the name of grace nor the names of its
 *  contributors may be used to endorse or promote products derived from
 *  this software without specific prior written permission.
 *
 *  THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
 *  "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
 *  LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
 *  A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
 *  OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
 *  SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
 *  LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
 *  DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
 *  THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
 *  (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
 *  OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
 */

//go:build linux

package watchdog

import (
	"debug/dwarf"
	"debug/elf"
	"strconv"
	"strings"
)

func contains(haystack, needle instantiatedRange) bool {
	return haystack.Low() <= needle.Low() && haystack.High() >= needle.High()
}

// ExtractSymbolTable parses the DWARF section of binary and returns a
// symbol table of file names and the functions attributed to each.
func ExtractSymbolTable(binary string) (*SymbolTable, error) {
	files := make(SymbolTable)

	f, err := elf.Open(binary)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := f.DWARF()
	if err != nil {
		return nil, err
	}

	reader := d.Reader()
	for {
		entry, err := reader.Next()
		if err != nil || entry == nil {
			break
		}

		switch entry.Tag {
		case dwarf.TagCompileUnit:
			file := extractFile(entry)
			if file.Filename == "" {
				continue
			}
			files[file.Filename] = file

		case dwarf.TagSubprogram:
			fun := extractFunction(entry)
			for _, cu := range files {
				if contains(cu, fun) {
					cu.Functions[fun.Name] = fun
				}
			}
		}
	}

	return &files, nil
}

func extractFunction(entry *dwarf.Entry) (fun CompiledFunction) {
	for _, field := range entry.Field {
		switch field.Attr {
		case dwarf.AttrName:
			fun.Name, _ = field.Val.(string)
		case dwarf.AttrDeclLine:
			if v, ok := field.Val.(int64); ok {
				fun.Lineno = int(v)
			}
		case dwarf.AttrHighpc:
			fun.Highpc, _ = field.Val.(uint64)
		case dwarf.AttrLowpc:
			fun.Lowpc, _ = field.Val.(uint64)
		}
	}
	return
}

func extractFile(entry *dwarf.Entry) (file CompiledFile) {
	file.Functions = make(map[string]CompiledFunction)
	for _, field := range entry.Field {
		switch field.Attr {
		case dwarf.AttrName:
			file.Filename, _ = field.Val.(string)
		case dwarf.AttrLowpc:
			file.Lowpc, _ = field.Val.(uint64)
		case dwarf.AttrHighpc:
			file.Highpc, _ = field.Val.(uint64)
		}
	}
	return
}

type symbolMode int

const (
	modeOther symbolMode = iota
	modeCpp
)

// symstringToTokens splits a symbol reference along ':' and reports
// which naming convention it looks like (C++ or plain).
func symstringToTokens(sym string) ([]string, symbolMode) {
	mode := modeOther
	if strings.Contains(sym, "::") {
		mode = modeCpp
	}
	return strings.Fields(strings.ReplaceAll(sym, ":", " ")), mode
}

func reverseSlice(tokens []string) {
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
}

func isHexOrDecimal(s string) bool {
	if len(s) == 0 {
		return false
	}
	if len(s) > 2 && s[:2] == "0x" {
		s = s[2:]
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

type symbolLocation struct {
	fileName      string
	namespaceName string
	className     string
	funcName      string
	lineNumber    int
}

// locationError enumerates why a symbolic breakpoint reference could not
// be resolved.
type locationError int

const (
	errFormat locationError = iota
	errMissingDWARF
	errSymbolNotFound
	errUnsupported
)

func (e locationError) Error() string {
	switch e {
	case errFormat:
		return "watchdog: symbol reference is not formatted correctly"
	case errMissingDWARF:
		return "watchdog: binary is missing a DWARF section needed for symbol lookup"
	case errSymbolNotFound:
		return "watchdog: symbol could not be found in the symbol table"
	case errUnsupported:
		return "watchdog: symbol format not supported"
	default:
		return "watchdog: unknown symbol resolution error"
	}
}

// symstringToLoc parses a fuzzy, human-readable location reference
// ("file.c:42", "file.c:funcName", "Ns::Class::func") into its parts.
func symstringToLoc(symstring string) (*symbolLocation, error) {
	loc := new(symbolLocation)

	tokens, mode := symstringToTokens(symstring)
	if len(tokens) == 0 {
		return nil, errFormat
	}
	reverseSlice(tokens)

	if isHexOrDecimal(tokens[0]) {
		if len(tokens) < 2 {
			return nil, errFormat
		}
		loc.lineNumber, _ = strconv.Atoi(tokens[0])
		loc.fileName = tokens[1]
		return loc, nil
	}

	loc.funcName = tokens[0]
	tokens = tokens[1:]

	switch {
	case mode == modeCpp && len(tokens) > 0:
		loc.className = tokens[0]
		if len(tokens) > 1 {
			loc.namespaceName = tokens[1]
		}
	case len(tokens) > 0:
		loc.fileName = tokens[0]
	}

	return loc, nil
}

func locToOffset(t *Target, loc *symbolLocation) (uint64, error) {
	if loc.fileName == "" {
		return 0, errSymbolNotFound
	}

	file, ok := (*t.DebugSymbols)[loc.fileName]
	if !ok {
		return 0, errSymbolNotFound
	}

	if loc.lineNumber > 0 {
		for _, fn := range file.Functions {
			if fn.Lineno == loc.lineNumber {
				return fn.Lowpc, nil
			}
		}
		return 0, errUnsupported
	}

	fn, ok := file.Functions[loc.funcName]
	if !ok {
		return 0, errSymbolNotFound
	}
	return fn.Lowpc, nil
}

// resolveSymbol turns a fuzzy human-readable location ("0x08004014",
// "file.c:funcName", "Ns::Class::func") into an address in the guarded
// binary, used by AddBreakpoint to place the canary trap.
func (t *Target) resolveSymbol(sym string) (uint64, error) {
	if isHexOrDecimal(sym) {
		return strconv.ParseUint(sym, 0, 64)
	}

	if t.DebugSymbols == nil {
		return 0, errMissingDWARF
	}

	loc, err := symstringToLoc(sym)
	if err != nil {
		return 0, err
	}

	return locToOffset(t, loc)
}
