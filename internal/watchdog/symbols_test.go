//go:build linux

package watchdog

import "testing"

func TestIsHexOrDecimal(t *testing.T) {
	cases := map[string]bool{
		"0x08004014": true,
		"1234":       true,
		"deadbeef":   true,
		"":           false,
		"foo.c":      false,
		"Ns::Class":  false,
	}
	for in, want := range cases {
		if got := isHexOrDecimal(in); got != want {
			t.Errorf("isHexOrDecimal(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSymstringToLocFileLine(t *testing.T) {
	loc, err := symstringToLoc("foo.c:32")
	if err != nil {
		t.Fatalf("symstringToLoc: %v", err)
	}
	if loc.fileName != "foo.c" || loc.lineNumber != 32 {
		t.Fatalf("got %+v, want fileName=foo.c lineNumber=32", loc)
	}
}

func TestSymstringToLocFileFunc(t *testing.T) {
	loc, err := symstringToLoc("foo.c:bar")
	if err != nil {
		t.Fatalf("symstringToLoc: %v", err)
	}
	if loc.fileName != "foo.c" || loc.funcName != "bar" {
		t.Fatalf("got %+v, want fileName=foo.c funcName=bar", loc)
	}
}

func TestSymstringToLocCppQualified(t *testing.T) {
	loc, err := symstringToLoc("Ns::Class::method")
	if err != nil {
		t.Fatalf("symstringToLoc: %v", err)
	}
	if loc.funcName != "method" || loc.className != "Class" || loc.namespaceName != "Ns" {
		t.Fatalf("got %+v, want funcName=method className=Class namespaceName=Ns", loc)
	}
}

func TestResolveSymbolHexAddress(t *testing.T) {
	tgt := &Target{}
	addr, err := tgt.resolveSymbol("0x1000")
	if err != nil {
		t.Fatalf("resolveSymbol: %v", err)
	}
	if addr != 0x1000 {
		t.Fatalf("resolveSymbol(0x1000) = 0x%x, want 0x1000", addr)
	}
}

func TestResolveSymbolWithoutDWARF(t *testing.T) {
	tgt := &Target{}
	if _, err := tgt.resolveSymbol("foo.c:bar"); err != errMissingDWARF {
		t.Fatalf("resolveSymbol without DebugSymbols = %v, want errMissingDWARF", err)
	}
}

func TestLocToOffsetResolvesLine(t *testing.T) {
	syms := SymbolTable{
		"foo.c": CompiledFile{
			Filename: "foo.c",
			Functions: map[string]CompiledFunction{
				"foo": {Name: "foo", Lowpc: 0x400, Lineno: 10},
			},
		},
	}
	tgt := &Target{DebugSymbols: &syms}

	addr, err := locToOffset(tgt, &symbolLocation{fileName: "foo.c", lineNumber: 10})
	if err != nil {
		t.Fatalf("locToOffset: %v", err)
	}
	if addr != 0x400 {
		t.Fatalf("locToOffset = 0x%x, want 0x400", addr)
	}
}
