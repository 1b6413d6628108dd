// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

// TestExtractSymbolsHelloWorld checks that a class with a single public
// static method answer()I returning 42 yields exactly two defined
// symbols, the class itself and the method, both externally visible.
func TestExtractSymbolsHelloWorld(t *testing.T) {
	data := buildHelloWorldClass(t)
	cf, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	syms, err := ExtractSymbols(cf)
	if err != nil {
		t.Fatalf("ExtractSymbols: %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("len(syms) = %d; want 2, got %+v", len(syms), syms)
	}

	class := syms[0]
	if class.Kind != SymClass || class.Name != "Answer" {
		t.Fatalf("syms[0] = %+v; want class symbol Answer", class)
	}
	if class.KindChar() != 'C' {
		t.Fatalf("class.KindChar() = %c; want C", class.KindChar())
	}
	if class.Value == nil || *class.Value != uint64(len(data)) {
		t.Fatalf("class.Value = %v; want %d", class.Value, len(data))
	}

	method := syms[1]
	if method.Kind != SymMethod || method.Name != "Answer.answer" {
		t.Fatalf("syms[1] = %+v; want method symbol Answer.answer", method)
	}
	if method.KindChar() != 'T' {
		t.Fatalf("method.KindChar() = %c; want T", method.KindChar())
	}
	if method.Value == nil || *method.Value != 3 {
		t.Fatalf("method.Value = %v; want 3 (code length)", method.Value)
	}
}

// TestExtractSymbolsExpandedName checks that a method symbol's
// ExpandedName carries its demangled return type, name, and parameter
// list, matching its descriptor "()I".
func TestExtractSymbolsExpandedName(t *testing.T) {
	data := buildHelloWorldClass(t)
	cf, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	syms, err := ExtractSymbols(cf)
	if err != nil {
		t.Fatalf("ExtractSymbols: %v", err)
	}
	method := syms[1]
	want := "int Answer.answer()"
	if method.ExpandedName != want {
		t.Fatalf("method.ExpandedName = %q; want %q", method.ExpandedName, want)
	}
}

// buildPrivateMethodClass is buildHelloWorldClass with the method's
// access flags changed to ACC_PRIVATE.
func buildPrivateMethodClass(t *testing.T) []byte {
	t.Helper()
	data := buildHelloWorldClass(t)
	out := make([]byte, len(data))
	copy(out, data)
	// access_flags for the sole method sits 2 bytes before name_index #5,
	// which buildHelloWorldClass encodes as the byte pair 0x00, 0x05
	// immediately following the method's 0x00,0x09 flags word.
	for i := 0; i+4 <= len(out); i++ {
		if out[i] == 0x00 && out[i+1] == 0x09 && out[i+2] == 0x00 && out[i+3] == 0x05 {
			out[i+1] = byte(AccPrivate)
			return out
		}
	}
	t.Fatal("could not locate method access_flags in fixture")
	return nil
}

// TestSymbolVisibilityKindChar checks that a symbol's kind letter is
// uppercase unless the underlying member is ACC_PRIVATE, in which case
// it is lowercased.
func TestSymbolVisibilityKindChar(t *testing.T) {
	data := buildPrivateMethodClass(t)
	cf, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	syms, err := ExtractSymbols(cf)
	if err != nil {
		t.Fatalf("ExtractSymbols: %v", err)
	}
	method := syms[1]
	if method.Visibility != Private {
		t.Fatalf("Visibility = %v; want Private", method.Visibility)
	}
	if method.KindChar() != 't' {
		t.Fatalf("KindChar() = %c; want lowercase t", method.KindChar())
	}
}

// TestFilterCommutativity checks that RemoveDefinedFilter composed with
// RemoveUndefinedFilter always yields the empty set, regardless of
// order, since every item is either a definition or a reference but
// never both.
func TestFilterCommutativity(t *testing.T) {
	items := []Item{
		{Symbol: Symbol{Kind: SymClass, Name: "Answer", Value: value(1)}},
		{Symbol: Symbol{Kind: SymRefClass, Name: "java.lang.Object"}},
	}

	a := RemoveUndefinedFilter(RemoveDefinedFilter(items))
	b := RemoveDefinedFilter(RemoveUndefinedFilter(items))
	if len(a) != 0 {
		t.Fatalf("RemoveUndefined(RemoveDefined(items)) = %+v; want empty", a)
	}
	if len(b) != 0 {
		t.Fatalf("RemoveDefined(RemoveUndefined(items)) = %+v; want empty", b)
	}
}

// TestResolveClassFilterDropsOnlySameFile checks that ResolveClassFilter
// drops a reference only when the reference's target is defined in the
// same class file the reference came from, not merely defined somewhere.
func TestResolveClassFilterDropsOnlySameFile(t *testing.T) {
	definedHere := map[string]bool{"Answer": true}

	sameFile := Item{Symbol: Symbol{Kind: SymRefClass, Name: "Answer"}}
	sameFile.SetDefinedHere(definedHere)

	otherFile := Item{Symbol: Symbol{Kind: SymRefClass, Name: "java.lang.Object"}}
	otherFile.SetDefinedHere(definedHere)

	out := ResolveClassFilter([]Item{sameFile, otherFile})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d; want 1 (only java.lang.Object survives)", len(out))
	}
	if out[0].Symbol.Name != "java.lang.Object" {
		t.Fatalf("surviving item = %+v; want java.lang.Object", out[0])
	}
}
