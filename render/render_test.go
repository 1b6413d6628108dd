// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/saferwall/jbinutils/jclass"
)

// buildSwitchClass builds a minimal class with one public static method,
// switcher()I, whose body is the tableswitch fixture also used by the
// jclass bytecode walker tests: pad=3 at pc 0 (the standard JVM alignment
// rule), default=16, low=0, high=1, offsets=[8,12].
func buildSwitchClass(t *testing.T) []byte {
	t.Helper()

	var pool []byte
	pool = append(pool, jclass.TagUtf8, 0x00, 0x07)
	pool = append(pool, "Switchy"...) // #1
	pool = append(pool, jclass.TagClass, 0x00, 0x01) // #2 -> #1
	pool = append(pool, jclass.TagUtf8, 0x00, 0x10)
	pool = append(pool, "java/lang/Object"...) // #3
	pool = append(pool, jclass.TagClass, 0x00, 0x03) // #4 -> #3
	pool = append(pool, jclass.TagUtf8, 0x00, 0x08)
	pool = append(pool, "switcher"...) // #5
	pool = append(pool, jclass.TagUtf8, 0x00, 0x03)
	pool = append(pool, "()I"...) // #6
	pool = append(pool, jclass.TagUtf8, 0x00, 0x04)
	pool = append(pool, "Code"...) // #7

	code := []byte{
		0xAA,                   // tableswitch @0
		0x00, 0x00, 0x00,       // 3 pad bytes
		0x00, 0x00, 0x00, 0x10, // default = 16
		0x00, 0x00, 0x00, 0x00, // low = 0
		0x00, 0x00, 0x00, 0x01, // high = 1
		0x00, 0x00, 0x00, 0x08, // offsets[0] = 8
		0x00, 0x00, 0x00, 0x0C, // offsets[1] = 12
	}

	var buf []byte
	buf = append(buf, 0xCA, 0xFE, 0xBA, 0xBE)
	buf = append(buf, 0x00, 0x00)
	buf = append(buf, 0x00, 0x32)
	buf = append(buf, 0x00, 0x08) // constant_pool_count = 8
	buf = append(buf, pool...)
	buf = append(buf, 0x00, 0x21) // access_flags
	buf = append(buf, 0x00, 0x02) // this_class
	buf = append(buf, 0x00, 0x04) // super_class
	buf = append(buf, 0x00, 0x00) // interfaces_count
	buf = append(buf, 0x00, 0x00) // fields_count
	buf = append(buf, 0x00, 0x01) // methods_count
	buf = append(buf, 0x00, 0x09) // method access_flags: PUBLIC|STATIC
	buf = append(buf, 0x00, 0x05) // name_index
	buf = append(buf, 0x00, 0x06) // descriptor_index
	buf = append(buf, 0x00, 0x01) // attributes_count

	var codeAttr []byte
	codeAttr = append(codeAttr, 0x00, 0x02) // max_stack
	codeAttr = append(codeAttr, 0x00, 0x00) // max_locals
	codeAttr = append(codeAttr, 0x00, 0x00, 0x00, byte(len(code)))
	codeAttr = append(codeAttr, code...)
	codeAttr = append(codeAttr, 0x00, 0x00) // exception_table_length
	codeAttr = append(codeAttr, 0x00, 0x00) // attributes_count

	buf = append(buf, 0x00, 0x07)
	buf = append(buf, 0x00, 0x00, 0x00, byte(len(codeAttr)))
	buf = append(buf, codeAttr...)
	buf = append(buf, 0x00, 0x00) // class attributes_count

	return buf
}

// TestDisassembleTableSwitch checks that rendering a tableswitch lists
// each case's absolute target PC followed by the default target,
// bracketed by "{" and "}".
func TestDisassembleTableSwitch(t *testing.T) {
	data := buildSwitchClass(t)
	cf, err := jclass.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var out bytes.Buffer
	if err := Disassemble(&out, cf, "Switchy.java"); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		`Compiled from "Switchy.java"`,
		"class Switchy extends java.lang.Object",
		"switcher",
		"tableswitch { // 0 to 1",
		"0: 8",
		"1: 12",
		"default: 16",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q; full output:\n%s", want, text)
		}
	}
}

// buildInstanceMethodClass builds a class with one public (non-static)
// method taking a single int parameter, used to check that Args_size
// accounts for the implicit "this" receiver.
func buildInstanceMethodClass(t *testing.T) []byte {
	t.Helper()

	var pool []byte
	pool = append(pool, jclass.TagUtf8, 0x00, 0x06)
	pool = append(pool, "Widget"...) // #1
	pool = append(pool, jclass.TagClass, 0x00, 0x01) // #2 -> #1
	pool = append(pool, jclass.TagUtf8, 0x00, 0x10)
	pool = append(pool, "java/lang/Object"...) // #3
	pool = append(pool, jclass.TagClass, 0x00, 0x03) // #4 -> #3
	pool = append(pool, jclass.TagUtf8, 0x00, 0x03)
	pool = append(pool, "set"...) // #5
	pool = append(pool, jclass.TagUtf8, 0x00, 0x04)
	pool = append(pool, "(I)V"...) // #6
	pool = append(pool, jclass.TagUtf8, 0x00, 0x04)
	pool = append(pool, "Code"...) // #7

	code := []byte{0xB1} // return

	var buf []byte
	buf = append(buf, 0xCA, 0xFE, 0xBA, 0xBE)
	buf = append(buf, 0x00, 0x00)
	buf = append(buf, 0x00, 0x32)
	buf = append(buf, 0x00, 0x08) // constant_pool_count = 8
	buf = append(buf, pool...)
	buf = append(buf, 0x00, 0x21) // access_flags
	buf = append(buf, 0x00, 0x02) // this_class
	buf = append(buf, 0x00, 0x04) // super_class
	buf = append(buf, 0x00, 0x00) // interfaces_count
	buf = append(buf, 0x00, 0x00) // fields_count
	buf = append(buf, 0x00, 0x01) // methods_count
	buf = append(buf, 0x00, 0x01) // method access_flags: PUBLIC (not static)
	buf = append(buf, 0x00, 0x05) // name_index
	buf = append(buf, 0x00, 0x06) // descriptor_index
	buf = append(buf, 0x00, 0x01) // attributes_count

	var codeAttr []byte
	codeAttr = append(codeAttr, 0x00, 0x01) // max_stack
	codeAttr = append(codeAttr, 0x00, 0x02) // max_locals: this + int param
	codeAttr = append(codeAttr, 0x00, 0x00, 0x00, byte(len(code)))
	codeAttr = append(codeAttr, code...)
	codeAttr = append(codeAttr, 0x00, 0x00) // exception_table_length
	codeAttr = append(codeAttr, 0x00, 0x00) // attributes_count

	buf = append(buf, 0x00, 0x07)
	buf = append(buf, 0x00, 0x00, 0x00, byte(len(codeAttr)))
	buf = append(buf, codeAttr...)
	buf = append(buf, 0x00, 0x00) // class attributes_count

	return buf
}

// TestArgsSizeIncludesImplicitThis checks that a non-static method's
// Args_size counts the implicit "this" receiver alongside its declared
// parameters.
func TestArgsSizeIncludesImplicitThis(t *testing.T) {
	data := buildInstanceMethodClass(t)
	cf, err := jclass.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var out bytes.Buffer
	if err := Disassemble(&out, cf, "Widget.java"); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !strings.Contains(out.String(), "Args_size=2") {
		t.Fatalf("expected Args_size=2 (this + int param); full output:\n%s", out.String())
	}
}

func TestDisassembleEmptyClass(t *testing.T) {
	data := buildMemberlessClass(t)
	cf, err := jclass.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var out bytes.Buffer
	if err := Disassemble(&out, cf, "Empty.java"); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "{") || !strings.Contains(text, "}") {
		t.Fatalf("expected braces around an empty body, got:\n%s", text)
	}
}

// buildMemberlessClass builds a valid class with a resolvable this_class
// and super_class but no fields or methods.
func buildMemberlessClass(t *testing.T) []byte {
	t.Helper()

	var pool []byte
	pool = append(pool, jclass.TagUtf8, 0x00, 0x05)
	pool = append(pool, "Empty"...) // #1
	pool = append(pool, jclass.TagClass, 0x00, 0x01) // #2 -> #1
	pool = append(pool, jclass.TagUtf8, 0x00, 0x10)
	pool = append(pool, "java/lang/Object"...) // #3
	pool = append(pool, jclass.TagClass, 0x00, 0x03) // #4 -> #3

	var buf []byte
	buf = append(buf, 0xCA, 0xFE, 0xBA, 0xBE)
	buf = append(buf, 0x00, 0x00)
	buf = append(buf, 0x00, 0x32)
	buf = append(buf, 0x00, 0x05) // constant_pool_count = 5
	buf = append(buf, pool...)
	buf = append(buf, 0x00, 0x21) // access_flags
	buf = append(buf, 0x00, 0x02) // this_class
	buf = append(buf, 0x00, 0x04) // super_class
	buf = append(buf, 0x00, 0x00) // interfaces_count
	buf = append(buf, 0x00, 0x00) // fields_count
	buf = append(buf, 0x00, 0x00) // methods_count
	buf = append(buf, 0x00, 0x00) // class attributes_count
	return buf
}
