// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

// TestWalkTableSwitch exercises a tableswitch whose payload is built from
// the standard JVM alignment rule rather than transcribed byte-for-byte:
// at pc 0 the first payload byte must land at offset 4 (3 pad bytes), so
// this fixture's padding differs from a naive pad-by-4 encoding, which is
// internally inconsistent with that same alignment rule.
func TestWalkTableSwitch(t *testing.T) {
	code := []byte{
		OpTableSwitch,          // opcode @0
		0x00, 0x00, 0x00,       // 3 pad bytes -> next byte at offset 4
		0x00, 0x00, 0x00, 0x10, // default = 16
		0x00, 0x00, 0x00, 0x00, // low = 0
		0x00, 0x00, 0x00, 0x01, // high = 1
		0x00, 0x00, 0x00, 0x08, // offsets[0] = 8
		0x00, 0x00, 0x00, 0x0C, // offsets[1] = 12
	}

	insts, err := Walk(code)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(insts) != 1 {
		t.Fatalf("len(insts) = %d; want 1", len(insts))
	}

	inst := insts[0]
	if inst.Mnemonic != "tableswitch" {
		t.Fatalf("Mnemonic = %q; want tableswitch", inst.Mnemonic)
	}
	ts := inst.TableSwitch
	if ts == nil {
		t.Fatal("TableSwitch payload is nil")
	}
	if ts.Default != 16 || ts.Low != 0 || ts.High != 1 {
		t.Fatalf("default/low/high = %d/%d/%d; want 16/0/1", ts.Default, ts.Low, ts.High)
	}
	if len(ts.Offsets) != 2 || ts.Offsets[0] != 8 || ts.Offsets[1] != 12 {
		t.Fatalf("offsets = %v; want [8 12]", ts.Offsets)
	}
	if len(code) != 24 {
		t.Fatalf("fixture length = %d; want 24 (1 opcode + 3 pad + 5*4 payload words)", len(code))
	}
}

func TestWalkLookupSwitch(t *testing.T) {
	code := []byte{
		OpLookupSwitch,
		0x00, 0x00, 0x00, // 3 pad bytes
		0x00, 0x00, 0x00, 0x09, // default = 9
		0x00, 0x00, 0x00, 0x02, // npairs = 2
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x14, // (1, 20)
		0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x1E, // (2, 30)
	}
	insts, err := Walk(code)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	ls := insts[0].LookupSwitch
	if ls == nil || ls.Default != 9 || len(ls.Pairs) != 2 {
		t.Fatalf("LookupSwitch = %+v", ls)
	}
	if ls.Pairs[0] != (LookupPair{Match: 1, Offset: 20}) {
		t.Fatalf("Pairs[0] = %+v", ls.Pairs[0])
	}
	if ls.Pairs[1] != (LookupPair{Match: 2, Offset: 30}) {
		t.Fatalf("Pairs[1] = %+v", ls.Pairs[1])
	}
}

// TestWalkTotality checks the walker consumes the code array exactly,
// with no out-of-bounds reads, for a simple straight-line method.
func TestWalkTotality(t *testing.T) {
	code := []byte{0x10, 0x2A, 0xAC} // bipush 42; ireturn
	insts, err := Walk(code)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(insts) != 2 {
		t.Fatalf("len(insts) = %d; want 2", len(insts))
	}
	if insts[0].Mnemonic != "bipush" || insts[0].Operands[0] != 42 {
		t.Fatalf("insts[0] = %+v", insts[0])
	}
	if insts[1].Mnemonic != "ireturn" {
		t.Fatalf("insts[1] = %+v", insts[1])
	}
	if insts[1].PC != 2 {
		t.Fatalf("insts[1].PC = %d; want 2", insts[1].PC)
	}
}

func TestWalkWideIinc(t *testing.T) {
	code := []byte{OpWide, opIinc, 0x01, 0x00, 0xFF, 0xFF} // wide iinc 256, -1
	insts, err := Walk(code)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(insts) != 1 {
		t.Fatalf("len(insts) = %d; want 1", len(insts))
	}
	inst := insts[0]
	if inst.WideOpcode != opIinc {
		t.Fatalf("WideOpcode = %d; want opIinc", inst.WideOpcode)
	}
	if inst.Operands[0] != 0x0100 || inst.Operands[1] != -1 {
		t.Fatalf("Operands = %v; want [256 -1]", inst.Operands)
	}
}

func TestWalkTruncatedOperand(t *testing.T) {
	// 0xBA is invokedynamic (a 4-byte-operand opcode); feeding it a
	// truncated operand should surface ErrTruncated, not a panic.
	code := []byte{0xBA, 0x00}
	if _, err := Walk(code); err != ErrTruncated {
		t.Fatalf("Walk = %v; want ErrTruncated", err)
	}
}

func TestPadToBoundary(t *testing.T) {
	cases := map[int]int{0: 3, 1: 2, 2: 1, 3: 0, 4: 3}
	for pc, want := range cases {
		if got := padToBoundary(pc); got != want {
			t.Fatalf("padToBoundary(%d) = %d; want %d", pc, got, want)
		}
	}
}
