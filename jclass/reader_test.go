// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestReaderSequentialReads(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x00, 0x00, 0x00, 0x04}
	r := NewReader(buf)

	b, err := r.U8()
	if err != nil || b != 0x01 {
		t.Fatalf("U8 = %v, %v; want 0x01, nil", b, err)
	}

	u16, err := r.U16()
	if err != nil || u16 != 0x0203 {
		t.Fatalf("U16 = %v, %v; want 0x0203, nil", u16, err)
	}

	u32, err := r.U32()
	if err != nil || u32 != 0x00000004 {
		t.Fatalf("U32 = %v, %v; want 4, nil", u32, err)
	}

	if r.Remaining() != 0 {
		t.Fatalf("Remaining() = %d; want 0", r.Remaining())
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.U16(); err != ErrTruncated {
		t.Fatalf("U16 on short buffer = %v; want ErrTruncated", err)
	}
}

func TestReaderFloats(t *testing.T) {
	// IEEE-754 encoding of 1.0f is 0x3F800000.
	r := NewReader([]byte{0x3F, 0x80, 0x00, 0x00})
	f, err := r.F32()
	if err != nil || f != 1.0 {
		t.Fatalf("F32 = %v, %v; want 1.0, nil", f, err)
	}
}

func TestReaderBytesAndSkip(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	r := NewReader(buf)
	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	rest, err := r.Bytes(3)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if rest[0] != 3 || rest[1] != 4 || rest[2] != 5 {
		t.Fatalf("Bytes = %v; want [3 4 5]", rest)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining() = %d; want 0", r.Remaining())
	}
}
