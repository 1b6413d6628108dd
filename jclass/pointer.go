// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// pointerSize is the one process-wide mutable scalar in this package: the
// byte size attributed to reference and array field descriptors by
// SizeOfField. It must only be written by a CLI front end before any
// symbol extraction runs (jnm's --m32/--m64); the constant pool and
// bytecode tables stay immutable after initialization regardless.
var pointerSize uint32 = 8

// SetPointerSize sets the pointer size used by SizeOfField for reference
// and array descriptors. Callers must set this before parsing any class
// file whose symbols will be sized.
func SetPointerSize(n uint32) { pointerSize = n }

// PointerSize returns the current pointer size, in bytes.
func PointerSize() uint32 { return pointerSize }
