// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "errors"

// Errors returned by the parser, the constant pool, the descriptor
// grammar and the bytecode walker.
var (
	// ErrTruncated is returned when a read would run past the end of
	// the input buffer.
	ErrTruncated = errors.New("jclass: truncated class file")

	// ErrExtraData is returned when bytes remain after a class file
	// has been fully parsed.
	ErrExtraData = errors.New("jclass: extra data after class file")

	// ErrBadMagic is returned when the leading 4 bytes are not 0xCAFEBABE.
	ErrBadMagic = errors.New("jclass: bad magic number")

	// ErrUnsupportedVersion is returned for a major version beyond the
	// documented range (Java 7 / class version 51).
	ErrUnsupportedVersion = errors.New("jclass: unsupported class file version")

	// ErrBadConstantTag is returned for an unrecognized constant pool tag.
	ErrBadConstantTag = errors.New("jclass: bad constant pool tag")

	// ErrBadPoolIndex is returned when a constant pool index is zero,
	// beyond the pool length, or refers to the unusable slot that
	// follows a Long or Double entry.
	ErrBadPoolIndex = errors.New("jclass: bad constant pool index")

	// ErrBadConstantKind is returned when a constant pool index is
	// resolved but does not hold the expected variant.
	ErrBadConstantKind = errors.New("jclass: constant pool entry has wrong kind")

	// ErrBadDescriptor is returned for a malformed field or method descriptor.
	ErrBadDescriptor = errors.New("jclass: malformed descriptor")

	// ErrBadBytecode is returned for an unknown opcode or a misaligned
	// switch payload.
	ErrBadBytecode = errors.New("jclass: bad bytecode")

	// ErrBadAttribute is returned when an attribute's declared length
	// disagrees with its decoded payload.
	ErrBadAttribute = errors.New("jclass: bad attribute")

	// ErrBadArchive is returned on jar/ZIP decode failure or a missing
	// manifest where one is required.
	ErrBadArchive = errors.New("jclass: bad archive")
)
