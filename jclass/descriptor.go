// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "strings"

// baseTypeNames maps a field descriptor's base-type letter to its rendered
// Java name.
var baseTypeNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// baseTypeSizes maps a field descriptor's base-type letter to its byte size.
var baseTypeSizes = map[byte]int{
	'B': 1,
	'Z': 1,
	'S': 2,
	'C': 2,
	'I': 4,
	'F': 4,
	'J': 8,
	'D': 8,
}

// DemangleField parses one field descriptor starting at s[0] and returns
// its human-readable rendering (dotted class names, "[]" per array
// dimension) along with the number of bytes consumed from s. The return
// position 'V' (void) is accepted here too, since DemangleMethod reuses
// this function for the trailing return-type descriptor.
func DemangleField(s string) (rendered string, consumed int, err error) {
	dims := 0
	i := 0
	for i < len(s) && s[i] == '[' {
		dims++
		i++
	}
	if i >= len(s) {
		return "", 0, ErrBadDescriptor
	}

	var base string
	switch s[i] {
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return "", 0, ErrBadDescriptor
		}
		internal := s[i+1 : i+end]
		base = FQCN(internal)
		i += end + 1
	default:
		name, ok := baseTypeNames[s[i]]
		if !ok || (s[i] == 'V' && dims > 0) {
			return "", 0, ErrBadDescriptor
		}
		base = name
		i++
	}

	return base + strings.Repeat("[]", dims), i, nil
}

// DemangleMethod parses a method descriptor "(<params>)<return>" into the
// rendered parameter types, in order, and the rendered return type.
func DemangleMethod(s string) (params []string, ret string, err error) {
	if len(s) == 0 || s[0] != '(' {
		return nil, "", ErrBadDescriptor
	}
	i := 1
	for i < len(s) && s[i] != ')' {
		rendered, n, err := DemangleField(s[i:])
		if err != nil {
			return nil, "", err
		}
		if n == 0 {
			return nil, "", ErrBadDescriptor
		}
		params = append(params, rendered)
		i += n
	}
	if i >= len(s) || s[i] != ')' {
		return nil, "", ErrBadDescriptor
	}
	i++
	if i >= len(s) {
		return nil, "", ErrBadDescriptor
	}
	rendered, n, err := DemangleField(s[i:])
	if err != nil {
		return nil, "", err
	}
	if i+n != len(s) {
		return nil, "", ErrBadDescriptor
	}
	return params, rendered, nil
}

// SizeOfField returns the byte size of a value of the given field
// descriptor type: 8 for long/double, 1 for byte/boolean, 2 for
// short/char, 4 for int/float, and PointerSize() for references and
// arrays (the array's own descriptor, not its element, governs this —
// every array reference is just a pointer at the class-file level).
func SizeOfField(s string) (int, error) {
	if len(s) == 0 {
		return 0, ErrBadDescriptor
	}
	if s[0] == '[' || s[0] == 'L' {
		return int(PointerSize()), nil
	}
	n, ok := baseTypeSizes[s[0]]
	if !ok {
		return 0, ErrBadDescriptor
	}
	return n, nil
}

// FQCN converts an internal slash-separated class name (optionally wrapped
// in "L...;" descriptor form) to dotted form, e.g. "java/lang/String" or
// "Ljava/lang/String;" both become "java.lang.String".
func FQCN(s string) string {
	if len(s) >= 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "/", ".")
}
