// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// AttrKind identifies the variant held by an Attribute.
type AttrKind int

// Attribute variants this package interprets. Anything else is kept as
// AttrUnknown, preserved verbatim but not decoded further.
const (
	AttrUnknown AttrKind = iota
	AttrCode
	AttrExceptions
	AttrSourceFile
	AttrLineNumberTable
	AttrLocalVariableTable
)

// ExceptionTableEntry is one row of a Code attribute's exception table.
// CatchType is a Class constant index, or 0 to mean "any throwable".
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// LocalVariableEntry describes the scope and type of one local variable
// slot, as recorded by javac's -g debug info.
type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

// Attribute is a tagged-variant attribute_info entry. Only the fields for
// Kind are meaningful.
type Attribute struct {
	Kind      AttrKind
	NameIndex uint16

	// AttrCode.
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []Attribute // nested attributes of a Code attribute

	// AttrExceptions.
	ExceptionIndexTable []uint16

	// AttrSourceFile.
	SourceFileIndex uint16

	// AttrLineNumberTable.
	LineNumbers []LineNumberEntry

	// AttrLocalVariableTable.
	LocalVariables []LocalVariableEntry

	// AttrUnknown: the raw attribute payload, preserved but not
	// interpreted.
	Raw []byte
}

// parseAttributes reads `count` attribute_info structures in sequence.
func parseAttributes(r *Reader, pool *ConstantPool, count uint16) ([]Attribute, error) {
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		a, err := parseAttribute(r, pool)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func parseAttribute(r *Reader, pool *ConstantPool) (Attribute, error) {
	nameIdx, err := r.U16()
	if err != nil {
		return Attribute{}, err
	}
	length, err := r.U32()
	if err != nil {
		return Attribute{}, err
	}
	payload, err := r.Bytes(int(length))
	if err != nil {
		return Attribute{}, err
	}
	name, err := pool.Utf8At(nameIdx)
	if err != nil {
		return Attribute{}, err
	}

	pr := NewReader(payload)
	var a Attribute
	a.NameIndex = nameIdx

	switch name {
	case "Code":
		a.Kind = AttrCode
		a.MaxStack, err = pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		a.MaxLocals, err = pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		codeLength, err := pr.U32()
		if err != nil {
			return Attribute{}, err
		}
		a.Code, err = pr.Bytes(int(codeLength))
		if err != nil {
			return Attribute{}, err
		}
		excCount, err := pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		a.ExceptionTable = make([]ExceptionTableEntry, excCount)
		for i := range a.ExceptionTable {
			e := &a.ExceptionTable[i]
			if e.StartPC, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.EndPC, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.HandlerPC, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.CatchType, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
		}
		nestedCount, err := pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		a.Attributes, err = parseAttributes(pr, pool, nestedCount)
		if err != nil {
			return Attribute{}, err
		}

	case "Exceptions":
		a.Kind = AttrExceptions
		n, err := pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		a.ExceptionIndexTable = make([]uint16, n)
		for i := range a.ExceptionIndexTable {
			if a.ExceptionIndexTable[i], err = pr.U16(); err != nil {
				return Attribute{}, err
			}
		}

	case "SourceFile":
		a.Kind = AttrSourceFile
		a.SourceFileIndex, err = pr.U16()
		if err != nil {
			return Attribute{}, err
		}

	case "LineNumberTable":
		a.Kind = AttrLineNumberTable
		n, err := pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		a.LineNumbers = make([]LineNumberEntry, n)
		for i := range a.LineNumbers {
			e := &a.LineNumbers[i]
			if e.StartPC, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.LineNumber, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
		}

	case "LocalVariableTable":
		a.Kind = AttrLocalVariableTable
		n, err := pr.U16()
		if err != nil {
			return Attribute{}, err
		}
		a.LocalVariables = make([]LocalVariableEntry, n)
		for i := range a.LocalVariables {
			e := &a.LocalVariables[i]
			if e.StartPC, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.Length, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.NameIndex, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.DescriptorIndex, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
			if e.Index, err = pr.U16(); err != nil {
				return Attribute{}, err
			}
		}

	default:
		a.Kind = AttrUnknown
		a.Raw = payload
		return a, nil
	}

	if pr.Remaining() != 0 {
		return Attribute{}, ErrBadAttribute
	}
	return a, nil
}

// CodeAttribute returns the Code attribute among attrs, if any.
func CodeAttribute(attrs []Attribute) (Attribute, bool) {
	for _, a := range attrs {
		if a.Kind == AttrCode {
			return a, true
		}
	}
	return Attribute{}, false
}
