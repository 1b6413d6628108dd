// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "strings"

// SymbolKind classifies a Symbol as a defined entity or a reference to one
// elsewhere. The order here is load-bearing: it matches the "CDITKFRJ"
// kind-character alphabet position for position, so KindChar can index
// straight into it.
type SymbolKind int

const (
	SymClass SymbolKind = iota
	SymStaticField
	SymInstanceField
	SymMethod
	SymRefClass
	SymRefStaticField
	SymRefInstanceField
	SymRefMethod
)

var symbolKindChars = [...]byte{'C', 'D', 'I', 'T', 'K', 'F', 'R', 'J'}

// Visibility is External (not private) or Private.
type Visibility int

const (
	External Visibility = iota
	Private
)

// Symbol is one defined or referenced entity extracted from a class file.
// Defined symbols (SymClass, SymStaticField, SymInstanceField, SymMethod)
// carry a non-nil Value, except a SymMethod for an abstract or native
// method (no Code attribute), which carries nil; reference symbols (the
// SymRef* kinds) always carry nil.
type Symbol struct {
	Value        *uint64
	Kind         SymbolKind
	Visibility   Visibility
	Name         string
	ExpandedName string
}

// KindChar renders the symbol's kind as the single nm-style letter,
// lowercased when the symbol is Private.
func (s Symbol) KindChar() byte {
	c := symbolKindChars[s.Kind]
	if s.Visibility == Private {
		return c - 'A' + 'a'
	}
	return c
}

// IsReference reports whether s is a reference symbol (one of the SymRef*
// kinds).
func (s Symbol) IsReference() bool { return s.Kind >= SymRefClass }

// Equal reports whether two symbols carry the same value (both nil, or
// both present and equal), kind, and name. Kind equality already ignores
// visibility, since Visibility is carried separately from Kind in this
// representation (the classic nm letter case only encodes visibility,
// not a distinct symbol kind).
func (a Symbol) Equal(b Symbol) bool {
	if (a.Value == nil) != (b.Value == nil) {
		return false
	}
	if a.Value != nil && *a.Value != *b.Value {
		return false
	}
	return a.Kind == b.Kind && a.Name == b.Name
}

func value(v uint64) *uint64 { return &v }

// ExtractSymbols walks a parsed class file and produces the class symbol,
// then its field symbols, then for each method its method symbol
// immediately followed by the reference symbols found while walking that
// method's bytecode, in declaration/bytecode order.
func ExtractSymbols(cf *ClassFile) ([]Symbol, error) {
	var out []Symbol

	thisName, err := cf.ThisClassName()
	if err != nil {
		return nil, err
	}
	fqcn := FQCN(thisName)

	out = append(out, Symbol{
		Value:      value(uint64(cf.Size)),
		Kind:       SymClass,
		Visibility: visibilityOf(cf.AccessFlags),
		Name:       fqcn,
	})

	for _, f := range cf.Fields {
		name, err := f.Name(cf.Pool)
		if err != nil {
			return nil, err
		}
		desc, err := f.Descriptor(cf.Pool)
		if err != nil {
			return nil, err
		}
		size, err := SizeOfField(desc)
		if err != nil {
			return nil, err
		}
		kind := SymInstanceField
		if f.IsStatic() {
			kind = SymStaticField
		}
		fieldType, _, err := DemangleField(desc)
		if err != nil {
			return nil, err
		}
		out = append(out, Symbol{
			Value:        value(uint64(size)),
			Kind:         kind,
			Visibility:   visibilityOf(f.AccessFlags),
			Name:         fqcn + "." + name,
			ExpandedName: fieldType + " " + fqcn + "." + name,
		})
	}

	for _, m := range cf.Methods {
		name, err := m.Name(cf.Pool)
		if err != nil {
			return nil, err
		}
		descriptor, err := m.Descriptor(cf.Pool)
		if err != nil {
			return nil, err
		}
		params, ret, err := DemangleMethod(descriptor)
		if err != nil {
			return nil, err
		}
		var methodValue *uint64
		if code, ok := m.Code(); ok {
			methodValue = value(uint64(len(code.Code)))
		}
		out = append(out, Symbol{
			Value:        methodValue,
			Kind:         SymMethod,
			Visibility:   visibilityOf(m.AccessFlags),
			Name:         fqcn + "." + name,
			ExpandedName: ret + " " + fqcn + "." + name + "(" + strings.Join(params, ", ") + ")",
		})

		if code, ok := m.Code(); ok {
			refs, err := extractReferences(cf, code.Code)
			if err != nil {
				return nil, err
			}
			out = append(out, refs...)
		}
	}

	return out, nil
}

func visibilityOf(accessFlags uint16) Visibility {
	if accessFlags&AccPrivate != 0 {
		return Private
	}
	return External
}

// extractReferences walks one method's Code buffer and emits a reference
// symbol for each opcode that touches the constant pool with one of the
// shapes documented for the symbol extractor.
func extractReferences(cf *ClassFile, code []byte) ([]Symbol, error) {
	insts, err := Walk(code)
	if err != nil {
		return nil, err
	}

	var out []Symbol
	for _, inst := range insts {
		switch inst.Opcode {
		case 187, 193, 192, 189, 197: // new, instanceof, checkcast, anewarray, multianewarray
			idx := uint16(inst.Operands[0])
			name, err := cf.Pool.ClassNameAt(idx)
			if err != nil {
				return nil, err
			}
			if len(name) > 0 && name[0] == '[' {
				// An array type descriptor, not a plain class name:
				// skip per the extractor's defined-reference shape.
				continue
			}
			out = append(out, Symbol{Kind: SymRefClass, Visibility: External, Name: FQCN(name)})

		case 18, 19: // ldc, ldc_w
			idx := uint16(inst.Operands[0])
			c, err := cf.Pool.At(idx)
			if err != nil {
				return nil, err
			}
			if c.Kind != KindClass {
				continue
			}
			name, err := cf.Pool.Utf8At(c.NameIndex)
			if err != nil {
				return nil, err
			}
			out = append(out, Symbol{Kind: SymRefClass, Visibility: External, Name: FQCN(name)})

		case 180, 181: // getfield, putfield
			idx := uint16(inst.Operands[0])
			class, name, _, err := cf.Pool.MemberRefAt(idx)
			if err != nil {
				return nil, err
			}
			out = append(out, Symbol{Kind: SymRefInstanceField, Visibility: External, Name: class + "." + name})

		case 178, 179: // getstatic, putstatic
			idx := uint16(inst.Operands[0])
			class, name, _, err := cf.Pool.MemberRefAt(idx)
			if err != nil {
				return nil, err
			}
			out = append(out, Symbol{Kind: SymRefStaticField, Visibility: External, Name: class + "." + name})

		case 182, 183, 184, 185: // invokevirtual, invokespecial, invokestatic, invokeinterface
			idx := uint16(inst.Operands[0])
			class, name, _, err := cf.Pool.MemberRefAt(idx)
			if err != nil {
				return nil, err
			}
			out = append(out, Symbol{Kind: SymRefMethod, Visibility: External, Name: class + "." + name})
		}
	}
	return out, nil
}
