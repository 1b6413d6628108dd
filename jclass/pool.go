// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// Constant pool tags, JVM Specification table 4.4-A (extended with the
// method-handle family added for invokedynamic support in class version 51).
const (
	TagUtf8              = 1
	TagInteger           = 3
	TagFloat             = 4
	TagLong              = 5
	TagDouble            = 6
	TagClass             = 7
	TagString            = 8
	TagFieldRef          = 9
	TagMethodRef         = 10
	TagInterfaceMethRef  = 11
	TagNameAndType       = 12
	TagMethodHandle      = 15
	TagMethodType        = 16
	TagInvokeDynamic     = 18
)

// ConstantKind identifies the variant held by a ConstantPool slot.
type ConstantKind int

// Constant pool entry variants.
const (
	KindUnusable ConstantKind = iota // the slot following a Long or Double
	KindUtf8
	KindInteger
	KindFloat
	KindLong
	KindDouble
	KindClass
	KindString
	KindFieldRef
	KindMethodRef
	KindInterfaceMethodRef
	KindNameAndType
	KindMethodHandle
	KindMethodType
	KindInvokeDynamic
)

// Constant is a tagged-variant constant pool entry. Only the fields that
// apply to Kind are meaningful; the rest are zero.
type Constant struct {
	Kind ConstantKind

	Utf8    string // KindUtf8: decoded modified-UTF-8 text
	Int32   int32  // KindInteger
	Float32 float32
	Int64   int64 // KindLong
	Float64 float64

	// KindClass: NameIndex -> Utf8 internal name.
	// KindString: NameIndex -> Utf8 the string's bytes.
	NameIndex uint16

	// KindFieldRef/KindMethodRef/KindInterfaceMethodRef: the owning class
	// and the referenced NameAndType.
	ClassIndex       uint16
	NameAndTypeIndex uint16

	// KindNameAndType.
	DescriptorIndex uint16

	// KindMethodHandle.
	ReferenceKind  uint8
	ReferenceIndex uint16

	// KindInvokeDynamic.
	BootstrapMethodAttrIndex uint16
}

// ConstantPool is the 1-indexed constant pool of a class file. Index 0 is
// never valid; entries[0] is an unused placeholder so that pool indices
// can be used directly as slice indices.
type ConstantPool struct {
	entries []Constant
}

// Len returns the highest valid index in the pool (the constant_pool_count
// from the class file minus one).
func (p *ConstantPool) Len() int {
	if len(p.entries) == 0 {
		return 0
	}
	return len(p.entries) - 1
}

// At resolves index i to its Constant, failing if i is out of range or
// refers to the unusable slot after a Long or Double.
func (p *ConstantPool) At(i uint16) (Constant, error) {
	if int(i) < 1 || int(i) >= len(p.entries) {
		return Constant{}, ErrBadPoolIndex
	}
	c := p.entries[i]
	if c.Kind == KindUnusable {
		return Constant{}, ErrBadPoolIndex
	}
	return c, nil
}

// Utf8At resolves i to its decoded Utf8 text, failing if the slot does not
// hold a Utf8 constant.
func (p *ConstantPool) Utf8At(i uint16) (string, error) {
	c, err := p.At(i)
	if err != nil {
		return "", err
	}
	if c.Kind != KindUtf8 {
		return "", ErrBadConstantKind
	}
	return c.Utf8, nil
}

// ClassNameAt resolves a Class constant at i to its internal (slash-form)
// name.
func (p *ConstantPool) ClassNameAt(i uint16) (string, error) {
	c, err := p.At(i)
	if err != nil {
		return "", err
	}
	if c.Kind != KindClass {
		return "", ErrBadConstantKind
	}
	return p.Utf8At(c.NameIndex)
}

// NameAndTypeAt resolves a NameAndType constant at i to its member name and
// descriptor text.
func (p *ConstantPool) NameAndTypeAt(i uint16) (name, descriptor string, err error) {
	c, err := p.At(i)
	if err != nil {
		return "", "", err
	}
	if c.Kind != KindNameAndType {
		return "", "", ErrBadConstantKind
	}
	name, err = p.Utf8At(c.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = p.Utf8At(c.DescriptorIndex)
	return name, descriptor, err
}

// MemberRefAt resolves a FieldRef/MethodRef/InterfaceMethodRef constant at
// i to the dotted class name it belongs to, plus the member's name and
// descriptor.
func (p *ConstantPool) MemberRefAt(i uint16) (class, name, descriptor string, err error) {
	c, err := p.At(i)
	if err != nil {
		return "", "", "", err
	}
	switch c.Kind {
	case KindFieldRef, KindMethodRef, KindInterfaceMethodRef:
	default:
		return "", "", "", ErrBadConstantKind
	}
	internal, err := p.ClassNameAt(c.ClassIndex)
	if err != nil {
		return "", "", "", err
	}
	name, descriptor, err = p.NameAndTypeAt(c.NameAndTypeIndex)
	if err != nil {
		return "", "", "", err
	}
	return FQCN(internal), name, descriptor, nil
}

// parseConstantPool reads constant_pool_count-1 entries, honoring the rule
// that a Long or Double entry occupies two index slots: the slot
// immediately following it is left as KindUnusable and must never be
// dereferenced.
func parseConstantPool(r *Reader, count uint16) (*ConstantPool, error) {
	entries := make([]Constant, count)
	i := uint16(1)
	for i < count {
		tag, err := r.U8()
		if err != nil {
			return nil, err
		}
		c := Constant{}
		switch tag {
		case TagUtf8:
			length, err := r.U16()
			if err != nil {
				return nil, err
			}
			raw, err := r.Bytes(int(length))
			if err != nil {
				return nil, err
			}
			text, err := DecodeModifiedUTF8(raw)
			if err != nil {
				return nil, err
			}
			c.Kind = KindUtf8
			c.Utf8 = text
		case TagInteger:
			v, err := r.S32()
			if err != nil {
				return nil, err
			}
			c.Kind = KindInteger
			c.Int32 = v
		case TagFloat:
			v, err := r.F32()
			if err != nil {
				return nil, err
			}
			c.Kind = KindFloat
			c.Float32 = v
		case TagLong:
			v, err := r.S64()
			if err != nil {
				return nil, err
			}
			c.Kind = KindLong
			c.Int64 = v
		case TagDouble:
			v, err := r.F64()
			if err != nil {
				return nil, err
			}
			c.Kind = KindDouble
			c.Float64 = v
		case TagClass:
			idx, err := r.U16()
			if err != nil {
				return nil, err
			}
			c.Kind = KindClass
			c.NameIndex = idx
		case TagString:
			idx, err := r.U16()
			if err != nil {
				return nil, err
			}
			c.Kind = KindString
			c.NameIndex = idx
		case TagFieldRef, TagMethodRef, TagInterfaceMethRef:
			classIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			natIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			switch tag {
			case TagFieldRef:
				c.Kind = KindFieldRef
			case TagMethodRef:
				c.Kind = KindMethodRef
			case TagInterfaceMethRef:
				c.Kind = KindInterfaceMethodRef
			}
			c.ClassIndex = classIdx
			c.NameAndTypeIndex = natIdx
		case TagNameAndType:
			nameIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			descIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			c.Kind = KindNameAndType
			c.NameIndex = nameIdx
			c.DescriptorIndex = descIdx
		case TagMethodHandle:
			refKind, err := r.U8()
			if err != nil {
				return nil, err
			}
			refIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			c.Kind = KindMethodHandle
			c.ReferenceKind = refKind
			c.ReferenceIndex = refIdx
		case TagMethodType:
			descIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			c.Kind = KindMethodType
			c.DescriptorIndex = descIdx
		case TagInvokeDynamic:
			bootstrapIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			natIdx, err := r.U16()
			if err != nil {
				return nil, err
			}
			c.Kind = KindInvokeDynamic
			c.BootstrapMethodAttrIndex = bootstrapIdx
			c.NameAndTypeIndex = natIdx
		default:
			return nil, ErrBadConstantTag
		}

		entries[i] = c
		i++
		if c.Kind == KindLong || c.Kind == KindDouble {
			// The next slot is a sentinel: present in the pool's index
			// space but never resolvable.
			if i < count {
				entries[i] = Constant{Kind: KindUnusable}
			}
			i++
		}
	}
	return &ConstantPool{entries: entries}, nil
}
