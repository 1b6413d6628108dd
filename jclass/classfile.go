// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// Magic is the 4-byte signature every class file begins with.
const Magic = 0xCAFEBABE

// MaxMajorVersion is the highest class file major version this package
// parses (Java SE 7 / class file version 51).
const MaxMajorVersion = 51

// Class, field and method access flags (JVM Specification tables
// 4.1-A, 4.5-A, 4.6-A). Not every flag applies to every owner; callers
// mask with the bits relevant to the structure at hand.
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSuper        = 0x0020 // classes
	AccSynchronized = 0x0020 // methods
	AccVolatile     = 0x0040 // fields
	AccBridge       = 0x0040 // methods
	AccTransient    = 0x0080 // fields
	AccVarargs      = 0x0080 // methods
	AccNative       = 0x0100
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
	AccSynthetic    = 0x1000
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
)

// Member is the shared shape of a field_info/method_info structure: access
// flags plus name/descriptor constant-pool indices and its own attributes.
// Field and Method are distinct named types over the same shape so callers
// cannot mix them up; both carry a pointer back to their owning
// ClassFile only at the call site (rendering and extraction take the
// ClassFile explicitly), not as a stored back-reference, per the "no
// cyclic ownership" design note.
type Member struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// Name resolves the member's name against pool.
func (m *Member) Name(pool *ConstantPool) (string, error) {
	return pool.Utf8At(m.NameIndex)
}

// Descriptor resolves the member's descriptor against pool.
func (m *Member) Descriptor(pool *ConstantPool) (string, error) {
	return pool.Utf8At(m.DescriptorIndex)
}

// IsPrivate reports whether ACC_PRIVATE is set.
func (m *Member) IsPrivate() bool { return m.AccessFlags&AccPrivate != 0 }

// Field is a field_info structure.
type Field struct{ Member }

// IsStatic reports whether ACC_STATIC is set.
func (f *Field) IsStatic() bool { return f.AccessFlags&AccStatic != 0 }

// Method is a method_info structure.
type Method struct{ Member }

// IsAbstract reports whether ACC_ABSTRACT is set.
func (m *Method) IsAbstract() bool { return m.AccessFlags&AccAbstract != 0 }

// IsNative reports whether ACC_NATIVE is set.
func (m *Method) IsNative() bool { return m.AccessFlags&AccNative != 0 }

// Code returns the method's Code attribute, if it has one. Abstract and
// native methods never do.
func (m *Method) Code() (Attribute, bool) { return CodeAttribute(m.Attributes) }

// ClassFile is one parsed .class file. It is immutable after Parse
// returns. Parse stores pool indices as read without checking them; they
// are resolved lazily, and the pool accessors return ErrBadPoolIndex or
// ErrBadConstantKind for an index that is out of range or of the wrong kind.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []*Field
	Methods      []*Method
	Attributes   []Attribute

	// Size is the number of input bytes this class file consumed.
	Size uint32

	// Notices collects non-fatal structural observations made while
	// parsing (e.g. an unrecognized attribute name), the way the
	// teacher's File.Anomalies collects PE oddities that don't abort
	// parsing.
	Notices []string
}

// IsInterface reports whether ACC_INTERFACE is set.
func (cf *ClassFile) IsInterface() bool { return cf.AccessFlags&AccInterface != 0 }

// ThisClassName resolves the class's own internal (slash-form) name.
func (cf *ClassFile) ThisClassName() (string, error) {
	return cf.Pool.ClassNameAt(cf.ThisClass)
}

// SuperClassName resolves the superclass's internal name. It returns ""
// when SuperClass is 0, which is only valid for java.lang.Object.
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.Pool.ClassNameAt(cf.SuperClass)
}

// Parse decodes a single .class file from data. On success the entire
// input was consumed; trailing bytes are reported as ErrExtraData.
func Parse(data []byte) (*ClassFile, error) {
	r := NewReader(data)

	magic, err := r.U32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrBadMagic
	}

	cf := &ClassFile{}
	if cf.MinorVersion, err = r.U16(); err != nil {
		return nil, err
	}
	if cf.MajorVersion, err = r.U16(); err != nil {
		return nil, err
	}
	if cf.MajorVersion > MaxMajorVersion {
		return nil, ErrUnsupportedVersion
	}

	poolCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	cf.Pool, err = parseConstantPool(r, poolCount)
	if err != nil {
		return nil, err
	}

	if cf.AccessFlags, err = r.U16(); err != nil {
		return nil, err
	}
	if cf.ThisClass, err = r.U16(); err != nil {
		return nil, err
	}
	if cf.SuperClass, err = r.U16(); err != nil {
		return nil, err
	}

	interfacesCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = r.U16(); err != nil {
			return nil, err
		}
	}

	fieldsCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	cf.Fields = make([]*Field, fieldsCount)
	for i := range cf.Fields {
		f := &Field{}
		if err := parseMember(r, cf.Pool, &f.Member); err != nil {
			return nil, err
		}
		cf.Fields[i] = f
	}

	methodsCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	cf.Methods = make([]*Method, methodsCount)
	for i := range cf.Methods {
		m := &Method{}
		if err := parseMember(r, cf.Pool, &m.Member); err != nil {
			return nil, err
		}
		cf.Methods[i] = m
	}

	attrsCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	cf.Attributes, err = parseAttributes(r, cf.Pool, attrsCount)
	if err != nil {
		return nil, err
	}
	for _, a := range cf.Attributes {
		if a.Kind == AttrUnknown {
			name, _ := cf.Pool.Utf8At(a.NameIndex)
			cf.Notices = append(cf.Notices, "unrecognized attribute: "+name)
		}
	}

	cf.Size = uint32(r.Position())
	if r.Remaining() != 0 {
		return cf, ErrExtraData
	}
	return cf, nil
}

func parseMember(r *Reader, pool *ConstantPool, m *Member) error {
	var err error
	if m.AccessFlags, err = r.U16(); err != nil {
		return err
	}
	if m.NameIndex, err = r.U16(); err != nil {
		return err
	}
	if m.DescriptorIndex, err = r.U16(); err != nil {
		return err
	}
	attrsCount, err := r.U16()
	if err != nil {
		return err
	}
	m.Attributes, err = parseAttributes(r, pool, attrsCount)
	return err
}
