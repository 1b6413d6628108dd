// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package render formats a parsed class file as disassembly text, the way
// jdump prints it.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/saferwall/jbinutils/jclass"
)

// Disassemble writes cf's full disassembly to w: the class declaration,
// its constant pool, and every field and method with their Code bodies.
func Disassemble(w io.Writer, cf *jclass.ClassFile, sourceName string) error {
	if err := writeClassHeader(w, cf, sourceName); err != nil {
		return err
	}
	if err := writeConstantPool(w, cf); err != nil {
		return err
	}
	fmt.Fprintln(w, "{")
	for _, f := range cf.Fields {
		if err := writeField(w, cf, f); err != nil {
			return err
		}
	}
	for _, m := range cf.Methods {
		if err := writeMethod(w, cf, m); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "}")
	return nil
}

func writeClassHeader(w io.Writer, cf *jclass.ClassFile, sourceName string) error {
	this, err := cf.ThisClassName()
	if err != nil {
		return err
	}
	super, err := cf.SuperClassName()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Compiled from %q\n", sourceName)
	kind := "class"
	if cf.IsInterface() {
		kind = "interface"
	}
	decl := jclass.FQCN(this)
	if super != "" && !cf.IsInterface() {
		decl += " extends " + jclass.FQCN(super)
	}
	fmt.Fprintf(w, "%s %s\n", kind, decl)
	return nil
}

func writeConstantPool(w io.Writer, cf *jclass.ClassFile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintln(tw, "Constant pool:")
	for i := 1; i <= cf.Pool.Len(); i++ {
		c, err := cf.Pool.At(uint16(i))
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "  #%d = %s\t%s\n", i, constantTagName(c), constantValue(cf, c))
	}
	return tw.Flush()
}

func constantTagName(c jclass.Constant) string {
	switch c.Kind {
	case jclass.KindUtf8:
		return "Utf8"
	case jclass.KindInteger:
		return "Integer"
	case jclass.KindFloat:
		return "Float"
	case jclass.KindLong:
		return "Long"
	case jclass.KindDouble:
		return "Double"
	case jclass.KindClass:
		return "Class"
	case jclass.KindString:
		return "String"
	case jclass.KindFieldRef:
		return "Fieldref"
	case jclass.KindMethodRef:
		return "Methodref"
	case jclass.KindInterfaceMethodRef:
		return "InterfaceMethodref"
	case jclass.KindNameAndType:
		return "NameAndType"
	case jclass.KindMethodHandle:
		return "MethodHandle"
	case jclass.KindMethodType:
		return "MethodType"
	case jclass.KindInvokeDynamic:
		return "InvokeDynamic"
	default:
		return "Unknown"
	}
}

func constantValue(cf *jclass.ClassFile, c jclass.Constant) string {
	switch c.Kind {
	case jclass.KindUtf8:
		return c.Utf8
	case jclass.KindInteger:
		return fmt.Sprintf("%d", c.Int32)
	case jclass.KindFloat:
		return fmt.Sprintf("%gf", c.Float32)
	case jclass.KindLong:
		return fmt.Sprintf("%dl", c.Int64)
	case jclass.KindDouble:
		return fmt.Sprintf("%gd", c.Float64)
	case jclass.KindClass:
		name, err := cf.Pool.Utf8At(c.NameIndex)
		if err != nil {
			return "?"
		}
		return "#" + fmt.Sprint(c.NameIndex) + "\t// " + jclass.FQCN(name)
	case jclass.KindString:
		return fmt.Sprintf("#%d", c.NameIndex)
	case jclass.KindFieldRef, jclass.KindMethodRef, jclass.KindInterfaceMethodRef:
		return fmt.Sprintf("#%d.#%d", c.ClassIndex, c.NameAndTypeIndex)
	case jclass.KindNameAndType:
		return fmt.Sprintf("#%d:#%d", c.NameIndex, c.DescriptorIndex)
	case jclass.KindMethodHandle:
		return fmt.Sprintf("%d:#%d", c.ReferenceKind, c.ReferenceIndex)
	case jclass.KindMethodType:
		return fmt.Sprintf("#%d", c.DescriptorIndex)
	case jclass.KindInvokeDynamic:
		return fmt.Sprintf("#%d:#%d", c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	default:
		return ""
	}
}

func writeField(w io.Writer, cf *jclass.ClassFile, f *jclass.Field) error {
	name, err := f.Name(cf.Pool)
	if err != nil {
		return err
	}
	descriptor, err := f.Descriptor(cf.Pool)
	if err != nil {
		return err
	}
	rendered, _, err := jclass.DemangleField(descriptor)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  %s %s;\n", fieldModifiers(f.AccessFlags)+rendered, name)
	fmt.Fprintf(w, "    Signature: %s\n\n", descriptor)
	return nil
}

func writeMethod(w io.Writer, cf *jclass.ClassFile, m *jclass.Method) error {
	name, err := m.Name(cf.Pool)
	if err != nil {
		return err
	}
	descriptor, err := m.Descriptor(cf.Pool)
	if err != nil {
		return err
	}
	params, ret, err := jclass.DemangleMethod(descriptor)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s%s %s(%s);\n", methodModifiers(m.AccessFlags), ret, name, strings.Join(params, ", "))
	fmt.Fprintf(w, "    Signature: %s\n", descriptor)

	code, ok := m.Code()
	if !ok {
		fmt.Fprintln(w)
		return nil
	}

	argsSize := len(params)
	if m.AccessFlags&jclass.AccStatic == 0 {
		argsSize++ // implicit this receiver
	}

	fmt.Fprintln(w, "    Code:")
	fmt.Fprintf(w, "      Stack=%d, Locals=%d, Args_size=%d\n", code.MaxStack, code.MaxLocals, argsSize)

	insts, err := jclass.Walk(code.Code)
	if err != nil {
		return err
	}
	for _, inst := range insts {
		if err := writeInstruction(w, cf, inst); err != nil {
			return err
		}
	}

	if len(code.ExceptionTable) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
		fmt.Fprintln(tw, "      Exception table:")
		fmt.Fprintln(tw, "       from\tto\ttarget\ttype")
		for _, e := range code.ExceptionTable {
			catch := "any"
			if e.CatchType != 0 {
				if name, err := cf.Pool.ClassNameAt(e.CatchType); err == nil {
					catch = "Class " + jclass.FQCN(name)
				}
			}
			fmt.Fprintf(tw, "       %d\t%d\t%d\t%s\n", e.StartPC, e.EndPC, e.HandlerPC, catch)
		}
		tw.Flush()
	}

	fmt.Fprintln(w)
	return nil
}

func writeInstruction(w io.Writer, cf *jclass.ClassFile, inst jclass.Instruction) error {
	switch {
	case inst.TableSwitch != nil:
		ts := inst.TableSwitch
		fmt.Fprintf(w, "   %d:\ttableswitch { // %d to %d\n", inst.PC, ts.Low, ts.High)
		for i, off := range ts.Offsets {
			fmt.Fprintf(w, "   %7d: %d\n", ts.Low+int32(i), inst.PC+int(off))
		}
		fmt.Fprintf(w, "   %7s: %d\n", "default", inst.PC+int(ts.Default))
		fmt.Fprintln(w, "   }")
		return nil

	case inst.LookupSwitch != nil:
		ls := inst.LookupSwitch
		fmt.Fprintf(w, "   %d:\tlookupswitch { // %d\n", inst.PC, len(ls.Pairs))
		for _, p := range ls.Pairs {
			fmt.Fprintf(w, "   %7d: %d\n", p.Match, inst.PC+int(p.Offset))
		}
		fmt.Fprintf(w, "   %7s: %d\n", "default", inst.PC+int(ls.Default))
		fmt.Fprintln(w, "   }")
		return nil
	}

	operandText, suffix, err := renderOperands(cf, inst)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("   %d:\t%s", inst.PC, inst.Mnemonic)
	if operandText != "" {
		line += "\t" + operandText
	}
	if suffix != "" {
		line += "; //" + suffix
	}
	fmt.Fprintln(w, line)
	return nil
}

func renderOperands(cf *jclass.ClassFile, inst jclass.Instruction) (text, suffix string, err error) {
	if len(inst.Operands) == 0 {
		return "", "", nil
	}

	switch inst.Opcode {
	case 18, 19: // ldc, ldc_w
		idx := uint16(inst.Operands[0])
		c, err := cf.Pool.At(idx)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("#%d", idx), " " + constantValue(cf, c), nil

	case 178, 179, 180, 181: // getstatic/putstatic/getfield/putfield
		idx := uint16(inst.Operands[0])
		class, name, descriptor, err := cf.Pool.MemberRefAt(idx)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("#%d", idx), fmt.Sprintf(" Field %s.%s:%s", class, name, descriptor), nil

	case 182, 183, 184, 185: // invoke*
		idx := uint16(inst.Operands[0])
		class, name, descriptor, err := cf.Pool.MemberRefAt(idx)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("#%d", idx), fmt.Sprintf(" Method %s.%s:%s", class, name, descriptor), nil

	case 187, 189, 192, 193: // new/anewarray/checkcast/instanceof
		idx := uint16(inst.Operands[0])
		name, err := cf.Pool.ClassNameAt(idx)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("#%d", idx), " class " + jclass.FQCN(name), nil

	case 188: // newarray
		return jclass.ArrayTypeName(inst.Operands[0]), "", nil

	case 153, 154, 155, 156, 157, 158, 159, 160, 161, 162, 163, 164, 165, 166, 167, 168, 198, 199: // branches
		return fmt.Sprintf("%d", inst.PC+int(inst.Operands[0])), "", nil

	case 200, 201: // goto_w, jsr_w
		return fmt.Sprintf("%d", inst.PC+int(inst.Operands[0])), "", nil
	}

	parts := make([]string, len(inst.Operands))
	for i, v := range inst.Operands {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", "), "", nil
}

func fieldModifiers(flags uint16) string {
	var parts []string
	if flags&jclass.AccPublic != 0 {
		parts = append(parts, "public")
	}
	if flags&jclass.AccPrivate != 0 {
		parts = append(parts, "private")
	}
	if flags&jclass.AccProtected != 0 {
		parts = append(parts, "protected")
	}
	if flags&jclass.AccStatic != 0 {
		parts = append(parts, "static")
	}
	if flags&jclass.AccFinal != 0 {
		parts = append(parts, "final")
	}
	if flags&jclass.AccVolatile != 0 {
		parts = append(parts, "volatile")
	}
	if flags&jclass.AccTransient != 0 {
		parts = append(parts, "transient")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

func methodModifiers(flags uint16) string {
	var parts []string
	if flags&jclass.AccPublic != 0 {
		parts = append(parts, "public")
	}
	if flags&jclass.AccPrivate != 0 {
		parts = append(parts, "private")
	}
	if flags&jclass.AccProtected != 0 {
		parts = append(parts, "protected")
	}
	if flags&jclass.AccStatic != 0 {
		parts = append(parts, "static")
	}
	if flags&jclass.AccFinal != 0 {
		parts = append(parts, "final")
	}
	if flags&jclass.AccSynchronized != 0 {
		parts = append(parts, "synchronized")
	}
	if flags&jclass.AccNative != 0 {
		parts = append(parts, "native")
	}
	if flags&jclass.AccAbstract != 0 {
		parts = append(parts, "abstract")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}
