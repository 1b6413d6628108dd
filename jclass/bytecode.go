// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// Instruction is one decoded bytecode instruction: its offset, mnemonic,
// and generic operand values in encounter order. TableSwitch/LookupSwitch
// hold the structured payload for the two variable-length switch opcodes;
// Operands is empty for those (use the structured fields instead).
type Instruction struct {
	PC       int
	Opcode   byte
	Mnemonic string
	Operands []int64

	TableSwitch  *TableSwitchPayload
	LookupSwitch *LookupSwitchPayload

	// WideOpcode is the opcode modified by a preceding `wide` prefix, 0
	// otherwise.
	WideOpcode byte
}

// TableSwitchPayload is the decoded payload of a tableswitch instruction.
type TableSwitchPayload struct {
	Default int32
	Low     int32
	High    int32
	Offsets []int32 // length High-Low+1, offsets[k] is the jump for case Low+k
}

// LookupSwitchPayload is the decoded payload of a lookupswitch instruction.
type LookupSwitchPayload struct {
	Default int32
	Pairs   []LookupPair
}

// LookupPair is one (match, offset) entry of a lookupswitch table.
type LookupPair struct {
	Match  int32
	Offset int32
}

// padToBoundary returns the number of zero bytes that follow opcode byte
// at pc before the first switch payload int, per the JVM's alignment
// rule: the first payload byte must land on a 4-byte boundary measured
// from the start of the method's code array.
func padToBoundary(pc int) int {
	return (4 - (pc+1)%4) % 4
}

// Walk decodes every instruction in a method's Code attribute buffer, in
// order. The sum of each instruction's consumed bytes exactly accounts for
// len(code); Walk never reads past the end of code and fails ErrBadBytecode
// on an unrecognized opcode.
func Walk(code []byte) ([]Instruction, error) {
	r := NewReader(code)
	var out []Instruction

	for r.Remaining() > 0 {
		pc := r.Position()
		opcode, err := r.U8()
		if err != nil {
			return out, err
		}

		switch opcode {
		case OpTableSwitch:
			inst, err := walkTableSwitch(r, pc)
			if err != nil {
				return out, err
			}
			out = append(out, inst)
			continue

		case OpLookupSwitch:
			inst, err := walkLookupSwitch(r, pc)
			if err != nil {
				return out, err
			}
			out = append(out, inst)
			continue

		case OpWide:
			inst, err := walkWide(r, pc)
			if err != nil {
				return out, err
			}
			out = append(out, inst)
			continue
		}

		info := opcodeTable[opcode]
		if info.Mnemonic == "" {
			return out, ErrBadBytecode
		}

		inst := Instruction{PC: pc, Opcode: opcode, Mnemonic: info.Mnemonic}
		for _, operand := range info.Operands {
			v, err := readOperand(r, operand)
			if err != nil {
				return out, err
			}
			inst.Operands = append(inst.Operands, v)
		}
		out = append(out, inst)
	}
	return out, nil
}

func readOperand(r *Reader, o Operand) (int64, error) {
	switch o.Width {
	case 1:
		v, err := r.U8()
		if err != nil {
			return 0, err
		}
		if o.Signed {
			return int64(int8(v)), nil
		}
		return int64(v), nil
	case 2:
		v, err := r.U16()
		if err != nil {
			return 0, err
		}
		if o.Signed {
			return int64(int16(v)), nil
		}
		return int64(v), nil
	case 4:
		v, err := r.S32()
		if err != nil {
			return 0, err
		}
		return int64(v), nil
	default:
		return 0, ErrBadBytecode
	}
}

func walkTableSwitch(r *Reader, pc int) (Instruction, error) {
	if err := r.Skip(padToBoundary(pc)); err != nil {
		return Instruction{}, err
	}
	def, err := r.S32()
	if err != nil {
		return Instruction{}, err
	}
	low, err := r.S32()
	if err != nil {
		return Instruction{}, err
	}
	high, err := r.S32()
	if err != nil {
		return Instruction{}, err
	}
	if high < low {
		return Instruction{}, ErrBadBytecode
	}
	n := int(high-low) + 1
	offsets := make([]int32, n)
	for i := range offsets {
		if offsets[i], err = r.S32(); err != nil {
			return Instruction{}, err
		}
	}
	return Instruction{
		PC:       pc,
		Opcode:   OpTableSwitch,
		Mnemonic: "tableswitch",
		TableSwitch: &TableSwitchPayload{
			Default: def,
			Low:     low,
			High:    high,
			Offsets: offsets,
		},
	}, nil
}

func walkLookupSwitch(r *Reader, pc int) (Instruction, error) {
	if err := r.Skip(padToBoundary(pc)); err != nil {
		return Instruction{}, err
	}
	def, err := r.S32()
	if err != nil {
		return Instruction{}, err
	}
	npairsU, err := r.U32()
	if err != nil {
		return Instruction{}, err
	}
	npairs := int(npairsU)
	pairs := make([]LookupPair, npairs)
	for i := range pairs {
		if pairs[i].Match, err = r.S32(); err != nil {
			return Instruction{}, err
		}
		if pairs[i].Offset, err = r.S32(); err != nil {
			return Instruction{}, err
		}
	}
	return Instruction{
		PC:       pc,
		Opcode:   OpLookupSwitch,
		Mnemonic: "lookupswitch",
		LookupSwitch: &LookupSwitchPayload{
			Default: def,
			Pairs:   pairs,
		},
	}, nil
}

func walkWide(r *Reader, pc int) (Instruction, error) {
	sub, err := r.U8()
	if err != nil {
		return Instruction{}, err
	}
	info := opcodeTable[sub]
	if info.Mnemonic == "" || info.Variable {
		return Instruction{}, ErrBadBytecode
	}

	inst := Instruction{PC: pc, Opcode: OpWide, Mnemonic: "wide " + info.Mnemonic, WideOpcode: sub}
	if sub == opIinc {
		local, err := r.U16()
		if err != nil {
			return Instruction{}, err
		}
		constVal, err := r.U16()
		if err != nil {
			return Instruction{}, err
		}
		inst.Operands = []int64{int64(local), int64(int16(constVal))}
		return inst, nil
	}

	local, err := r.U16()
	if err != nil {
		return Instruction{}, err
	}
	inst.Operands = []int64{int64(local)}
	return inst, nil
}
