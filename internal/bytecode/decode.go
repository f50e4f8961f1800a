// Package bytecode decodes JVM method bodies into ordered instruction lists.
//
// The sequential Position of each decoded instruction is the identity used
// for translation keys, so decoding must be byte-exact and deterministic:
// extraction and rewriting both call the one Decode in this package.
package bytecode

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one decoded JVM instruction.
type Instruction struct {
	Opcode   byte
	Operands []byte
	Offset   int // byte offset within the method body
	Position int // sequential index within the decoded list
}

// Decode turns the raw bytes of one method's Code attribute into the ordered
// instruction list. Any undefined opcode or truncated operand fails the whole
// method: a misjudged width would silently shift every later Position.
func Decode(code []byte) ([]Instruction, error) {
	var out []Instruction
	pos := 0
	for off := 0; off < len(code); {
		op := code[off]
		if opNames[op] == "" {
			return nil, fmt.Errorf("bytecode: undefined opcode 0x%02x at offset %d", op, off)
		}

		var width int
		switch op {
		case OpWide:
			w, err := wideWidth(code, off)
			if err != nil {
				return nil, err
			}
			width = w
		case OpTableswitch:
			w, err := tableswitchWidth(code, off)
			if err != nil {
				return nil, err
			}
			width = w
		case OpLookupswitch:
			w, err := lookupswitchWidth(code, off)
			if err != nil {
				return nil, err
			}
			width = w
		default:
			width = operandWidth[op]
		}

		if off+1+width > len(code) {
			return nil, fmt.Errorf("bytecode: truncated %s at offset %d", opNames[op], off)
		}

		out = append(out, Instruction{
			Opcode:   op,
			Operands: code[off+1 : off+1+width],
			Offset:   off,
			Position: pos,
		})
		off += 1 + width
		pos++
	}
	return out, nil
}

// wideWidth: wide <op> index16, plus const16 when the modified opcode is iinc.
func wideWidth(code []byte, off int) (int, error) {
	if off+1 >= len(code) {
		return 0, fmt.Errorf("bytecode: truncated wide at offset %d", off)
	}
	if code[off+1] == OpIinc {
		return 5, nil
	}
	return 3, nil
}

// tableswitchWidth: 0-3 alignment pad to a 4-byte boundary from the start of
// the code array, then default(4), low(4), high(4), (high-low+1) jump offsets.
func tableswitchWidth(code []byte, off int) (int, error) {
	pad := switchPad(off)
	base := off + 1 + pad
	if base+12 > len(code) {
		return 0, fmt.Errorf("bytecode: truncated tableswitch at offset %d", off)
	}
	low := int32(binary.BigEndian.Uint32(code[base+4:]))
	high := int32(binary.BigEndian.Uint32(code[base+8:]))
	if high < low {
		return 0, fmt.Errorf("bytecode: tableswitch at offset %d has high %d < low %d", off, high, low)
	}
	return pad + 12 + 4*(int(high)-int(low)+1), nil
}

// lookupswitchWidth: pad, default(4), npairs(4), npairs match-offset pairs.
func lookupswitchWidth(code []byte, off int) (int, error) {
	pad := switchPad(off)
	base := off + 1 + pad
	if base+8 > len(code) {
		return 0, fmt.Errorf("bytecode: truncated lookupswitch at offset %d", off)
	}
	npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
	if npairs < 0 {
		return 0, fmt.Errorf("bytecode: lookupswitch at offset %d has negative pair count", off)
	}
	return pad + 8 + 8*int(npairs), nil
}

func switchPad(opcodeOffset int) int {
	return (3 - opcodeOffset%4 + 4) % 4
}

// IsStringLoad reports whether the instruction is ldc or ldc_w. ldc2_w is
// excluded: it only loads long/double constants.
func (in Instruction) IsStringLoad() bool {
	return in.Opcode == OpLdc || in.Opcode == OpLdcW
}

// IsInvoke reports whether the instruction is one of the four invoke-family
// opcodes the usage analyzer interprets.
func (in Instruction) IsInvoke() bool {
	return in.Opcode >= OpInvokevirtual && in.Opcode <= OpInvokeinterface
}

// IsReturn reports whether the instruction is any *return opcode.
func (in Instruction) IsReturn() bool {
	return in.Opcode >= OpIreturn && in.Opcode <= OpReturn
}

// IsPop reports whether the instruction discards operand stack values.
func (in Instruction) IsPop() bool {
	return in.Opcode == OpPop || in.Opcode == OpPop2
}

// PoolIndex returns the constant pool index operand of ldc, ldc_w and the
// invoke family, or 0 if the instruction carries none.
func (in Instruction) PoolIndex() int {
	switch {
	case in.Opcode == OpLdc && len(in.Operands) >= 1:
		return int(in.Operands[0])
	case (in.Opcode == OpLdcW || in.IsInvoke()) && len(in.Operands) >= 2:
		return int(binary.BigEndian.Uint16(in.Operands))
	}
	return 0
}

// InvokeKind names the call style of an invoke instruction for the report.
func (in Instruction) InvokeKind() string {
	switch in.Opcode {
	case OpInvokevirtual:
		return "virtual_call"
	case OpInvokestatic:
		return "static_call"
	case OpInvokespecial:
		return "special_call"
	case OpInvokeinterface:
		return "interface_call"
	}
	return ""
}
