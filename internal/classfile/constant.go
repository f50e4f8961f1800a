package classfile

import (
	"bytes"
	"encoding/binary"
)

// Constant pool tag bytes (JVMS §4.4).
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldRef           = 9
	TagMethodRef          = 10
	TagInterfaceMethodRef = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Constant is one entry in the constant pool. The set of implementations is
// closed; tags without a dedicated type decode into RawConstant with their
// payload preserved byte-for-byte.
type Constant interface {
	Tag() uint8
	encode(buf *bytes.Buffer) error
}

// Utf8Constant holds the raw bytes of a Utf8 entry. Text caches the decoded
// string; Raw is what gets serialized, so untouched entries round-trip
// byte-identically even for modified-UTF-8 payloads.
type Utf8Constant struct {
	Raw  []byte
	Text string
}

// IntegerConstant is a 32-bit int entry (bits preserved, not interpreted).
type IntegerConstant struct{ Bits uint32 }

// FloatConstant is a 32-bit float entry.
type FloatConstant struct{ Bits uint32 }

// LongConstant is a 64-bit int entry. Occupies two pool slots.
type LongConstant struct{ Bits uint64 }

// DoubleConstant is a 64-bit float entry. Occupies two pool slots.
type DoubleConstant struct{ Bits uint64 }

// ClassConstant references the class name Utf8 entry.
type ClassConstant struct{ NameIndex uint16 }

// StringConstant references the Utf8 entry holding the literal's bytes.
type StringConstant struct{ Utf8Index uint16 }

// FieldRefConstant references a field of a class.
type FieldRefConstant struct{ ClassIndex, NameAndTypeIndex uint16 }

// MethodRefConstant references a method of a class.
type MethodRefConstant struct{ ClassIndex, NameAndTypeIndex uint16 }

// InterfaceMethodRefConstant references a method of an interface.
type InterfaceMethodRefConstant struct{ ClassIndex, NameAndTypeIndex uint16 }

// NameAndTypeConstant pairs a name with a descriptor.
type NameAndTypeConstant struct{ NameIndex, DescriptorIndex uint16 }

// RawConstant preserves an entry this package does not interpret
// (MethodHandle, MethodType, Dynamic, InvokeDynamic, Module, Package).
type RawConstant struct {
	TagByte uint8
	Data    []byte
}

func (c *Utf8Constant) Tag() uint8               { return TagUtf8 }
func (c *IntegerConstant) Tag() uint8            { return TagInteger }
func (c *FloatConstant) Tag() uint8              { return TagFloat }
func (c *LongConstant) Tag() uint8               { return TagLong }
func (c *DoubleConstant) Tag() uint8             { return TagDouble }
func (c *ClassConstant) Tag() uint8              { return TagClass }
func (c *StringConstant) Tag() uint8             { return TagString }
func (c *FieldRefConstant) Tag() uint8           { return TagFieldRef }
func (c *MethodRefConstant) Tag() uint8          { return TagMethodRef }
func (c *InterfaceMethodRefConstant) Tag() uint8 { return TagInterfaceMethodRef }
func (c *NameAndTypeConstant) Tag() uint8        { return TagNameAndType }
func (c *RawConstant) Tag() uint8                { return c.TagByte }

// Pool is the constant pool, addressed by 1-based index. Slot 0 is nil and
// invalid. The slot after a Long/Double entry is a nil placeholder.
type Pool []Constant

// At returns the entry at index i, or nil if out of range or a placeholder.
func (p Pool) At(i int) Constant {
	if i <= 0 || i >= len(p) {
		return nil
	}
	return p[i]
}

// Utf8At resolves index i to its decoded text.
func (p Pool) Utf8At(i int) (string, bool) {
	u, ok := p.At(i).(*Utf8Constant)
	if !ok {
		return "", false
	}
	return u.Text, true
}

// rawOperandSize gives the payload size for tags decoded into RawConstant.
var rawOperandSize = map[uint8]int{
	TagMethodHandle:  3,
	TagMethodType:    2,
	TagDynamic:       4,
	TagInvokeDynamic: 4,
	TagModule:        2,
	TagPackage:       2,
}

// decodePool reads constantPoolCount-1 entries from s, respecting the
// double-slot rule for Long/Double. Any unknown tag or truncated entry fails
// the whole pool.
func decodePool(s *Stream) (Pool, error) {
	count, err := s.U16()
	if err != nil {
		return nil, decodeErrf(err, "constant pool count")
	}

	pool := make(Pool, count)
	for i := 1; i < int(count); i++ {
		tag, err := s.U8()
		if err != nil {
			return nil, decodeErrf(err, "constant %d tag", i)
		}

		var c Constant
		switch tag {
		case TagUtf8:
			n, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d utf8 length", i)
			}
			raw, err := s.Bytes(int(n))
			if err != nil {
				return nil, decodeErrf(err, "constant %d utf8 bytes", i)
			}
			c = &Utf8Constant{Raw: raw, Text: string(raw)}
		case TagInteger:
			v, err := s.U32()
			if err != nil {
				return nil, decodeErrf(err, "constant %d integer", i)
			}
			c = &IntegerConstant{Bits: v}
		case TagFloat:
			v, err := s.U32()
			if err != nil {
				return nil, decodeErrf(err, "constant %d float", i)
			}
			c = &FloatConstant{Bits: v}
		case TagLong:
			v, err := s.U64()
			if err != nil {
				return nil, decodeErrf(err, "constant %d long", i)
			}
			c = &LongConstant{Bits: v}
		case TagDouble:
			v, err := s.U64()
			if err != nil {
				return nil, decodeErrf(err, "constant %d double", i)
			}
			c = &DoubleConstant{Bits: v}
		case TagClass:
			v, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d class", i)
			}
			c = &ClassConstant{NameIndex: v}
		case TagString:
			v, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d string", i)
			}
			c = &StringConstant{Utf8Index: v}
		case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
			ci, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d ref class", i)
			}
			nti, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d ref name-and-type", i)
			}
			switch tag {
			case TagFieldRef:
				c = &FieldRefConstant{ClassIndex: ci, NameAndTypeIndex: nti}
			case TagMethodRef:
				c = &MethodRefConstant{ClassIndex: ci, NameAndTypeIndex: nti}
			default:
				c = &InterfaceMethodRefConstant{ClassIndex: ci, NameAndTypeIndex: nti}
			}
		case TagNameAndType:
			ni, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d name-and-type name", i)
			}
			di, err := s.U16()
			if err != nil {
				return nil, decodeErrf(err, "constant %d name-and-type descriptor", i)
			}
			c = &NameAndTypeConstant{NameIndex: ni, DescriptorIndex: di}
		default:
			n, ok := rawOperandSize[tag]
			if !ok {
				return nil, decodeErrf(nil, "constant %d: unknown tag %d", i, tag)
			}
			data, err := s.Bytes(n)
			if err != nil {
				return nil, decodeErrf(err, "constant %d tag %d payload", i, tag)
			}
			c = &RawConstant{TagByte: tag, Data: data}
		}

		pool[i] = c
		if tag == TagLong || tag == TagDouble {
			i++ // the following slot is an unusable placeholder
		}
	}
	return pool, nil
}

// encode re-serializes the pool. Byte-identical to the decoded input except
// for Utf8 entries whose Raw bytes were replaced.
func (p Pool) encode(buf *bytes.Buffer) error {
	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], uint16(len(p)))
	buf.Write(u16[:])

	for i := 1; i < len(p); i++ {
		c := p[i]
		if c == nil {
			continue // Long/Double placeholder slot
		}
		if err := c.encode(buf); err != nil {
			return err
		}
	}
	return nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func (c *Utf8Constant) encode(buf *bytes.Buffer) error {
	if len(c.Raw) > 0xFFFF {
		return &EncodeError{Reason: "utf8 entry exceeds 65535 bytes"}
	}
	buf.WriteByte(TagUtf8)
	writeU16(buf, uint16(len(c.Raw)))
	buf.Write(c.Raw)
	return nil
}

func (c *IntegerConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagInteger)
	writeU32(buf, c.Bits)
	return nil
}

func (c *FloatConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagFloat)
	writeU32(buf, c.Bits)
	return nil
}

func (c *LongConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagLong)
	writeU32(buf, uint32(c.Bits>>32))
	writeU32(buf, uint32(c.Bits))
	return nil
}

func (c *DoubleConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagDouble)
	writeU32(buf, uint32(c.Bits>>32))
	writeU32(buf, uint32(c.Bits))
	return nil
}

func (c *ClassConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagClass)
	writeU16(buf, c.NameIndex)
	return nil
}

func (c *StringConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagString)
	writeU16(buf, c.Utf8Index)
	return nil
}

func (c *FieldRefConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagFieldRef)
	writeU16(buf, c.ClassIndex)
	writeU16(buf, c.NameAndTypeIndex)
	return nil
}

func (c *MethodRefConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagMethodRef)
	writeU16(buf, c.ClassIndex)
	writeU16(buf, c.NameAndTypeIndex)
	return nil
}

func (c *InterfaceMethodRefConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagInterfaceMethodRef)
	writeU16(buf, c.ClassIndex)
	writeU16(buf, c.NameAndTypeIndex)
	return nil
}

func (c *NameAndTypeConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(TagNameAndType)
	writeU16(buf, c.NameIndex)
	writeU16(buf, c.DescriptorIndex)
	return nil
}

func (c *RawConstant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(c.TagByte)
	buf.Write(c.Data)
	return nil
}
